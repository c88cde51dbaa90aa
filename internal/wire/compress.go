package wire

import "github.com/klauspost/compress/s2"

// CompressThreshold is the payload size above which Encode opts into s2
// compression. Snapshot and SnapshotChunk payloads are never compressed,
// whatever their size, so tick latency is never affected; the payloads
// that cross it are bursty control-plane ones (room list, player list,
// chat fan-out).
const CompressThreshold = 512

func compressPayload(payload []byte) []byte {
	return s2.Encode(nil, payload)
}

func decompressPayload(compressed []byte) ([]byte, error) {
	decoded, err := s2.Decode(nil, compressed)
	if err != nil {
		return nil, newParseError("s2 decompress: %v", err)
	}
	return decoded, nil
}
