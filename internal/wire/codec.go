package wire

// Frame is a decoded packet: its header plus the raw (decompressed)
// payload bytes, ready for a per-MessageType Unmarshal call.
type Frame struct {
	Header  Header
	Payload []byte
}

// Encode frames payload as packetType/messageType/seq/tick, compressing it
// with s2 first when it crosses CompressThreshold (never for Snapshot or
// SnapshotChunk, which must stay uncompressed to keep tick latency flat),
// and appends the CRC-32 trailer. The returned buffer is ready to hand to
// a UDP socket's sendTo.
func Encode(pt PacketType, mt MessageType, seq uint16, tick uint32, payload []byte) ([]byte, error) {
	if !mt.valid() {
		return nil, newParseError("unknown message type: %d", mt)
	}
	if !directionOK(mt, pt) {
		return nil, newParseError("message type %d not valid for packet type %d", mt, pt)
	}

	wire := payload
	flags := uint8(0)
	originalSize := 0
	if len(payload) > CompressThreshold && mt != MsgSnapshot && mt != MsgSnapshotChunk {
		compressed := compressPayload(payload)
		if len(compressed) < len(payload) {
			originalSize = len(payload)
			wire = compressed
			flags |= flagCompressed
		}
	}
	if len(wire) > MaxUDPPayload {
		return nil, newParseError("payload %d bytes exceeds safe UDP budget %d", len(wire), MaxUDPPayload)
	}

	h := Header{
		Version:      CurrentVersion,
		PacketType:   pt,
		MessageType:  mt,
		SequenceID:   seq,
		TickID:       tick,
		PayloadSize:  uint16(len(wire)),
		OriginalSize: uint16(originalSize),
		Flags:        flags,
	}

	buf := make([]byte, HeaderSize+len(wire)+CRCSize)
	putHeader(buf, h)
	copy(buf[HeaderSize:], wire)
	crc := checksum(buf[:HeaderSize], wire)
	putUint32(buf[HeaderSize+len(wire):], crc)
	return buf, nil
}

// Decode validates framing (length, magic, version, payload-size
// consistency, CRC, direction) and returns the header plus the decoded
// (decompressed) payload bytes. Per spec.md §4.A it deliberately does not
// interpret the payload further — per-message field decoding, including
// the non-finite-float rejection, happens in the typed Unmarshal calls.
func Decode(buf []byte) (Frame, error) {
	h, err := parseHeader(buf)
	if err != nil {
		return Frame{}, err
	}
	if !h.MessageType.valid() {
		return Frame{}, newParseError("message type out of range: %d", h.MessageType)
	}
	if !directionOK(h.MessageType, h.PacketType) {
		return Frame{}, newParseError("message type %d not valid for packet type %d", h.MessageType, h.PacketType)
	}

	want := HeaderSize + int(h.PayloadSize) + CRCSize
	if len(buf) != want {
		return Frame{}, newParseError("payload size mismatch: header says %d, buffer implies %d bytes total, have %d", h.PayloadSize, want, len(buf))
	}

	payload := buf[HeaderSize : HeaderSize+int(h.PayloadSize)]
	trailer := buf[HeaderSize+int(h.PayloadSize):]
	got := getUint32(trailer)
	want32 := checksum(buf[:HeaderSize], payload)
	if got != want32 {
		return Frame{}, newParseError("crc mismatch: got %08x want %08x", got, want32)
	}

	out := payload
	if h.compressed() {
		out, err = decompressPayload(payload)
		if err != nil {
			return Frame{}, err
		}
		if len(out) != int(h.OriginalSize) {
			return Frame{}, newParseError("decompressed size mismatch: got %d want %d", len(out), h.OriginalSize)
		}
	}
	return Frame{Header: h, Payload: out}, nil
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
