package wire

// maxEntityRecordSize is the worst-case wire size of one entity record with
// every mask bit set: id(4) + mask(2) + entityType(2) + posX(2) + posY(2) +
// velX(2) + velY(2) + health(2) + statusAndLives(1) + orientation(4) +
// dead(1) + score(4) = 28 bytes.
const maxEntityRecordSize = 28

func maxEntitiesPerPacket(fixedOverhead int) int {
	budget := MaxUDPPayload - fixedOverhead
	n := budget / maxEntityRecordSize
	if n < 1 {
		n = 1
	}
	return n
}

// Packet pairs a message type with its already-marshalled payload, the
// shape every chunked or unchunked outbound frame reduces to once encoded.
type Packet struct {
	MessageType MessageType
	Payload     []byte
}

// ChunkSnapshot splits entities into one or more packets honoring the safe
// UDP payload budget. If everything fits in one packet it returns a single
// Snapshot frame (MsgSnapshot); otherwise it returns MsgSnapshotChunk frames
// sharing chunkCount, each tagged with its index, as §4.A/§4.E require.
func ChunkSnapshot(lastInputAckSeq uint32, entities []EntitySnapshot) []Packet {
	perPacket := maxEntitiesPerPacket(6)
	if len(entities) <= perPacket {
		s := Snapshot{LastInputAckSeq: lastInputAckSeq, Entities: entities}
		return []Packet{{MsgSnapshot, s.Marshal()}}
	}

	perChunk := maxEntitiesPerPacket(10)
	if perChunk < 1 {
		perChunk = 1
	}
	chunkCount := (len(entities) + perChunk - 1) / perChunk
	out := make([]Packet, 0, chunkCount)

	for i := 0; i < chunkCount; i++ {
		start := i * perChunk
		end := start + perChunk
		if end > len(entities) {
			end = len(entities)
		}
		c := SnapshotChunk{
			ChunkIndex:      uint16(i),
			ChunkCount:      uint16(chunkCount),
			LastInputAckSeq: lastInputAckSeq,
			Entities:        entities[start:end],
		}
		out = append(out, Packet{MsgSnapshotChunk, c.Marshal()})
	}
	return out
}

// ChunkReassembler accumulates SnapshotChunk payloads for a single tick and
// reports completion once every chunk has arrived, per §4.K's "per-tick
// reassembly buffer, released when complete."
type ChunkReassembler struct {
	tick       uint32
	chunkCount uint16
	chunks     map[uint16]SnapshotChunk
}

// NewChunkReassembler starts (or restarts) a reassembly buffer for tick.
func NewChunkReassembler(tick uint32, chunkCount uint16) *ChunkReassembler {
	return &ChunkReassembler{
		tick:       tick,
		chunkCount: chunkCount,
		chunks:     make(map[uint16]SnapshotChunk, chunkCount),
	}
}

// Tick reports the tick this reassembler is buffering.
func (c *ChunkReassembler) Tick() uint32 { return c.tick }

// Add records one chunk. It returns the merged entity list and true once
// every chunk index [0, chunkCount) has been observed.
func (c *ChunkReassembler) Add(chunk SnapshotChunk) ([]EntitySnapshot, bool) {
	c.chunks[chunk.ChunkIndex] = chunk
	if uint16(len(c.chunks)) < c.chunkCount {
		return nil, false
	}
	merged := make([]EntitySnapshot, 0, int(c.chunkCount)*8)
	for i := uint16(0); i < c.chunkCount; i++ {
		ch, ok := c.chunks[i]
		if !ok {
			return nil, false
		}
		merged = append(merged, ch.Entities...)
	}
	return merged, true
}
