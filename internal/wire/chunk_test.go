package wire

import "testing"

func makeEntities(n int) []EntitySnapshot {
	out := make([]EntitySnapshot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, EntitySnapshot{
			EntityID: uint32(i),
			Mask:     FieldPosX | FieldPosY | FieldHealth | FieldOrientation | FieldScore,
			PosX:     int16(i), PosY: int16(i), Health: 100, Orientation: 1, Score: uint32(i),
		})
	}
	return out
}

func TestChunkSnapshot_SmallSetFitsOnePacket(t *testing.T) {
	frames := ChunkSnapshot(1, makeEntities(3))
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame for a small entity set, got %d", len(frames))
	}
	if frames[0].MessageType != MsgSnapshot {
		t.Errorf("expected MsgSnapshot, got %v", frames[0].MessageType)
	}
}

func TestChunkSnapshot_SplitsAcrossBudget(t *testing.T) {
	// maxEntityRecordSize(28) * 200 entities vastly exceeds MaxUDPPayload,
	// forcing multiple chunks.
	entities := makeEntities(200)
	frames := ChunkSnapshot(1, entities)
	if len(frames) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(frames))
	}
	for _, f := range frames {
		if f.MessageType != MsgSnapshotChunk {
			t.Errorf("expected MsgSnapshotChunk, got %v", f.MessageType)
		}
		if len(f.Payload) > MaxUDPPayload {
			t.Errorf("chunk payload %d bytes exceeds MaxUDPPayload %d", len(f.Payload), MaxUDPPayload)
		}
	}
}

func TestChunkReassembler_ReassemblesInAnyArrivalOrder(t *testing.T) {
	entities := makeEntities(200)
	frames := ChunkSnapshot(1, entities)

	var chunks []SnapshotChunk
	for _, f := range frames {
		c, err := UnmarshalSnapshotChunk(f.Payload)
		if err != nil {
			t.Fatalf("UnmarshalSnapshotChunk: %v", err)
		}
		chunks = append(chunks, c)
	}

	reassembler := NewChunkReassembler(1, chunks[0].ChunkCount)
	// Feed chunks in reverse to prove order of arrival doesn't matter.
	var merged []EntitySnapshot
	complete := false
	for i := len(chunks) - 1; i >= 0; i-- {
		merged, complete = reassembler.Add(chunks[i])
	}
	if !complete {
		t.Fatal("expected reassembly to complete once every chunk index arrived")
	}
	if len(merged) != len(entities) {
		t.Fatalf("expected %d reassembled entities, got %d", len(entities), len(merged))
	}
}

func TestChunkReassembler_IncompleteUntilAllChunksArrive(t *testing.T) {
	reassembler := NewChunkReassembler(1, 3)
	_, complete := reassembler.Add(SnapshotChunk{ChunkIndex: 0, ChunkCount: 3})
	if complete {
		t.Error("expected incomplete after 1 of 3 chunks")
	}
	_, complete = reassembler.Add(SnapshotChunk{ChunkIndex: 1, ChunkCount: 3})
	if complete {
		t.Error("expected incomplete after 2 of 3 chunks")
	}
	_, complete = reassembler.Add(SnapshotChunk{ChunkIndex: 2, ChunkCount: 3})
	if !complete {
		t.Error("expected complete after 3 of 3 chunks")
	}
}
