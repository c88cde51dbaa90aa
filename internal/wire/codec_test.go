package wire

import "testing"

func TestEncodeDecode_RoundTrip(t *testing.T) {
	payload := ClientInput{SequenceID: 7, X: 1.5, Y: -2.5, Angle: 0.25, Buttons: 0x03}.Marshal()

	buf, err := Encode(ClientToServer, MsgClientInput, 1, 42, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	frame, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if frame.Header.MessageType != MsgClientInput {
		t.Errorf("expected MsgClientInput, got %v", frame.Header.MessageType)
	}
	if frame.Header.TickID != 42 {
		t.Errorf("expected tickId 42, got %d", frame.Header.TickID)
	}

	decoded, err := UnmarshalClientInput(frame.Payload)
	if err != nil {
		t.Fatalf("UnmarshalClientInput: %v", err)
	}
	if decoded.SequenceID != 7 || decoded.X != 1.5 || decoded.Y != -2.5 {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestDecode_RejectsBadMagic(t *testing.T) {
	buf, _ := Encode(ClientToServer, MsgClientPing, 0, 0, ClientPing{Nonce: 1}.Marshal())
	buf[0] = 0xFF
	if _, err := Decode(buf); err == nil {
		t.Error("expected error on corrupted magic")
	}
}

func TestDecode_RejectsCRCMismatch(t *testing.T) {
	buf, _ := Encode(ClientToServer, MsgClientPing, 0, 0, ClientPing{Nonce: 1}.Marshal())
	buf[len(buf)-1] ^= 0xFF
	if _, err := Decode(buf); err == nil {
		t.Error("expected error on CRC mismatch")
	}
}

func TestDecode_RejectsShortBuffer(t *testing.T) {
	if _, err := Decode([]byte{0x01, 0x02}); err == nil {
		t.Error("expected error decoding a too-short buffer")
	}
}

func TestDecode_RejectsPayloadSizeMismatch(t *testing.T) {
	buf, _ := Encode(ClientToServer, MsgClientPing, 0, 0, ClientPing{Nonce: 1}.Marshal())
	truncated := buf[:len(buf)-1]
	if _, err := Decode(truncated); err == nil {
		t.Error("expected error when buffer length disagrees with header payloadSize")
	}
}

func TestDecode_RejectsUnknownVersion(t *testing.T) {
	buf, _ := Encode(ClientToServer, MsgClientPing, 0, 0, ClientPing{Nonce: 1}.Marshal())
	buf[2] = CurrentVersion + 1
	if _, err := Decode(buf); err == nil {
		t.Error("expected error on unsupported version")
	}
}

func TestEncode_RejectsWrongDirection(t *testing.T) {
	// ServerHello is server-originated; framing it as ClientToServer must fail.
	_, err := Encode(ClientToServer, MsgServerHello, 0, 0, ServerHello{AssignedPlayerID: 1}.Marshal())
	if err == nil {
		t.Error("expected direction-enforcement error")
	}
}

func TestDecode_RejectsWrongDirection(t *testing.T) {
	buf, err := Encode(ServerToClient, MsgServerHello, 0, 0, ServerHello{AssignedPlayerID: 1}.Marshal())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Flip the packetType byte to claim this was a client->server packet.
	buf[3] = byte(ClientToServer)
	putUint32(buf[len(buf)-4:], checksum(buf[:HeaderSize], buf[HeaderSize:len(buf)-4]))
	if _, err := Decode(buf); err == nil {
		t.Error("expected direction-enforcement error on decode")
	}
}

func TestEncodeDecode_CompressesLargePayload(t *testing.T) {
	rooms := make([]RoomSummary, 0, 64)
	for i := 0; i < 64; i++ {
		rooms = append(rooms, RoomSummary{RoomID: uint32(i), Name: "room-name-padding-xx", PlayerCnt: 2, Capacity: 4})
	}
	payload := RoomList{Rooms: rooms}.Marshal()
	if len(payload) <= CompressThreshold {
		t.Fatalf("test payload too small to exercise compression: %d bytes", len(payload))
	}

	buf, err := Encode(ServerToClient, MsgRoomList, 0, 0, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	frame, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := UnmarshalRoomList(frame.Payload)
	if err != nil {
		t.Fatalf("UnmarshalRoomList: %v", err)
	}
	if len(out.Rooms) != len(rooms) {
		t.Fatalf("expected %d rooms, got %d", len(rooms), len(out.Rooms))
	}
}

func TestEncode_NeverCompressesSnapshot(t *testing.T) {
	entities := make([]EntitySnapshot, 0, 40)
	for i := 0; i < 40; i++ {
		entities = append(entities, EntitySnapshot{
			EntityID: uint32(i),
			Mask:     FieldPosX | FieldPosY | FieldHealth | FieldOrientation | FieldScore,
			PosX:     10, PosY: 20, Health: 100, Orientation: 1.0, Score: 500,
		})
	}
	payload := Snapshot{LastInputAckSeq: 1, Entities: entities}.Marshal()
	if len(payload) <= CompressThreshold {
		t.Fatalf("test payload too small: %d bytes", len(payload))
	}

	buf, err := Encode(ServerToClient, MsgSnapshot, 0, 1, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	frame, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if frame.Header.compressed() {
		t.Error("snapshot payload must never be compressed")
	}
}
