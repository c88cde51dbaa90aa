package wire

import "testing"

func TestPutParseHeader_RoundTrip(t *testing.T) {
	h := Header{
		Version:      CurrentVersion,
		PacketType:   ServerToClient,
		MessageType:  MsgSnapshot,
		SequenceID:   10,
		TickID:       99999,
		PayloadSize:  42,
		OriginalSize: 0,
		Flags:        0,
	}
	buf := make([]byte, HeaderSize)
	putHeader(buf, h)

	out, err := parseHeader(buf)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if out != h {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", out, h)
	}
}

func TestParseHeader_TooShort(t *testing.T) {
	if _, err := parseHeader(make([]byte, HeaderSize-1)); err == nil {
		t.Error("expected error for undersized buffer")
	}
}

func TestParseHeader_BadMagic(t *testing.T) {
	buf := make([]byte, HeaderSize)
	putHeader(buf, Header{Version: CurrentVersion, PacketType: ClientToServer})
	buf[0] = 0x00
	if _, err := parseHeader(buf); err == nil {
		t.Error("expected error for bad magic")
	}
}

func TestParseHeader_BadPacketType(t *testing.T) {
	buf := make([]byte, HeaderSize)
	putHeader(buf, Header{Version: CurrentVersion, PacketType: ClientToServer})
	buf[3] = 0xFF
	if _, err := parseHeader(buf); err == nil {
		t.Error("expected error for out-of-range packet type")
	}
}

func TestChecksum_DetectsBitFlip(t *testing.T) {
	buf := make([]byte, HeaderSize)
	putHeader(buf, Header{Version: CurrentVersion, PacketType: ClientToServer})
	payload := []byte{1, 2, 3, 4}

	c1 := checksum(buf, payload)
	payload[0] ^= 0xFF
	c2 := checksum(buf, payload)
	if c1 == c2 {
		t.Error("expected checksum to change after payload bit flip")
	}
}
