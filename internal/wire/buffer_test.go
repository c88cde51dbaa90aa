package wire

import "testing"

func TestWriterReader_RoundTripPrimitives(t *testing.T) {
	w := NewWriter(0)
	w.Uint8(0x42)
	w.Uint16(0x1234)
	w.Uint32(0x12345678)
	w.Float32(3.5)
	w.String8("hello")
	w.String16("привет")

	r := NewReader(w.Result())

	if v, err := r.Uint8(); err != nil || v != 0x42 {
		t.Fatalf("Uint8: got %v, %v", v, err)
	}
	if v, err := r.Uint16(); err != nil || v != 0x1234 {
		t.Fatalf("Uint16: got %v, %v", v, err)
	}
	if v, err := r.Uint32(); err != nil || v != 0x12345678 {
		t.Fatalf("Uint32: got %v, %v", v, err)
	}
	if v, err := r.Float32(); err != nil || v != 3.5 {
		t.Fatalf("Float32: got %v, %v", v, err)
	}
	if v, err := r.String8(); err != nil || v != "hello" {
		t.Fatalf("String8: got %q, %v", v, err)
	}
	if v, err := r.String16(); err != nil || v != "привет" {
		t.Fatalf("String16: got %q, %v", v, err)
	}
	if !r.AtEnd() {
		t.Errorf("expected reader exhausted, %d bytes remaining", r.Remaining())
	}
}

func TestReader_TruncatedField(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.Uint32(); err == nil {
		t.Error("expected error reading uint32 from 2-byte buffer")
	}
}

func TestReader_NonFiniteFloatRejected(t *testing.T) {
	w := NewWriter(0)
	w.Uint32(0x7F800000) // +Inf bit pattern
	r := NewReader(w.Result())
	if _, err := r.Float32(); err == nil {
		t.Error("expected non-finite float to be rejected")
	}
}

func TestReader_String8_Truncated(t *testing.T) {
	r := NewReader([]byte{0x05, 'h', 'i'})
	if _, err := r.String8(); err == nil {
		t.Error("expected error reading string shorter than its declared length")
	}
}
