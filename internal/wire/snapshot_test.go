package wire

import "testing"

func TestEncodeDecodeEntity_OnlyMaskedFieldsTravel(t *testing.T) {
	in := EntitySnapshot{
		EntityID: 99,
		Mask:     FieldPosX | FieldPosY | FieldHealth,
		PosX:     123,
		PosY:     -456,
		Health:   50,
		// Unmasked fields set to non-zero to prove they are not encoded.
		VelX: 777,
		Score: 999,
	}
	w := NewWriter(0)
	EncodeEntity(w, in)

	r := NewReader(w.Result())
	out, err := DecodeEntity(r)
	if err != nil {
		t.Fatalf("DecodeEntity: %v", err)
	}
	if !r.AtEnd() {
		t.Errorf("expected reader exhausted, %d bytes left", r.Remaining())
	}

	if out.EntityID != in.EntityID || out.Mask != in.Mask {
		t.Fatalf("id/mask mismatch: %+v", out)
	}
	if out.PosX != in.PosX || out.PosY != in.PosY || out.Health != in.Health {
		t.Errorf("masked field mismatch: %+v", out)
	}
	if out.VelX != 0 || out.Score != 0 {
		t.Errorf("unmasked fields should decode as zero, got VelX=%d Score=%d", out.VelX, out.Score)
	}
}

func TestEncodeDecodeEntity_FullMask(t *testing.T) {
	in := EntitySnapshot{
		EntityID:       1,
		Mask:           FieldEntityType | FieldPosX | FieldPosY | FieldVelX | FieldVelY | FieldHealth | FieldStatusAndLives | FieldOrientation | FieldDead | FieldScore,
		EntityType:     7,
		PosX:           1, PosY: 2, VelX: 3, VelY: 4,
		Health:         100,
		StatusAndLives: PackStatusLives(1, 3),
		Orientation:    1.5,
		Dead:           true,
		Score:          12345,
	}
	w := NewWriter(0)
	EncodeEntity(w, in)
	out, err := DecodeEntity(NewReader(w.Result()))
	if err != nil {
		t.Fatalf("DecodeEntity: %v", err)
	}
	if out != in {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", out, in)
	}
}

func TestDecodeEntity_TruncatedFieldAfterMask(t *testing.T) {
	w := NewWriter(0)
	w.Uint32(1)
	w.Uint16(FieldPosX)
	// PosX field omitted entirely even though mask claims it is present.
	if _, err := DecodeEntity(NewReader(w.Result())); err == nil {
		t.Error("expected error decoding entity with a mask bit set but no backing bytes")
	}
}
