package wire

// Snapshot field-mask bits, in the fixed order the spec requires.
const (
	FieldEntityType uint16 = 1 << iota
	FieldPosX
	FieldPosY
	FieldVelX
	FieldVelY
	FieldHealth
	FieldStatusAndLives
	FieldOrientation
	FieldDead
	fieldReserved // unused, kept so bit 9 stays reserved
	FieldScore
)

// EntitySnapshot is one entity's replicated state as it travels on the
// wire. Only fields whose bit is set in Mask are meaningful; the rest are
// zero and must not be interpreted by the receiver.
type EntitySnapshot struct {
	EntityID uint32
	Mask     uint16

	EntityType     uint16
	PosX, PosY     int16
	VelX, VelY     int16
	Health         int16
	StatusAndLives uint8
	Orientation    float32
	Dead           bool
	Score          uint32
}

// EncodeEntity appends one {entityId|mask|fields...} record to w, writing
// only the fields Mask selects, in the fixed field order.
func EncodeEntity(w *Writer, e EntitySnapshot) {
	w.Uint32(e.EntityID)
	w.Uint16(e.Mask)

	if e.Mask&FieldEntityType != 0 {
		w.Uint16(e.EntityType)
	}
	if e.Mask&FieldPosX != 0 {
		w.Int16(e.PosX)
	}
	if e.Mask&FieldPosY != 0 {
		w.Int16(e.PosY)
	}
	if e.Mask&FieldVelX != 0 {
		w.Int16(e.VelX)
	}
	if e.Mask&FieldVelY != 0 {
		w.Int16(e.VelY)
	}
	if e.Mask&FieldHealth != 0 {
		w.Int16(e.Health)
	}
	if e.Mask&FieldStatusAndLives != 0 {
		w.Uint8(e.StatusAndLives)
	}
	if e.Mask&FieldOrientation != 0 {
		w.Float32(e.Orientation)
	}
	if e.Mask&FieldDead != 0 {
		if e.Dead {
			w.Uint8(1)
		} else {
			w.Uint8(0)
		}
	}
	if e.Mask&FieldScore != 0 {
		w.Uint32(e.Score)
	}
}

// DecodeEntity reads one entity record from r, populating only the fields
// the mask declares present.
func DecodeEntity(r *Reader) (EntitySnapshot, error) {
	var e EntitySnapshot
	var err error

	if e.EntityID, err = r.Uint32(); err != nil {
		return e, err
	}
	if e.Mask, err = r.Uint16(); err != nil {
		return e, err
	}

	if e.Mask&FieldEntityType != 0 {
		if e.EntityType, err = r.Uint16(); err != nil {
			return e, err
		}
	}
	if e.Mask&FieldPosX != 0 {
		if e.PosX, err = r.Int16(); err != nil {
			return e, err
		}
	}
	if e.Mask&FieldPosY != 0 {
		if e.PosY, err = r.Int16(); err != nil {
			return e, err
		}
	}
	if e.Mask&FieldVelX != 0 {
		if e.VelX, err = r.Int16(); err != nil {
			return e, err
		}
	}
	if e.Mask&FieldVelY != 0 {
		if e.VelY, err = r.Int16(); err != nil {
			return e, err
		}
	}
	if e.Mask&FieldHealth != 0 {
		if e.Health, err = r.Int16(); err != nil {
			return e, err
		}
	}
	if e.Mask&FieldStatusAndLives != 0 {
		if e.StatusAndLives, err = r.Uint8(); err != nil {
			return e, err
		}
	}
	if e.Mask&FieldOrientation != 0 {
		if e.Orientation, err = r.Float32(); err != nil {
			return e, err
		}
	}
	if e.Mask&FieldDead != 0 {
		b, err2 := r.Uint8()
		if err2 != nil {
			return e, err2
		}
		e.Dead = b != 0
	}
	if e.Mask&FieldScore != 0 {
		if e.Score, err = r.Uint32(); err != nil {
			return e, err
		}
	}
	return e, nil
}
