package client

import (
	"testing"

	"github.com/voidrunner/arcade/internal/entity"
	"github.com/voidrunner/arcade/internal/wire"
)

func fullEntity(id uint32, x, y float32, health int16) wire.EntitySnapshot {
	return wire.EntitySnapshot{
		EntityID:       id,
		Mask:           wire.FieldEntityType | wire.FieldPosX | wire.FieldPosY | wire.FieldVelX | wire.FieldVelY | wire.FieldHealth | wire.FieldStatusAndLives | wire.FieldOrientation | wire.FieldScore,
		EntityType:     7,
		PosX:           wire.QuantizePosition(x),
		PosY:           wire.QuantizePosition(y),
		Health:         health,
		StatusAndLives: wire.PackStatusLives(0, 3),
		Orientation:    1.5,
		Score:          100,
	}
}

func TestApplyEntity_SpawnsOnFirstSight(t *testing.T) {
	r := NewReplicator(entity.New())
	r.ApplyEntity(fullEntity(1, 10, 20, 50))

	id, ok := r.Local(1)
	if !ok {
		t.Fatal("expected remote id 1 to map to a local entity")
	}
	if !r.Store().IsAlive(id) {
		t.Fatal("expected spawned entity to be alive")
	}
	tr, ok := entity.Get[entity.Transform](r.Store(), id)
	if !ok || tr.X != 10 || tr.Y != 20 {
		t.Errorf("unexpected transform: %+v", tr)
	}
	h, ok := entity.Get[entity.Health](r.Store(), id)
	if !ok || h.Current != 50 || h.Max != 50 {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestApplyEntity_DeltaUpdatesOnlyMaskedFields(t *testing.T) {
	r := NewReplicator(entity.New())
	r.ApplyEntity(fullEntity(1, 0, 0, 100))
	id, _ := r.Local(1)

	r.ApplyEntity(wire.EntitySnapshot{
		EntityID: 1,
		Mask:     wire.FieldPosX,
		PosX:     wire.QuantizePosition(42),
	})

	tr, _ := entity.Get[entity.Transform](r.Store(), id)
	if tr.X != 42 {
		t.Errorf("expected X updated to 42, got %v", tr.X)
	}
	if tr.Y != 0 {
		t.Errorf("expected Y to remain unchanged at 0, got %v", tr.Y)
	}
	h, _ := entity.Get[entity.Health](r.Store(), id)
	if h.Current != 100 {
		t.Errorf("expected health unaffected by a position-only delta, got %+v", h)
	}
}

func TestApplyEntity_HealthMaxNeverLowers(t *testing.T) {
	r := NewReplicator(entity.New())
	r.ApplyEntity(fullEntity(1, 0, 0, 80))
	id, _ := r.Local(1)

	r.ApplyEntity(wire.EntitySnapshot{EntityID: 1, Mask: wire.FieldHealth, Health: 40})
	h, _ := entity.Get[entity.Health](r.Store(), id)
	if h.Current != 40 {
		t.Errorf("expected current health to drop to 40, got %d", h.Current)
	}
	if h.Max != 80 {
		t.Errorf("expected best-seen max to stay at 80, got %d", h.Max)
	}

	r.ApplyEntity(wire.EntitySnapshot{EntityID: 1, Mask: wire.FieldHealth, Health: 120})
	h, _ = entity.Get[entity.Health](r.Store(), id)
	if h.Max != 120 {
		t.Errorf("expected max to rise to a new best-seen value of 120, got %d", h.Max)
	}
}

func TestApplyEntity_DeadFlagDestroysLocal(t *testing.T) {
	r := NewReplicator(entity.New())
	r.ApplyEntity(fullEntity(1, 0, 0, 10))
	id, _ := r.Local(1)

	r.ApplyEntity(wire.EntitySnapshot{EntityID: 1, Mask: wire.FieldDead, Dead: true})

	if r.Store().IsAlive(id) {
		t.Error("expected entity to be destroyed once Dead arrives")
	}
	if _, ok := r.Local(1); ok {
		t.Error("expected remote id mapping to be cleared on destroy")
	}
}

func TestApplyDestroyed_RemovesUnknownIDSilently(t *testing.T) {
	r := NewReplicator(entity.New())
	r.ApplyDestroyed(999) // never seen; must not panic
}

func TestApplySnapshot_DropsStaleTick(t *testing.T) {
	r := NewReplicator(entity.New())
	r.ApplySnapshot(Snapshot{Tick: 10, Entities: []wire.EntitySnapshot{fullEntity(1, 5, 5, 10)}})
	id, _ := r.Local(1)

	r.ApplySnapshot(Snapshot{Tick: 3, Entities: []wire.EntitySnapshot{
		{EntityID: 1, Mask: wire.FieldHealth, Health: 1},
	}})

	h, _ := entity.Get[entity.Health](r.Store(), id)
	if h.Current != 10 {
		t.Errorf("expected stale tick 3 to be dropped, health stayed at 10, got %d", h.Current)
	}
}

func TestApplyEntity_PositionUpdateShiftsInterpolation(t *testing.T) {
	r := NewReplicator(entity.New())
	r.ApplyEntity(fullEntity(1, 0, 0, 10))
	id, _ := r.Local(1)

	r.ApplyEntity(wire.EntitySnapshot{EntityID: 1, Mask: wire.FieldPosX | wire.FieldPosY, PosX: wire.QuantizePosition(5), PosY: wire.QuantizePosition(5)})

	ip, ok := entity.Get[entity.Interpolation](r.Store(), id)
	if !ok {
		t.Fatal("expected interpolation component to exist")
	}
	if ip.PreviousX != 0 || ip.PreviousY != 0 {
		t.Errorf("expected previous to be the pre-update position, got (%v,%v)", ip.PreviousX, ip.PreviousY)
	}
	if ip.TargetX != 5 || ip.TargetY != 5 {
		t.Errorf("expected target to be the new position, got (%v,%v)", ip.TargetX, ip.TargetY)
	}
	if ip.Elapsed != 0 {
		t.Errorf("expected elapsed to reset to 0, got %v", ip.Elapsed)
	}
}

func TestAdvance_BlendsTowardTarget(t *testing.T) {
	r := NewReplicator(entity.New())
	r.ApplyEntity(fullEntity(1, 0, 0, 10))
	id, _ := r.Local(1)
	r.ApplyEntity(wire.EntitySnapshot{EntityID: 1, Mask: wire.FieldPosX, PosX: wire.QuantizePosition(10)})

	r.Advance(0.05, 0.1) // halfway through a 100ms tick interval

	tr, _ := entity.Get[entity.Transform](r.Store(), id)
	if tr.X < 4.9 || tr.X > 5.1 {
		t.Errorf("expected X to be roughly halfway to 10, got %v", tr.X)
	}
}

func TestAdvance_ClampsPastTickInterval(t *testing.T) {
	r := NewReplicator(entity.New())
	r.ApplyEntity(fullEntity(1, 0, 0, 10))
	id, _ := r.Local(1)
	r.ApplyEntity(wire.EntitySnapshot{EntityID: 1, Mask: wire.FieldPosX, PosX: wire.QuantizePosition(10)})

	r.Advance(10, 0.1) // far past one tick interval

	tr, _ := entity.Get[entity.Transform](r.Store(), id)
	if tr.X != 10 {
		t.Errorf("expected X clamped to target 10, got %v", tr.X)
	}
}
