package client

import (
	"github.com/voidrunner/arcade/internal/entity"
	"github.com/voidrunner/arcade/internal/wire"
)

// Replicator maintains the remote->local entity id map spec.md §4.L
// describes, applying snapshot entity records to a local entity.Store
// with interpolation state a renderer samples between ticks.
type Replicator struct {
	store  *entity.Store
	remote map[uint32]entity.ID

	highestAppliedTick uint32
}

// NewReplicator builds a Replicator over store, which the caller owns
// (client.Dial creates one per connection).
func NewReplicator(store *entity.Store) *Replicator {
	return &Replicator{store: store, remote: make(map[uint32]entity.ID)}
}

// Store returns the local entity store a renderer reads from.
func (r *Replicator) Store() *entity.Store { return r.store }

// Local returns the local id mapped to a remote entity id, if known.
func (r *Replicator) Local(remoteID uint32) (entity.ID, bool) {
	id, ok := r.remote[remoteID]
	return id, ok
}

// ApplySnapshot applies every entity record in snap against the local
// store, in tick order. An out-of-order (stale) tick is dropped entirely
// per spec.md §5's "a client observing an older tickId than the highest
// already applied drops it."
func (r *Replicator) ApplySnapshot(snap Snapshot) {
	if snap.Tick != 0 && snap.Tick < r.highestAppliedTick {
		return
	}
	if snap.Tick > r.highestAppliedTick {
		r.highestAppliedTick = snap.Tick
	}
	for _, e := range snap.Entities {
		r.ApplyEntity(e)
	}
}

// ApplyEntity applies one entity record, creating a local entity on first
// sight or updating only the fields the mask declares present, per
// spec.md §4.L.
func (r *Replicator) ApplyEntity(e wire.EntitySnapshot) {
	id, known := r.remote[e.EntityID]
	if !known {
		id = r.store.CreateEntity()
		r.remote[e.EntityID] = id
		r.applySpawnDefaults(id, e)
	} else {
		r.applyDelta(id, e)
	}

	if e.Mask&wire.FieldDead != 0 && e.Dead {
		r.destroyLocal(e.EntityID, id)
	}
}

// ApplySpawn handles a dedicated EntitySpawn packet, which always carries
// the full field mask (spec.md §4.E.4).
func (r *Replicator) ApplySpawn(e wire.EntitySnapshot) { r.ApplyEntity(e) }

// ApplyDestroyed handles a dedicated EntityDestroyed packet.
func (r *Replicator) ApplyDestroyed(remoteID uint32) {
	id, ok := r.remote[remoteID]
	if !ok {
		return
	}
	r.destroyLocal(remoteID, id)
}

func (r *Replicator) destroyLocal(remoteID uint32, id entity.ID) {
	r.store.DestroyEntity(id)
	delete(r.remote, remoteID)
}

// applySpawnDefaults emplaces every component an EntitySpawn-strength
// mask (full fields present) implies, snapping interpolation target to
// the spawn values with no previous to blend from.
func (r *Replicator) applySpawnDefaults(id entity.ID, e wire.EntitySnapshot) {
	x, y := dequantized(e)
	entity.Emplace(r.store, id, entity.Transform{X: x, Y: y, Rotation: e.Orientation, Scale: 1})
	entity.Emplace(r.store, id, entity.Velocity{
		VX: wire.DequantizePosition(e.VelX),
		VY: wire.DequantizePosition(e.VelY),
	})
	entity.Emplace(r.store, id, entity.RenderType{Key: e.EntityType})

	health, max := unpackHealth(e)
	entity.Emplace(r.store, id, entity.Health{Current: health, Max: max})

	status, lives := wire.UnpackStatusLives(e.StatusAndLives)
	entity.Emplace(r.store, id, entity.Lives{Current: lives, Max: lives})
	_ = status

	entity.Emplace(r.store, id, entity.Score{Value: e.Score})
	entity.Emplace(r.store, id, entity.Interpolation{
		PreviousX: x, PreviousY: y,
		TargetX: x, TargetY: y,
	})
}

// applyDelta updates only the fields e.Mask declares present, per
// spec.md §4.L: spatial fields shift the interpolation window, health
// never drops the best-seen max, lives and score are replaced outright.
func (r *Replicator) applyDelta(id entity.ID, e wire.EntitySnapshot) {
	if e.Mask&wire.FieldEntityType != 0 {
		if rt, ok := entity.Get[entity.RenderType](r.store, id); ok {
			rt.Key = e.EntityType
			entity.Emplace(r.store, id, rt)
		}
	}

	movedX := e.Mask&wire.FieldPosX != 0
	movedY := e.Mask&wire.FieldPosY != 0
	if movedX || movedY {
		r.shiftInterpolation(id, e, movedX, movedY)
	}

	if e.Mask&(wire.FieldVelX|wire.FieldVelY) != 0 {
		vel, _ := entity.Get[entity.Velocity](r.store, id)
		if e.Mask&wire.FieldVelX != 0 {
			vel.VX = wire.DequantizePosition(e.VelX)
		}
		if e.Mask&wire.FieldVelY != 0 {
			vel.VY = wire.DequantizePosition(e.VelY)
		}
		entity.Emplace(r.store, id, vel)
	}

	if e.Mask&wire.FieldOrientation != 0 {
		if t, ok := entity.Get[entity.Transform](r.store, id); ok {
			t.Rotation = e.Orientation
			entity.Emplace(r.store, id, t)
		}
	}

	if e.Mask&wire.FieldHealth != 0 {
		h, ok := entity.Get[entity.Health](r.store, id)
		if !ok {
			h = entity.Health{}
		}
		h.Current = int32(e.Health)
		if h.Current > h.Max {
			h.Max = h.Current
		}
		entity.Emplace(r.store, id, h)
	}

	if e.Mask&wire.FieldStatusAndLives != 0 {
		_, lives := wire.UnpackStatusLives(e.StatusAndLives)
		l, ok := entity.Get[entity.Lives](r.store, id)
		if !ok {
			l = entity.Lives{}
		}
		l.Current = lives
		if lives > l.Max {
			l.Max = lives
		}
		entity.Emplace(r.store, id, l)
	}

	if e.Mask&wire.FieldScore != 0 {
		entity.Emplace(r.store, id, entity.Score{Value: e.Score})
	}
}

// shiftInterpolation advances the spatial interpolation window: the
// entity's current Transform becomes Previous, the new snapshot value
// becomes Target, and Elapsed resets so a renderer blends from scratch.
func (r *Replicator) shiftInterpolation(id entity.ID, e wire.EntitySnapshot, movedX, movedY bool) {
	t, ok := entity.Get[entity.Transform](r.store, id)
	if !ok {
		t = entity.Transform{Scale: 1}
	}
	ip, ok := entity.Get[entity.Interpolation](r.store, id)
	if !ok {
		ip = entity.Interpolation{PreviousX: t.X, PreviousY: t.Y, TargetX: t.X, TargetY: t.Y}
	}

	ip.PreviousX, ip.PreviousY = t.X, t.Y
	newX, newY := t.X, t.Y
	if movedX {
		newX = wire.DequantizePosition(e.PosX)
	}
	if movedY {
		newY = wire.DequantizePosition(e.PosY)
	}
	ip.TargetX, ip.TargetY = newX, newY
	ip.Elapsed = 0
	entity.Emplace(r.store, id, ip)

	t.X, t.Y = newX, newY
	entity.Emplace(r.store, id, t)
}

// Advance progresses every tracked entity's interpolation by dt seconds,
// blending Transform toward Target over tickInterval — the render-time
// step spec.md §4.L describes as using "server tick rate to estimate
// duration." A renderer outside this subsystem's scope calls this once
// per frame.
func (r *Replicator) Advance(dt float32, tickInterval float32) {
	if tickInterval <= 0 {
		return
	}
	for _, id := range entity.View1[entity.Interpolation](r.store) {
		ip, _ := entity.Get[entity.Interpolation](r.store, id)
		ip.Elapsed += dt
		frac := ip.Elapsed / tickInterval
		if frac > 1 {
			frac = 1
		}
		entity.Emplace(r.store, id, ip)

		t, ok := entity.Get[entity.Transform](r.store, id)
		if !ok {
			continue
		}
		t.X = ip.PreviousX + (ip.TargetX-ip.PreviousX)*frac
		t.Y = ip.PreviousY + (ip.TargetY-ip.PreviousY)*frac
		entity.Emplace(r.store, id, t)
	}
}

func dequantized(e wire.EntitySnapshot) (x, y float32) {
	return wire.DequantizePosition(e.PosX), wire.DequantizePosition(e.PosY)
}

func unpackHealth(e wire.EntitySnapshot) (current, max int32) {
	current = int32(e.Health)
	return current, current
}
