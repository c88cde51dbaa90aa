// Package replication runs spec.md §4.E once per tick: it diffs the live
// entity store against a per-entity mirror of last-sent values, emits
// spawn/destroy events independently of the periodic snapshot, and
// serializes the result into one or more wire packets via
// internal/wire's chunker.
package replication

import (
	"github.com/voidrunner/arcade/internal/entity"
	"github.com/voidrunner/arcade/internal/wire"
)

// FullSnapshotInterval is the default N in "force a full snapshot every N
// ticks" (spec.md §4.E.3), bounding divergence under packet loss.
const FullSnapshotInterval = 60

const fullMask = wire.FieldEntityType | wire.FieldPosX | wire.FieldPosY |
	wire.FieldVelX | wire.FieldVelY | wire.FieldHealth | wire.FieldStatusAndLives |
	wire.FieldOrientation | wire.FieldDead | wire.FieldScore

// mirrorEntry is the last value replicated for one entity's fields, used
// to compute the next tick's field mask.
type mirrorEntry struct {
	entityType     uint16
	posX, posY     int16
	velX, velY     int16
	health         int16
	statusAndLives uint8
	orientation    float32
	dead           bool
	score          uint32
}

// Engine owns the replication mirror for one game instance. It is driven
// by the instance's tick thread only — like the entity store it
// replicates from, it is not safe for concurrent use.
type Engine struct {
	mirror map[entity.ID]mirrorEntry
	tick   uint64
}

// NewEngine creates an empty replication engine.
func NewEngine() *Engine {
	return &Engine{mirror: make(map[entity.ID]mirrorEntry)}
}

// Source is the subset of simulation state the replication engine reads
// per tick, supplied by the instance so this package stays decoupled from
// the full component catalog.
type Source struct {
	EntityID    entity.ID
	EntityType  uint16
	PosX, PosY  float32
	VelX, VelY  float32
	Health      int32
	Status      uint8
	Lives       uint8
	Orientation float32
	Dead        bool
	Score       uint32
}

// Frame is one wire packet the replication step produced.
type Frame = wire.Packet

// Result is what Replicate produced for one tick: any spawn/destroy
// events (sent immediately, independent of the snapshot) and the
// snapshot's wire frames (possibly chunked).
type Result struct {
	Spawned   []wire.EntitySnapshot
	Destroyed []entity.ID
	Frames    []Frame
}

func quantize(src Source) mirrorEntry {
	return mirrorEntry{
		entityType:     src.EntityType,
		posX:           wire.QuantizePosition(src.PosX),
		posY:           wire.QuantizePosition(src.PosY),
		velX:           wire.QuantizePosition(src.VelX),
		velY:           wire.QuantizePosition(src.VelY),
		health:         wire.ClampHealth(src.Health),
		statusAndLives: wire.PackStatusLives(src.Status, src.Lives),
		orientation:    src.Orientation,
		dead:           src.Dead,
		score:          src.Score,
	}
}

func diffMask(prev, cur mirrorEntry, forceFull bool) uint16 {
	if forceFull {
		return fullMask
	}
	var mask uint16
	if prev.entityType != cur.entityType {
		mask |= wire.FieldEntityType
	}
	if prev.posX != cur.posX {
		mask |= wire.FieldPosX
	}
	if prev.posY != cur.posY {
		mask |= wire.FieldPosY
	}
	if prev.velX != cur.velX {
		mask |= wire.FieldVelX
	}
	if prev.velY != cur.velY {
		mask |= wire.FieldVelY
	}
	if prev.health != cur.health {
		mask |= wire.FieldHealth
	}
	if prev.statusAndLives != cur.statusAndLives {
		mask |= wire.FieldStatusAndLives
	}
	if prev.orientation != cur.orientation {
		mask |= wire.FieldOrientation
	}
	if prev.dead != cur.dead {
		mask |= wire.FieldDead
	}
	if prev.score != cur.score {
		mask |= wire.FieldScore
	}
	return mask
}

func entitySnapshot(id entity.ID, e mirrorEntry, mask uint16) wire.EntitySnapshot {
	return wire.EntitySnapshot{
		EntityID:       uint32(id),
		Mask:           mask,
		EntityType:     e.entityType,
		PosX:           e.posX,
		PosY:           e.posY,
		VelX:           e.velX,
		VelY:           e.velY,
		Health:         e.health,
		StatusAndLives: e.statusAndLives,
		Orientation:    e.orientation,
		Dead:           e.dead,
		Score:          e.score,
	}
}

// Replicate consumes a snapshot of every currently-alive replicated
// entity for this tick, computes spawn/destroy events against the
// mirror, builds the (possibly forced-full) field-masked delta snapshot,
// updates the mirror, and returns everything ready to hand to the send
// worker.
func (e *Engine) Replicate(alive []Source, lastInputAckSeq uint32) Result {
	e.tick++
	forceFull := e.tick%FullSnapshotInterval == 0

	var res Result
	seen := make(map[entity.ID]bool, len(alive))
	entities := make([]wire.EntitySnapshot, 0, len(alive))

	for _, src := range alive {
		seen[src.EntityID] = true
		cur := quantize(src)
		prev, existed := e.mirror[src.EntityID]

		if !existed {
			res.Spawned = append(res.Spawned, entitySnapshot(src.EntityID, cur, fullMask))
			e.mirror[src.EntityID] = cur
			continue
		}

		if mask := diffMask(prev, cur, forceFull); mask != 0 {
			entities = append(entities, entitySnapshot(src.EntityID, cur, mask))
		}
		e.mirror[src.EntityID] = cur
	}

	for id := range e.mirror {
		if !seen[id] {
			res.Destroyed = append(res.Destroyed, id)
			delete(e.mirror, id)
		}
	}

	res.Frames = append(res.Frames, wire.ChunkSnapshot(lastInputAckSeq, entities)...)
	return res
}

// Forget clears id's mirror entry, used when the replication mirror must
// be wiped before an id is recycled (spec.md §4.D invariant).
func (e *Engine) Forget(id entity.ID) {
	delete(e.mirror, id)
}
