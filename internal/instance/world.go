package instance

import (
	"math/rand/v2"

	"github.com/voidrunner/arcade/internal/config"
	"github.com/voidrunner/arcade/internal/entity"
)

// World bounds for the side-scrolling playfield. Off-screen cleanup and the
// boundary-clamp system both measure against this rectangle; the specific
// gameplay layout is out of this subsystem's scope (spec.md §1), so these
// are fixed world-unit constants rather than a tunable.
const (
	WorldWidth  float32 = 800
	WorldHeight float32 = 600

	// despawnMargin is how far past the playfield edge a transient entity
	// (projectile, FX) may drift before the cleanup system reaps it.
	despawnMargin float32 = 64
)

// TickContext is the set of per-tick dependencies the ordered simulation
// systems (spec.md §4.H step 4) operate on. Systems receive it by value at
// call time rather than reaching back into the Instance, per SPEC_FULL's
// "replace cyclic references with ids plus a lookup" design note.
type TickContext struct {
	Store      *entity.Store
	DT         float32
	Tick       uint64
	Difficulty config.DifficultyPreset
	Level      *LevelDirector
	RNG        *rand.Rand

	// RespawnInvincibilitySecs and RespawnDelaySecs mirror
	// config.InstanceConfig so systems never reach back into the owning
	// Instance for tuning values.
	RespawnInvincibilitySecs float32
	RespawnDelaySecs         float32

	// Events collects cross-system side effects (deaths, enemy spawns)
	// raised during this tick's systems pass, read back by the instance
	// after Collision & Damage to log what the tick produced.
	Events *EventLog
}

// EventLog accumulates the side effects worth logging once a tick's
// systems pass has run. It is owned by the Instance and reset() at the
// start of every tick rather than reallocated, since it is written on
// every tick a wave spawner or collision is active.
type EventLog struct {
	Deaths       []entity.ID
	SpawnedEnemy []entity.ID
}

func newEventLog() *EventLog { return &EventLog{} }

func (e *EventLog) reset() {
	e.Deaths = e.Deaths[:0]
	e.SpawnedEnemy = e.SpawnedEnemy[:0]
}
