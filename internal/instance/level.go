package instance

import (
	"github.com/voidrunner/arcade/internal/entity"
	"github.com/voidrunner/arcade/internal/wire"
)

// LevelDirector walks a scripted wave timeline (SPEC_FULL.md §6's
// LevelInit payload), spawning enemy entities as the tick counter crosses
// each wave's TriggerTick. The script's content — which enemy types, how
// many levels — is gameplay-rules territory out of this subsystem's scope;
// this type only owns the network-visible envelope and timing.
type LevelDirector struct {
	levelID uint16
	waves   []wire.Wave
	next    int
	pending []*pendingSpawn
}

// DefaultLevelScript is a small built-in wave timeline used when a room
// isn't configured with one explicitly — enough to exercise LevelInit and
// LevelEvent end to end without depending on externally-authored level
// data, which is out of scope per spec.md §1.
func DefaultLevelScript() (uint16, []wire.Wave) {
	return 1, []wire.Wave{
		{TriggerTick: 60, EnemyType: 1, Count: 3, SpacingTicks: 20},
		{TriggerTick: 300, EnemyType: 1, Count: 5, SpacingTicks: 15},
		{TriggerTick: 600, EnemyType: 2, Count: 2, SpacingTicks: 30},
	}
}

// NewLevelDirector builds a director over levelID's wave list.
func NewLevelDirector(levelID uint16, waves []wire.Wave) *LevelDirector {
	return &LevelDirector{levelID: levelID, waves: waves}
}

// LevelInit returns the wire payload describing this director's timeline,
// sent once at game start (spec.md §4.H step 2).
func (d *LevelDirector) LevelInit() wire.LevelInit {
	return wire.LevelInit{LevelID: d.levelID, Waves: d.waves}
}

// pendingSpawn is one wave's worth of enemies still being trickled in by
// spacingTicks, tracked between LevelDirectorSystem calls.
type pendingSpawn struct {
	enemyType    uint16
	remaining    uint8
	spacingTicks uint16
	nextTick     uint64
}

// LevelDirectorSystem triggers waves whose TriggerTick has arrived and
// spawns their enemies at the configured spacing. It is grounded on
// spec.md §4.H step 4's "level director" system slot.
func LevelDirectorSystem(ctx *TickContext) {
	d := ctx.Level
	if d == nil {
		return
	}

	for d.next < len(d.waves) && uint64(d.waves[d.next].TriggerTick) <= ctx.Tick {
		d.trickle(ctx)
		d.next++
	}
	d.drainTrickles(ctx)
}

func (d *LevelDirector) trickle(ctx *TickContext) {
	w := d.waves[d.next]
	d.pending = append(d.pending, &pendingSpawn{
		enemyType:    w.EnemyType,
		remaining:    w.Count,
		spacingTicks: w.SpacingTicks,
		nextTick:     ctx.Tick,
	})
}

func (d *LevelDirector) drainTrickles(ctx *TickContext) {
	kept := d.pending[:0]
	for _, p := range d.pending {
		for p.remaining > 0 && p.nextTick <= ctx.Tick {
			id := spawnEnemy(ctx.Store, p.enemyType)
			ctx.Events.SpawnedEnemy = append(ctx.Events.SpawnedEnemy, id)
			p.remaining--
			p.nextTick = ctx.Tick + uint64(p.spacingTicks)
		}
		if p.remaining > 0 {
			kept = append(kept, p)
		}
	}
	d.pending = kept
}

// spawnEnemy creates a basic enemy entity entering from the right edge of
// the playfield, the way a side-scroller's wave spawner would place a
// fresh arrival.
func spawnEnemy(store *entity.Store, enemyType uint16) entity.ID {
	id := store.CreateEntity()
	entity.Emplace(store, id, entity.Transform{X: WorldWidth, Y: WorldHeight / 2, Scale: 1})
	entity.Emplace(store, id, entity.Health{Current: 30, Max: 30})
	entity.Emplace(store, id, entity.Tag(entity.TagEnemy))
	entity.Emplace(store, id, entity.RenderType{Key: enemyType})
	entity.Emplace(store, id, entity.Hitbox{W: 32, H: 32})
	return id
}

// EnemyShootingSystem has enemies spawn a projectile toward -X at a rate
// scaled by the room's difficulty fire-rate multiplier. The damage/target
// rules beyond "a projectile exists and travels" are gameplay content out
// of scope; this exercises the network-visible entity lifecycle.
func EnemyShootingSystem(ctx *TickContext) {
	const baseFireIntervalTicks = 90
	interval := uint64(float64(baseFireIntervalTicks) / max(ctx.Difficulty.EnemyFireRateMultiplier, 0.1))
	if interval == 0 {
		interval = 1
	}
	for _, id := range entity.View2[entity.Transform, entity.Tag](ctx.Store) {
		tag, _ := entity.Get[entity.Tag](ctx.Store, id)
		if !tag.Has(entity.TagEnemy) {
			continue
		}
		if (ctx.Tick+uint64(id))%interval != 0 {
			continue
		}
		tr, _ := entity.Get[entity.Transform](ctx.Store, id)
		spawnProjectile(ctx.Store, tr.X, tr.Y, -160, 0)
	}
}

func spawnProjectile(store *entity.Store, x, y, vx, vy float32) entity.ID {
	id := store.CreateEntity()
	entity.Emplace(store, id, entity.Transform{X: x, Y: y, Scale: 1})
	entity.Emplace(store, id, entity.Velocity{VX: vx, VY: vy})
	entity.Emplace(store, id, entity.Tag(entity.TagProjectile))
	entity.Emplace(store, id, entity.Hitbox{W: 8, H: 8})
	return id
}
