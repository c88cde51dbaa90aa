package instance

import (
	"github.com/voidrunner/arcade/internal/entity"
)

// System is the single-method interface SPEC_FULL.md's inheritance-removal
// design note calls for in place of an ISystem hierarchy: simulation
// systems are composed as an ordered slice, each given the tick's shared
// context.
type System interface {
	Update(ctx *TickContext)
}

// SystemFunc adapts a plain function to System, the way the teacher's
// smaller collaborators (e.g. a single AI behavior) are often expressed as
// a function rather than a named type.
type SystemFunc func(ctx *TickContext)

func (f SystemFunc) Update(ctx *TickContext) { f(ctx) }

// DefaultSystems returns the fixed-order system list spec.md §4.H step 4
// names: player input, movement, boundaries, enemy movement, level
// director, enemy shooting, respawn timer, invincibility timer, cleanup.
// PlayerInputSystem is intentionally absent here — input mapping happens
// earlier, in the instance's own Input-drain phase (§4.H step 3), since it
// needs the session table a generic System doesn't have access to.
func DefaultSystems() []System {
	return []System{
		SystemFunc(MovementSystem),
		SystemFunc(BoundarySystem),
		SystemFunc(EnemyMovementSystem),
		SystemFunc(LevelDirectorSystem),
		SystemFunc(EnemyShootingSystem),
		SystemFunc(RespawnTimerSystem),
		SystemFunc(InvincibilityTimerSystem),
		SystemFunc(CleanupSystem),
	}
}

// MovementSystem integrates Velocity into Transform for every entity
// carrying both.
func MovementSystem(ctx *TickContext) {
	for _, id := range entity.View2[entity.Transform, entity.Velocity](ctx.Store) {
		tr, _ := entity.Get[entity.Transform](ctx.Store, id)
		vel, _ := entity.Get[entity.Velocity](ctx.Store, id)
		tr.X += vel.VX * ctx.DT
		tr.Y += vel.VY * ctx.DT
		entity.Emplace(ctx.Store, id, tr)
	}
}

// BoundarySystem clamps player entities to the playfield and lets
// non-player entities (enemies, projectiles) drift past the edge for
// CleanupSystem to reap — a player should never be pushed off-screen by
// its own input.
func BoundarySystem(ctx *TickContext) {
	for _, id := range entity.View2[entity.Transform, entity.Tag](ctx.Store) {
		tag, _ := entity.Get[entity.Tag](ctx.Store, id)
		if !tag.Has(entity.TagPlayer) {
			continue
		}
		tr, _ := entity.Get[entity.Transform](ctx.Store, id)
		if tr.X < 0 {
			tr.X = 0
		}
		if tr.X > WorldWidth {
			tr.X = WorldWidth
		}
		if tr.Y < 0 {
			tr.Y = 0
		}
		if tr.Y > WorldHeight {
			tr.Y = WorldHeight
		}
		entity.Emplace(ctx.Store, id, tr)
	}
}

// EnemyMovementSystem applies a minimal default pattern (advance toward
// -X, the scroll direction) to enemies that have no player-set velocity.
// The concrete enemy AI/pattern table is explicitly out of this
// subsystem's scope (spec.md §1); this keeps replicated entities moving
// so the network/replication path has something real to exercise.
func EnemyMovementSystem(ctx *TickContext) {
	const enemySpeed = 60
	for _, id := range entity.View2[entity.Transform, entity.Tag](ctx.Store) {
		tag, _ := entity.Get[entity.Tag](ctx.Store, id)
		if !tag.Has(entity.TagEnemy) {
			continue
		}
		if !entity.Has[entity.Velocity](ctx.Store, id) {
			entity.Emplace(ctx.Store, id, entity.Velocity{VX: -enemySpeed * float32(ctx.Difficulty.EnemyFireRateMultiplier)})
		}
	}
}

// RespawnTimerSystem counts down RespawnTimer components, raising the
// respawn-at-checkpoint transition (spec.md §4.H respawn policy) once a
// timer reaches zero.
func RespawnTimerSystem(ctx *TickContext) {
	for _, id := range entity.View1[entity.RespawnTimer](ctx.Store) {
		rt, _ := entity.Get[entity.RespawnTimer](ctx.Store, id)
		rt.Remaining -= ctx.DT
		if rt.Remaining <= 0 {
			entity.Remove[entity.RespawnTimer](ctx.Store, id)
			Respawn(ctx.Store, id, ctx.RespawnInvincibilitySecs)
			continue
		}
		entity.Emplace(ctx.Store, id, rt)
	}
}

// InvincibilityTimerSystem counts down a temporary damage-immunity window
// and advances its blink phase for client-side rendering.
func InvincibilityTimerSystem(ctx *TickContext) {
	const blinkHz = 6
	for _, id := range entity.View1[entity.Invincibility](ctx.Store) {
		inv, _ := entity.Get[entity.Invincibility](ctx.Store, id)
		inv.Remaining -= ctx.DT
		if inv.Remaining <= 0 {
			entity.Remove[entity.Invincibility](ctx.Store, id)
			continue
		}
		inv.BlinkPhase += ctx.DT * blinkHz
		for inv.BlinkPhase > 1 {
			inv.BlinkPhase -= 1
		}
		entity.Emplace(ctx.Store, id, inv)
	}
}

// CleanupSystem reaps off-screen and expired transient entities
// (projectiles/FX tagged Projectile) per spec.md §4.H step 4.
func CleanupSystem(ctx *TickContext) {
	for _, id := range entity.View2[entity.Transform, entity.Tag](ctx.Store) {
		tag, _ := entity.Get[entity.Tag](ctx.Store, id)
		if !tag.Has(entity.TagProjectile) {
			continue
		}
		tr, _ := entity.Get[entity.Transform](ctx.Store, id)
		if tr.X < -despawnMargin || tr.X > WorldWidth+despawnMargin ||
			tr.Y < -despawnMargin || tr.Y > WorldHeight+despawnMargin {
			ctx.Store.DestroyEntity(id)
		}
	}
}
