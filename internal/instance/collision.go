package instance

import "github.com/voidrunner/arcade/internal/entity"

// aabbOverlap reports whether two axis-aligned boxes, given as centers
// plus half-extents derived from Hitbox, intersect.
func aabbOverlap(ax, ay, aw, ah, bx, by, bw, bh float32) bool {
	return ax-aw/2 < bx+bw/2 && ax+aw/2 > bx-bw/2 &&
		ay-ah/2 < by+bh/2 && ay+ah/2 > by-bh/2
}

// DamageEvent records one entity taking damage from another during a
// single collision pass, before Health is applied — kept separate so the
// score system (a projectile's owner, not modeled in this subsystem's
// scope, would normally be credited here) can observe it.
type DamageEvent struct {
	Victim entity.ID
	Amount int32
}

// CollisionAndDamage detects AABB overlaps among every entity carrying a
// Hitbox, applies a fixed contact-damage rule between opposing tags
// (Player<->Enemy and Player<->Projectile; projectiles carry no owner, so
// Enemy<->Projectile contacts register nothing), destroys any projectile
// involved in a contact, and returns one DamageEvent per damaged entity —
// spec.md §4.H step 5. It does not reap entities whose Health reaches
// zero; the caller does that from the returned events. The specific
// damage table is gameplay content out of
// scope; this applies one fixed amount per contact so the network-visible
// Health/dead lifecycle is exercised end to end.
func CollisionAndDamage(ctx *TickContext) []DamageEvent {
	const contactDamage = 10

	ids := entity.View2[entity.Transform, entity.Hitbox](ctx.Store)
	var events []DamageEvent

	for i := 0; i < len(ids); i++ {
		a := ids[i]
		if entity.Has[entity.Invincibility](ctx.Store, a) {
			continue
		}
		atag, _ := entity.Get[entity.Tag](ctx.Store, a)
		atr, _ := entity.Get[entity.Transform](ctx.Store, a)
		ahb, _ := entity.Get[entity.Hitbox](ctx.Store, a)

		for j := i + 1; j < len(ids); j++ {
			b := ids[j]
			btag, _ := entity.Get[entity.Tag](ctx.Store, b)
			if !opposing(atag, btag) {
				continue
			}
			btr, _ := entity.Get[entity.Transform](ctx.Store, b)
			bhb, _ := entity.Get[entity.Hitbox](ctx.Store, b)
			if !aabbOverlap(atr.X+ahb.OffsetX, atr.Y+ahb.OffsetY, ahb.W, ahb.H,
				btr.X+bhb.OffsetX, btr.Y+bhb.OffsetY, bhb.W, bhb.H) {
				continue
			}

			applyDamage(ctx.Store, a, atag, contactDamage, &events)
			applyDamage(ctx.Store, b, btag, contactDamage, &events)

			if btag.Has(entity.TagProjectile) {
				ctx.Store.DestroyEntity(b)
			}
			if atag.Has(entity.TagProjectile) {
				ctx.Store.DestroyEntity(a)
			}
		}
	}
	return events
}

// opposing reports whether two tags should register damage on contact.
func opposing(a, b entity.Tag) bool {
	playerSide := a.Has(entity.TagPlayer) || b.Has(entity.TagPlayer)
	enemySide := a.Has(entity.TagEnemy) || a.Has(entity.TagProjectile) ||
		b.Has(entity.TagEnemy) || b.Has(entity.TagProjectile)
	return playerSide && enemySide && a != b
}

func applyDamage(store *entity.Store, id entity.ID, tag entity.Tag, amount int32, events *[]DamageEvent) {
	if tag.Has(entity.TagProjectile) || tag.Has(entity.TagObstacle) {
		return
	}
	h, ok := entity.Get[entity.Health](store, id)
	if !ok {
		return
	}
	h.Current -= amount
	entity.Emplace(store, id, h)
	*events = append(*events, DamageEvent{Victim: id, Amount: amount})
}
