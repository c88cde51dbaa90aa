package instance

import "github.com/voidrunner/arcade/internal/entity"

// checkpointX/Y is the fixed respawn point a player is reset to once its
// RespawnTimer expires (spec.md §4.H respawn policy). A scripted
// checkpoint system is gameplay content out of scope; a single fixed
// point keeps the network-visible lifecycle (respawn -> Invincibility)
// concrete.
const (
	checkpointX float32 = 80
	checkpointY float32 = WorldHeight / 2
)

// Respawn resets a player entity to the checkpoint and attaches a fresh
// Invincibility window of invincibilitySecs, per spec.md §4.H: "at timer
// expiry reset the player to a checkpoint respawn point with
// InvincibilityComponent(3s)."
func Respawn(store *entity.Store, id entity.ID, invincibilitySecs float32) {
	entity.Emplace(store, id, entity.Transform{X: checkpointX, Y: checkpointY, Scale: 1})
	entity.Emplace(store, id, entity.Velocity{})
	if h, ok := entity.Get[entity.Health](store, id); ok {
		entity.Emplace(store, id, entity.Health{Current: h.Max, Max: h.Max})
	}
	entity.Emplace(store, id, entity.Invincibility{Remaining: invincibilitySecs})
}
