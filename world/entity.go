package world

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/item"
)

// Entity is an opaque handle to an entity simulated by the host. The combat core consults position,
// velocity and bounding box data through it and mutates velocity and health exclusively through the Tx it
// operates on.
type Entity interface {
	// UUID returns the stable unique identifier of the entity.
	UUID() uuid.UUID
	// RuntimeID returns the per-session numeric identifier of the entity. Runtime IDs are used as keys in
	// hot per-tick maps and are never reused while the entity is alive.
	RuntimeID() int64
	// EntityType returns the type identifier of the entity, for example "minecraft:player".
	EntityType() string
	// Position returns the current position of the entity.
	Position() mgl64.Vec3
	// Velocity returns the current velocity of the entity.
	Velocity() mgl64.Vec3
	// Rotation returns the yaw and pitch of the entity.
	Rotation() cube.Rotation
	// OnGround reports if the entity is currently standing on the ground.
	OnGround() bool
	// BBox returns the bounding box of the entity, relative to its position.
	BBox() cube.BBox
}

// Living is an Entity that has health and may be damaged.
type Living interface {
	Entity
	// Health returns the current health of the entity.
	Health() float64
	// MaxHealth returns the maximum health of the entity.
	MaxHealth() float64
	// InWater reports if the entity is currently inside water.
	InWater() bool
}

// GameMode represents the game mode of a player.
type GameMode int

const (
	// GameModeSurvival is the standard game mode.
	GameModeSurvival GameMode = iota
	// GameModeCreative grants invulnerability to most damage.
	GameModeCreative
	// GameModeSpectator removes the player from the physical world.
	GameModeSpectator
)

// Player is a Living entity controlled by a client.
type Player interface {
	Living
	// Name returns the name of the player.
	Name() string
	// GameMode returns the game mode the player currently plays in.
	GameMode() GameMode
	// Latency returns the current network round-trip time of the player's connection.
	Latency() time.Duration
	// HeldItem returns the item held in the player's main hand.
	HeldItem() item.Stack
	// OffHandItem returns the item held in the player's off hand.
	OffHandItem() item.Stack
	// Armour returns the four armour slots of the player, ordered helmet, chestplate, leggings, boots.
	Armour() [4]item.Stack
	// Sneaking reports if the player is currently sneaking.
	Sneaking() bool
	// Sprinting reports the server-side view of the player's sprint state.
	Sprinting() bool
}

// EyePosition returns the position of the eyes of the entity. For players this accounts for the sneaking
// pose; other entities use 85% of their bounding box height.
func EyePosition(e Entity, heights EyeHeights) mgl64.Vec3 {
	pos := e.Position()
	if p, ok := e.(Player); ok {
		if p.Sneaking() {
			pos[1] += heights.Sneaking
		} else {
			pos[1] += heights.Standing
		}
		return pos
	}
	pos[1] += e.BBox().Height() * 0.85
	return pos
}

// EyeHeights holds the eye heights applied to players per pose. These are enforced server-side regardless
// of what pose heights the client reports.
type EyeHeights struct {
	Standing float64
	Sneaking float64
}

// DefaultEyeHeights returns the vanilla standing and sneaking eye heights.
func DefaultEyeHeights() EyeHeights {
	return EyeHeights{Standing: 1.62, Sneaking: 1.54}
}
