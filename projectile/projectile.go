// Package projectile implements the projectile engine of the combat core: per-tick physics with swept
// block collision, raycast entity collision, stuck handling and per-subtype hit behaviour for arrows,
// thrown items, fishing bobbers and ender pearls.
package projectile

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/world"
)

// Behaviour implements the subtype-specific reactions of a projectile. The shared movement tick calls
// into it when the projectile collides.
type Behaviour interface {
	// OnHit handles a collision with a living entity. Returning true removes the projectile.
	OnHit(p *Projectile, tx world.Tx, victim world.Living) bool
	// OnStuck handles a block collision. Returning true freezes the projectile in place; returning
	// false lets it continue with reduced velocity.
	OnStuck(p *Projectile, tx world.Tx, pos cube.Pos) bool
	// OnUnstuck is called when the block a stuck projectile rested against no longer holds it.
	OnUnstuck(p *Projectile, tx world.Tx)
	// CanHit filters entity collision candidates beyond the shared owner and piercing exclusions.
	CanHit(p *Projectile, e world.Entity) bool
}

// Projectile is a projectile entity simulated by the Manager. It implements world.Entity so it can act
// as a damage source.
type Projectile struct {
	m *Manager

	id  int64
	uid uuid.UUID
	typ string

	owner     uuid.UUID
	spawnPos  mgl64.Vec3
	pos       mgl64.Vec3
	prevPos   mgl64.Vec3
	vel       mgl64.Vec3
	rot       cube.Rotation
	bbox      cube.BBox
	onGround  bool

	stuck      bool
	stuckPos   cube.Pos
	stuckDir   mgl64.Vec3
	stuckTicks int

	age       int
	gravity   float64
	drag      float64
	noClip    bool
	noGravity bool

	piercingLevel int
	pierced       map[uuid.UUID]struct{}

	originItem item.Stack
	behaviour  Behaviour

	hooked  uuid.UUID
	removed bool
}

// UUID returns the unique identifier of the projectile.
func (p *Projectile) UUID() uuid.UUID { return p.uid }

// RuntimeID returns the numeric identifier of the projectile.
func (p *Projectile) RuntimeID() int64 { return p.id }

// EntityType returns the type identifier of the projectile, for example "minecraft:arrow".
func (p *Projectile) EntityType() string { return p.typ }

// Position returns the current position of the projectile.
func (p *Projectile) Position() mgl64.Vec3 { return p.pos }

// Velocity returns the current velocity of the projectile in blocks per second.
func (p *Projectile) Velocity() mgl64.Vec3 { return p.vel }

// Rotation returns the yaw and pitch of the projectile, derived from its velocity.
func (p *Projectile) Rotation() cube.Rotation { return p.rot }

// OnGround reports if the projectile rests on the ground.
func (p *Projectile) OnGround() bool { return p.onGround }

// BBox returns the bounding box of the projectile, relative to its position.
func (p *Projectile) BBox() cube.BBox { return p.bbox }

// Owner returns the UUID of the entity that spawned the projectile.
func (p *Projectile) Owner() uuid.UUID { return p.owner }

// SpawnPosition returns the position the projectile was spawned at, used as the shooter origin for
// knockback.
func (p *Projectile) SpawnPosition() mgl64.Vec3 { return p.spawnPos }

// OriginItem returns the item the projectile was spawned from, if any.
func (p *Projectile) OriginItem() item.Stack { return p.originItem }

// Age returns the number of ticks the projectile has existed for.
func (p *Projectile) Age() int { return p.age }

// Behaviour returns the subtype behaviour of the projectile.
func (p *Projectile) Behaviour() Behaviour { return p.behaviour }

// Stuck reports if the projectile is currently stuck in a block.
func (p *Projectile) Stuck() bool { return p.stuck }

// ownerEntity resolves the owner of the projectile, or nil if it was removed.
func (p *Projectile) ownerEntity(tx world.Tx) world.Entity {
	if p.owner == uuid.Nil {
		return nil
	}
	if e, ok := tx.Entity(p.owner); ok {
		return e
	}
	return nil
}
