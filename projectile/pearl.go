package projectile

import (
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/knockback"
	"github.com/legacymc/combat/world"
)

const (
	pearlGravity = 0.03
	pearlDrag    = 0.01

	// pearlFallDamage is the damage the owner takes on a pearl teleport.
	pearlFallDamage = 5.0
)

// PearlConfig holds the configuration of a thrown ender pearl.
type PearlConfig struct {
	// FallDamage is the damage applied to the owner on teleport. The zero value uses the vanilla 5.
	FallDamage float64
	// NoFallDamage disables the teleport damage entirely.
	NoFallDamage bool
}

// New creates the pearl behaviour from the configuration.
func (c PearlConfig) New() *PearlBehaviour {
	if c.FallDamage == 0 {
		c.FallDamage = pearlFallDamage
	}
	return &PearlBehaviour{conf: c}
}

// PearlBehaviour implements ender pearl behaviour: any collision teleports the owner to the pearl's
// previous position and applies fall damage.
type PearlBehaviour struct {
	conf PearlConfig
}

// SpawnPearl returns the spawn options of an ender pearl with the behaviour config passed.
func SpawnPearl(conf PearlConfig) SpawnOpts {
	return SpawnOpts{
		Type:      "minecraft:ender_pearl",
		BBox:      cube.Box(-0.125, 0, -0.125, 0.125, 0.25, 0.125),
		Gravity:   pearlGravity,
		Drag:      pearlDrag,
		Behaviour: conf.New(),
	}
}

// OnHit dispatches a zero-damage hit against the victim and teleports the owner.
func (b *PearlBehaviour) OnHit(p *Projectile, tx world.Tx, victim world.Living) bool {
	res := p.m.pipeline.Apply(tx, victim, damage.Damage{
		Type:                 damage.TypeThrown,
		Attacker:             p.ownerEntity(tx),
		Source:               p,
		Projectile:           p.UUID(),
		ProjectileOriginItem: p.OriginItem(),
	}, nil)
	if res.Applied && p.m.dispatch != nil {
		p.m.dispatch(tx, res, knockback.KindProjectile)
	}
	b.teleportOwner(p, tx)
	return true
}

// OnStuck teleports the owner when the pearl lands on a block.
func (b *PearlBehaviour) OnStuck(p *Projectile, tx world.Tx, pos cube.Pos) bool {
	b.teleportOwner(p, tx)
	p.m.Remove(p)
	return false
}

// OnUnstuck ...
func (b *PearlBehaviour) OnUnstuck(p *Projectile, tx world.Tx) {}

// CanHit prevents the pearl from colliding with its owner even after the shared grace window, so a
// straight-up throw still teleports instead of self-hitting.
func (b *PearlBehaviour) CanHit(p *Projectile, e world.Entity) bool {
	return e.UUID() != p.Owner()
}

// teleportOwner moves the owner to the pearl's previous position, resets its fall distance and applies
// the teleport damage. Hosts exempting riding or sleeping players do so with a damage handler.
func (b *PearlBehaviour) teleportOwner(p *Projectile, tx world.Tx) {
	owner := p.ownerEntity(tx)
	if owner == nil {
		return
	}
	tx.Teleport(owner, p.prevPos)
	if p.m.resetFall != nil {
		p.m.resetFall(owner)
	}
	if b.conf.NoFallDamage {
		return
	}
	if living, ok := owner.(world.Living); ok {
		p.m.pipeline.Apply(tx, living, damage.Damage{
			Type:      damage.TypeFall,
			Amount:    b.conf.FallDamage,
			SourcePos: p.prevPos,
		}, nil)
	}
}
