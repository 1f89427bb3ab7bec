package projectile

import (
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/knockback"
	"github.com/legacymc/combat/world"
)

const (
	thrownGravity = 0.03
	thrownDrag    = 0.01

	// thrownBreakStatus is the entity status byte triggering break particles on the client.
	thrownBreakStatus = 3
)

// ThrownConfig holds the configuration of a simple thrown projectile such as a snowball or egg.
type ThrownConfig struct{}

// New creates the thrown behaviour from the configuration.
func (c ThrownConfig) New() *ThrownBehaviour {
	return &ThrownBehaviour{}
}

// ThrownBehaviour implements snowball and egg behaviour: a zero-damage hit through the pipeline that
// still grants invulnerability frames and knockback, breaking on any collision.
type ThrownBehaviour struct{}

// SpawnSnowball returns the spawn options of a snowball.
func SpawnSnowball() SpawnOpts {
	return SpawnOpts{
		Type:      "minecraft:snowball",
		BBox:      cube.Box(-0.125, 0, -0.125, 0.125, 0.25, 0.125),
		Gravity:   thrownGravity,
		Drag:      thrownDrag,
		Behaviour: ThrownConfig{}.New(),
	}
}

// SpawnEgg returns the spawn options of a thrown egg.
func SpawnEgg() SpawnOpts {
	return SpawnOpts{
		Type:      "minecraft:egg",
		BBox:      cube.Box(-0.125, 0, -0.125, 0.125, 0.25, 0.125),
		Gravity:   thrownGravity,
		Drag:      thrownDrag,
		Behaviour: ThrownConfig{}.New(),
	}
}

// OnHit dispatches a zero-damage hit and breaks the projectile.
func (b *ThrownBehaviour) OnHit(p *Projectile, tx world.Tx, victim world.Living) bool {
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
	tx.TriggerStatus(p, thrownBreakStatus)
	return true
}

// OnStuck breaks the projectile against the block.
func (b *ThrownBehaviour) OnStuck(p *Projectile, tx world.Tx, pos cube.Pos) bool {
	tx.TriggerStatus(p, thrownBreakStatus)
	p.m.Remove(p)
	return false
}

// OnUnstuck ...
func (b *ThrownBehaviour) OnUnstuck(p *Projectile, tx world.Tx) {}

// CanHit allows thrown projectiles to hit any living entity.
func (b *ThrownBehaviour) CanHit(p *Projectile, e world.Entity) bool {
	return true
}
