package projectile

import (
	"math"
	"math/rand/v2"

	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/knockback"
	"github.com/legacymc/combat/world"
)

const (
	// arrowBaseDamage is the damage dealt per block/tick of arrow speed.
	arrowBaseDamage = 2.0
	arrowGravity    = 0.05
	arrowDrag       = 0.01
)

// ArrowConfig holds the configuration of an arrow projectile.
type ArrowConfig struct {
	// BaseDamage is the damage per block/tick of speed. The zero value uses the vanilla 2.0.
	BaseDamage float64
	// Critical adds a random damage bonus, set for fully-drawn bow shots.
	Critical bool
	// FireTicks sets the victim on fire on hit, produced by the flame enchantment.
	FireTicks int
	// PunchLevel is the punch enchantment level, adding horizontal knockback.
	PunchLevel int
	// PowerLevel is the power enchantment level, adding damage.
	PowerLevel int
}

// New creates the arrow behaviour from the configuration.
func (c ArrowConfig) New() *ArrowBehaviour {
	if c.BaseDamage == 0 {
		c.BaseDamage = arrowBaseDamage
	}
	return &ArrowBehaviour{conf: c}
}

// ArrowBehaviour implements the hit behaviour of arrows: speed-scaled damage through the pipeline,
// flame ignition, punch knockback from the shooter origin and sticking into blocks.
type ArrowBehaviour struct {
	conf ArrowConfig
}

// SpawnArrow returns the spawn options of an arrow with the behaviour config passed.
func SpawnArrow(conf ArrowConfig) SpawnOpts {
	return SpawnOpts{
		Type:      "minecraft:arrow",
		BBox:      cube.Box(-0.25, 0, -0.25, 0.25, 0.25, 0.25),
		Gravity:   arrowGravity,
		Drag:      arrowDrag,
		Behaviour: conf.New(),
	}
}

// OnHit computes the speed-scaled arrow damage and dispatches it through the pipeline.
func (b *ArrowBehaviour) OnHit(p *Projectile, tx world.Tx, victim world.Living) bool {
	speed := p.vel.Len() / clock.TicksPerSecond
	dmg := math.Ceil(math.Min(math.Max(speed*b.conf.BaseDamage, 0), math.MaxInt32))
	if b.conf.PowerLevel > 0 {
		dmg += 0.5*float64(b.conf.PowerLevel) + 0.5
	}
	if b.conf.Critical {
		dmg += float64(rand.IntN(int(dmg/2) + 2))
	}

	origin := p.SpawnPosition()
	res := p.m.pipeline.Apply(tx, victim, damage.Damage{
		Type:                 damage.TypeArrow,
		Amount:               dmg,
		Attacker:             p.ownerEntity(tx),
		Source:               p,
		Projectile:           p.UUID(),
		ProjectileOriginItem: p.OriginItem(),
		ShooterOrigin:        &origin,
		EnchantLevel:         b.conf.PunchLevel,
	}, nil)
	if res.Applied {
		if b.conf.FireTicks > 0 {
			tx.SetOnFire(victim, b.conf.FireTicks)
		}
		if p.m.dispatch != nil {
			p.m.dispatch(tx, res, knockback.KindProjectile)
		}
		if p.piercingLevel > 0 && len(p.pierced) < p.piercingLevel {
			p.pierced[victim.UUID()] = struct{}{}
			return false
		}
	}
	return true
}

// OnStuck sticks the arrow into the block it collided with.
func (b *ArrowBehaviour) OnStuck(p *Projectile, tx world.Tx, pos cube.Pos) bool {
	tx.PlaySound(p.Position(), "random.bowhit")
	return true
}

// OnUnstuck lets the arrow fall when its block is broken.
func (b *ArrowBehaviour) OnUnstuck(p *Projectile, tx world.Tx) {}

// CanHit allows arrows to hit any living entity.
func (b *ArrowBehaviour) CanHit(p *Projectile, e world.Entity) bool {
	return true
}
