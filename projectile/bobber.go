package projectile

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/knockback"
	"github.com/legacymc/combat/world"
)

const (
	bobberGravity = 0.07
	bobberDrag    = 0.05

	// MaxLineDistance is the distance from the owner beyond which a bobber auto-retracts.
	MaxLineDistance = 32.0
)

// BobberOrigin selects the knockback origin used when a bobber hits a player.
type BobberOrigin uint8

const (
	// BobberRelative knocks the player back from the bobber position.
	BobberRelative BobberOrigin = iota
	// OriginRelative knocks the player back from the shooter's current position, letting the shooter
	// pull targets by repositioning.
	OriginRelative
)

// BobberConfig holds the configuration of a fishing bobber.
type BobberConfig struct {
	// Origin selects the knockback origin mode for player hits.
	Origin BobberOrigin
}

// New creates the bobber behaviour from the configuration.
func (c BobberConfig) New() *BobberBehaviour {
	return &BobberBehaviour{conf: c}
}

// BobberBehaviour implements fishing bobber behaviour: hooking non-player entities, knocking back
// players without hooking them, and auto-retracting when too far from the owner.
type BobberBehaviour struct {
	conf BobberConfig
}

// SpawnBobber returns the spawn options of a fishing bobber with the behaviour config passed.
func SpawnBobber(conf BobberConfig) SpawnOpts {
	return SpawnOpts{
		Type:      "minecraft:fishing_hook",
		BBox:      cube.Box(-0.125, 0, -0.125, 0.125, 0.25, 0.125),
		Gravity:   bobberGravity,
		Drag:      bobberDrag,
		Behaviour: conf.New(),
	}
}

// PreTick retracts the bobber when its owner is gone or too far away, and suspends physics while an
// entity is hooked.
func (b *BobberBehaviour) PreTick(p *Projectile, tx world.Tx) bool {
	owner := p.ownerEntity(tx)
	if owner == nil {
		p.m.Remove(p)
		return true
	}
	if p.Position().Sub(owner.Position()).Len() > MaxLineDistance {
		p.m.Remove(p)
		return true
	}
	if p.hooked != uuid.Nil {
		if _, ok := tx.Entity(p.hooked); !ok {
			p.hooked = uuid.Nil
			return false
		}
		return true
	}
	return false
}

// OnHit hooks non-player living entities and knocks back players without hooking them.
func (b *BobberBehaviour) OnHit(p *Projectile, tx world.Tx, victim world.Living) bool {
	if _, isPlayer := victim.(world.Player); !isPlayer {
		p.hooked = victim.UUID()
		p.vel = mgl64.Vec3{}
		return false
	}

	res := p.m.pipeline.Apply(tx, victim, damage.Damage{
		Type:                 damage.TypeThrown,
		Attacker:             p.ownerEntity(tx),
		Source:               p,
		Projectile:           p.UUID(),
		ProjectileOriginItem: p.OriginItem(),
	}, nil)
	if res.Applied && p.m.dispatch != nil {
		origin := p.Position()
		if b.conf.Origin == OriginRelative {
			if owner := p.ownerEntity(tx); owner != nil {
				origin = owner.Position()
			}
		}
		res.ShooterOrigin = &origin
		p.m.dispatch(tx, res, knockback.KindProjectile)
	}
	return false
}

// OnStuck lets the bobber rest against the block without sticking.
func (b *BobberBehaviour) OnStuck(p *Projectile, tx world.Tx, pos cube.Pos) bool {
	return false
}

// OnUnstuck ...
func (b *BobberBehaviour) OnUnstuck(p *Projectile, tx world.Tx) {}

// CanHit allows the bobber to touch any living entity; player handling happens in OnHit.
func (b *BobberBehaviour) CanHit(p *Projectile, e world.Entity) bool {
	return true
}

// Hooked returns the entity currently hooked by the bobber, if any.
func (b *BobberBehaviour) Hooked(p *Projectile, tx world.Tx) (world.Entity, bool) {
	if p.hooked == uuid.Nil {
		return nil, false
	}
	return tx.Entity(p.hooked)
}

// Reel resolves reeling the bobber in: a hooked entity is pulled towards the owner and the bobber is
// removed.
func (b *BobberBehaviour) Reel(p *Projectile, tx world.Tx) (pulled world.Entity) {
	if e, ok := b.Hooked(p, tx); ok {
		if owner := p.ownerEntity(tx); owner != nil {
			tx.SetVelocity(e, pullVelocity(owner, e))
		}
		pulled = e
	}
	p.m.Remove(p)
	return pulled
}

// pullVelocity computes the velocity applied to a hooked entity pulled towards the owner.
func pullVelocity(owner, hooked world.Entity) mgl64.Vec3 {
	diff := owner.Position().Sub(hooked.Position()).Mul(0.1)
	top := owner.Position().Add(mgl64.Vec3{0, owner.BBox().Height(), 0})
	diff[1] += math.Sqrt(top.Sub(hooked.Position()).Len()) * 0.08
	return diff
}
