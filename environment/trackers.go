// Package environment implements the environmental damage trackers of the combat core: fall distance
// accumulation, fire and lava ticking and cactus contact. The trackers are pure dispatchers into the
// damage pipeline.
package environment

import (
	"errors"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/tag"
	"github.com/legacymc/combat/world"
)

// Config holds the construction parameters of the Trackers.
type Config struct {
	// Log is the logger warnings are reported on. Defaults to slog.Default().
	Log *slog.Logger
	// Clock is the tick clock of the simulation.
	Clock *clock.Clock
	// Tags is the tag store the fire cascade reads from.
	Tags *tag.Store
	// Pipeline is the damage pipeline environmental damage dispatches into.
	Pipeline *damage.Pipeline
	// SafeFallDistance is the fall distance below which no damage applies. Defaults to 3.
	SafeFallDistance float64
	// FallMultiplier scales fall damage. Defaults to 1.
	FallMultiplier float64
	// FireDamage is the damage per fire tick. Defaults to 1.
	FireDamage float64
	// LavaDamage is the damage per lava tick. Defaults to 4.
	LavaDamage float64
	// CactusDamage is the damage per cactus contact tick. Defaults to 1.
	CactusDamage float64
}

// New validates the config and returns the Trackers.
func (conf Config) New() (*Trackers, error) {
	if conf.Clock == nil {
		return nil, errors.New("environment: trackers require a clock")
	}
	if conf.Pipeline == nil {
		return nil, errors.New("environment: trackers require a damage pipeline")
	}
	if conf.Tags == nil {
		return nil, errors.New("environment: trackers require a tag store")
	}
	if conf.SafeFallDistance == 0 {
		conf.SafeFallDistance = 3
	}
	if conf.FallMultiplier == 0 {
		conf.FallMultiplier = 1
	}
	if conf.FireDamage == 0 {
		conf.FireDamage = 1
	}
	if conf.LavaDamage == 0 {
		conf.LavaDamage = 4
	}
	if conf.CactusDamage == 0 {
		conf.CactusDamage = 1
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	return &Trackers{
		log:      conf.Log,
		clock:    conf.Clock,
		tags:     conf.Tags,
		pipeline: conf.Pipeline,
		conf:     conf,
		fall:     make(map[uuid.UUID]*fallState),
		fire:     make(map[uuid.UUID]*fireState),
	}, nil
}

// fallState accumulates the non-grounded downward movement of a player.
type fallState struct {
	distance float64
	lastY    float64
	tracked  bool
}

// fireState tracks the burn scheduling of a player.
type fireState struct {
	burning  bool
	nextTick int64
}

// Trackers drives the environmental damage of all players, ticked once per player per tick.
type Trackers struct {
	log      *slog.Logger
	clock    *clock.Clock
	tags     *tag.Store
	pipeline *damage.Pipeline
	conf     Config

	fall map[uuid.UUID]*fallState
	fire map[uuid.UUID]*fireState
}

// TickPlayer advances all environmental trackers for the player passed.
func (t *Trackers) TickPlayer(tx world.Tx, p world.Player) {
	t.tickFall(tx, p)
	t.tickFire(tx, p)
	t.tickCactus(tx, p)
}

// FallDistance returns the accumulated fall distance of the entity passed.
func (t *Trackers) FallDistance(e world.Entity) float64 {
	if s, ok := t.fall[e.UUID()]; ok {
		return s.distance
	}
	return 0
}

// ResetFall zeroes the fall distance of the entity passed, used on death, spawn, void and pearl
// teleports.
func (t *Trackers) ResetFall(e world.Entity) {
	if s, ok := t.fall[e.UUID()]; ok {
		s.distance = 0
		s.tracked = false
	}
}

// Reset drops all tracker state of the player, called on death, respawn and disconnect.
func (t *Trackers) Reset(id uuid.UUID) {
	delete(t.fall, id)
	delete(t.fire, id)
}

// tickFall accumulates downward movement and dispatches fall damage on ground contact.
func (t *Trackers) tickFall(tx world.Tx, p world.Player) {
	s, ok := t.fall[p.UUID()]
	if !ok {
		s = &fallState{}
		t.fall[p.UUID()] = s
	}
	y := p.Position()[1]
	if s.tracked {
		if delta := s.lastY - y; delta > 0 && !p.OnGround() {
			s.distance += delta
		}
	}
	s.lastY = y
	s.tracked = true

	if p.InWater() || world.IsInVoid(tx, p.Position()) {
		s.distance = 0
		return
	}
	if !p.OnGround() || s.distance <= 0 {
		return
	}

	distance := s.distance
	s.distance = 0
	if distance <= t.conf.SafeFallDistance {
		return
	}
	amount := math.Max(0, math.Ceil(distance-t.conf.SafeFallDistance)) * t.conf.FallMultiplier
	t.pipeline.Apply(tx, p, damage.Damage{
		Type:      damage.TypeFall,
		Amount:    amount,
		SourcePos: p.Position(),
	}, nil)
}

// tickFire dispatches fire, lava and burn damage, scheduled per the resolved ignition mode.
func (t *Trackers) tickFire(tx world.Tx, p world.Player) {
	s, ok := t.fire[p.UUID()]
	if !ok {
		s = &fireState{}
		t.fire[p.UUID()] = s
	}

	feet := cube.PosFromVec3(p.Position())
	block := tx.Block(feet)
	typ, amount := damage.Type(0), 0.0
	switch {
	case world.Lava(block):
		typ, amount = damage.TypeLava, t.conf.LavaDamage
	case world.Fire(block):
		typ, amount = damage.TypeFire, t.conf.FireDamage
	}

	now := t.clock.Tick()
	if amount > 0 {
		res := damage.Resolve(t.tags, typ, damage.Layers{Victim: p.UUID()})
		if res.Disabled || !res.Props.Enabled {
			s.burning = false
			return
		}
		delay := int64(res.Props.IgnitionDelayTicks)
		if delay <= 0 {
			delay = 20
		}
		if !s.burning {
			s.burning = true
			switch res.Props.IgnitionMode {
			case damage.IgnitionInstant:
				t.dispatchFire(tx, p, typ, amount)
				s.nextTick = now + delay
			case damage.IgnitionTickBased:
				s.nextTick = 0
			default:
				s.nextTick = now + delay
			}
		}
		switch res.Props.IgnitionMode {
		case damage.IgnitionTickBased:
			if now%delay == 0 {
				t.dispatchFire(tx, p, typ, amount)
			}
		default:
			if now >= s.nextTick {
				t.dispatchFire(tx, p, typ, amount)
				s.nextTick = now + delay
			}
		}
		return
	}

	s.burning = false
	if fireTicks := tx.OnFireTicks(p); fireTicks > 0 {
		if now%20 == 0 {
			t.dispatchFire(tx, p, damage.TypeOnFire, t.conf.FireDamage)
		}
	}
}

// dispatchFire sends a fire damage event into the pipeline.
func (t *Trackers) dispatchFire(tx world.Tx, p world.Player, typ damage.Type, amount float64) {
	t.pipeline.Apply(tx, p, damage.Damage{
		Type:      typ,
		Amount:    amount,
		SourcePos: p.Position(),
	}, nil)
}

// tickCactus dispatches contact damage while the player's bounding box touches a cactus.
func (t *Trackers) tickCactus(tx world.Tx, p world.Player) {
	box := p.BBox().Translate(p.Position()).Grow(0.1)
	min, max := box.Min(), box.Max()
	for y := int(math.Floor(min[1])); y <= int(math.Floor(max[1])); y++ {
		for x := int(math.Floor(min[0])); x <= int(math.Floor(max[0])); x++ {
			for z := int(math.Floor(min[2])); z <= int(math.Floor(max[2])); z++ {
				pos := cube.Pos{x, y, z}
				b := tx.Block(pos)
				if !world.Cactus(b) {
					continue
				}
				intersects := false
				offset := pos.Vec3()
				for _, shape := range b.Model().BBox(pos) {
					if shape.Translate(offset).IntersectsWith(box) {
						intersects = true
						break
					}
				}
				if !intersects {
					continue
				}
				t.pipeline.Apply(tx, p, damage.Damage{
					Type:      damage.TypeCactus,
					Amount:    t.conf.CactusDamage,
					SourcePos: pos.Vec3Centre(),
				}, nil)
				return
			}
		}
	}
}
