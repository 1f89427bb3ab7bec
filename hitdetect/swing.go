package hitdetect

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/cube/trace"
	"github.com/legacymc/combat/world"
)

// AttackFunc is invoked when the swing-window tracker resolves a swing into a hit. The combat core
// wires this into the damage pipeline with the swing-window context flag set, so the hit is not
// recorded back into the victim map.
type AttackFunc func(tx world.Tx, attacker world.Player, victim world.Living) bool

// SwingConfig holds the construction parameters of a SwingTracker.
type SwingConfig struct {
	// Log is the logger debug messages are reported on. Defaults to slog.Default().
	Log *slog.Logger
	// Clock is the tick clock of the simulation.
	Clock *clock.Clock
	// HitWindowTicks is how long a recorded attacker→victim pair stays valid. Defaults to 5.
	HitWindowTicks int
	// LookCheckTicks is how long an unconsumed swing may wait for the crosshair to land on a recorded
	// victim. Defaults to 3.
	LookCheckTicks int
	// Reach is the reach gate applied before a swing resolves into a hit.
	Reach ReachConfig
	// EyeHeights are the per-pose eye heights used for rays.
	EyeHeights world.EyeHeights
	// Attack resolves a swing into a damage event.
	Attack AttackFunc
}

// New validates the config and returns a SwingTracker.
func (conf SwingConfig) New() (*SwingTracker, error) {
	if conf.Clock == nil {
		return nil, errors.New("hitdetect: swing tracker requires a clock")
	}
	if conf.Attack == nil {
		return nil, errors.New("hitdetect: swing tracker requires an attack func")
	}
	if conf.HitWindowTicks <= 0 {
		conf.HitWindowTicks = 5
	}
	if conf.LookCheckTicks <= 0 {
		conf.LookCheckTicks = 3
	}
	if conf.EyeHeights == (world.EyeHeights{}) {
		conf.EyeHeights = world.DefaultEyeHeights()
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	return &SwingTracker{
		log:        conf.Log,
		clock:      conf.Clock,
		hitWindow:  int64(conf.HitWindowTicks),
		lookCheck:  int64(conf.LookCheckTicks),
		reach:      conf.Reach,
		eyeHeights: conf.EyeHeights,
		attack:     conf.Attack,
		attackers:  make(map[uuid.UUID]*swingState),
	}, nil
}

// swingState is the per-attacker swing-window state: recently hit victims and swing consumption.
type swingState struct {
	victims      map[uuid.UUID]int64
	lastSwing    int64
	lastConsumed int64
}

// SwingTracker records attacker→victim pairs across ticks so a later swing with the crosshair over the
// victim still registers as a hit. Under latency the client may swing before its crosshair is actually
// on the victim; the tracker retains the intent across the window so the first valid raycast within it
// lands the hit.
type SwingTracker struct {
	log        *slog.Logger
	clock      *clock.Clock
	hitWindow  int64
	lookCheck  int64
	reach      ReachConfig
	eyeHeights world.EyeHeights
	attack     AttackFunc

	attackers map[uuid.UUID]*swingState
}

// state returns the swing state of the attacker, creating it on first use.
func (t *SwingTracker) state(attacker uuid.UUID) *swingState {
	s, ok := t.attackers[attacker]
	if !ok {
		s = &swingState{victims: make(map[uuid.UUID]int64, 4), lastSwing: -1, lastConsumed: -1}
		t.attackers[attacker] = s
	}
	return s
}

// RecordHit records a landed hit of the attacker on the victim. Hits produced by the swing window
// itself are not recorded, which the combat core enforces through the pipeline context.
func (t *SwingTracker) RecordHit(attacker, victim uuid.UUID) {
	t.state(attacker).victims[victim] = t.clock.Tick()
}

// RecordSwing records an arm-swing animation of the attacker.
func (t *SwingTracker) RecordSwing(attacker uuid.UUID) {
	t.state(attacker).lastSwing = t.clock.Tick()
}

// ConsumeSwing marks the attacker's latest swing as consumed, preventing it from resolving into
// further hits.
func (t *SwingTracker) ConsumeSwing(attacker uuid.UUID) {
	s := t.state(attacker)
	s.lastConsumed = s.lastSwing
}

// Remove drops the swing state of the attacker, called on disconnect.
func (t *SwingTracker) Remove(attacker uuid.UUID) {
	delete(t.attackers, attacker)
}

// TickPlayer checks the player's unconsumed swing against its recorded victims and resolves the first
// one the crosshair lands on into a damage event. Entries older than the hit window are pruned as they
// are read.
func (t *SwingTracker) TickPlayer(tx world.Tx, p world.Player) {
	s, ok := t.attackers[p.UUID()]
	if !ok {
		return
	}
	now := t.clock.Tick()
	if s.lastSwing < 0 || s.lastSwing <= s.lastConsumed || now-s.lastSwing > t.lookCheck {
		return
	}

	eye := world.EyePosition(p, t.eyeHeights)
	dir := p.Rotation().Vec3()
	reach := t.reach.withDefaults()
	end := eye.Add(dir.Mul(reach.MaxReach + reach.ExpansionLimit))

	for victimID, hitTick := range s.victims {
		if now-hitTick > t.hitWindow {
			delete(s.victims, victimID)
			continue
		}
		e, ok := tx.Entity(victimID)
		if !ok {
			delete(s.victims, victimID)
			continue
		}
		victim, ok := e.(world.Living)
		if !ok {
			continue
		}
		box := e.BBox().Translate(e.Position()).Grow(primaryHitboxExpansion)
		hit, ok := trace.BBoxIntercept(box, eye, end)
		if !ok {
			continue
		}
		if !t.reach.Valid(p, e, t.eyeHeights) {
			continue
		}
		if Occluded(tx, eye, hit.Position()) {
			continue
		}
		t.ConsumeSwing(p.UUID())
		t.attack(tx, p, victim)
		return
	}
}
