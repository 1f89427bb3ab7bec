package knockback

import (
	"errors"
	"log/slog"

	"github.com/brentp/intintmap"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/tag"
	"github.com/legacymc/combat/world"
)

// Kind is the kind of hit knockback is dispatched for.
type Kind uint8

const (
	// KindAttack is knockback from a melee attack.
	KindAttack Kind = iota
	// KindProjectile is knockback from a projectile hit, sourced at the shooter origin.
	KindProjectile
)

// BlockingChecker reports the blocking state of player victims so their knockback can be dampened.
type BlockingChecker interface {
	IsBlocking(p world.Player) bool
	KnockbackMultipliers(p world.Player) (h, v float64)
}

// EngineConfig holds the construction parameters of an Engine.
type EngineConfig struct {
	// Log is the logger warnings are reported on. Defaults to slog.Default().
	Log *slog.Logger
	// Clock is the tick clock of the simulation.
	Clock *clock.Clock
	// Tags is the tag store the cascade reads from.
	Tags *tag.Store
	// Default is the server default knockback configuration. The zero value is replaced by Default().
	Default Config
	// SprintWindowTicks caps the latency-compensated sprint lookup window. Defaults to 10.
	SprintWindowTicks int
	// Blocking, if non-nil, dampens knockback on blocking victims.
	Blocking BlockingChecker
}

// New validates the config and returns an Engine.
func (conf EngineConfig) New() (*Engine, error) {
	if conf.Clock == nil {
		return nil, errors.New("knockback: engine requires a clock")
	}
	if conf.Tags == nil {
		return nil, errors.New("knockback: engine requires a tag store")
	}
	if conf.Default == (Config{}) {
		conf.Default = Default()
	}
	if err := conf.Default.Validate(); err != nil {
		return nil, err
	}
	if conf.SprintWindowTicks <= 0 {
		conf.SprintWindowTicks = 10
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	return &Engine{
		log:           conf.Log,
		clock:         conf.Clock,
		tags:          conf.Tags,
		def:           conf.Default,
		sprintWindow:  conf.SprintWindowTicks,
		blocking:      conf.Blocking,
		sprint:        NewSprintTracker(conf.Clock),
		lastKnockback: intintmap.New(1024, 0.6),
	}, nil
}

// Source describes a hit for which knockback is dispatched.
type Source struct {
	// Victim is the entity receiving knockback.
	Victim world.Living
	// Attacker is the entity responsible for the hit, or nil.
	Attacker world.Entity
	// Source is the direct cause of the hit, possibly equal to Attacker.
	Source world.Entity
	// AttackerItem is the item held by the attacker, for cascade resolution.
	AttackerItem item.Stack
	// ProjectileOriginItem is the item the source projectile was spawned from, if any.
	ProjectileOriginItem item.Stack
	// Projectile is the UUID of the source projectile entity, or uuid.Nil.
	Projectile uuid.UUID
	// ShooterOrigin is the position knockback is computed from for projectile hits, recorded at
	// projectile spawn.
	ShooterOrigin *mgl64.Vec3
	// Kind selects attack or projectile knockback.
	Kind Kind
	// WasSprinting carries a trusted sprint state. Nil consults the sprint ring buffer.
	WasSprinting *bool
	// EnchantLevel is the knockback or punch enchantment level of the hit.
	EnchantLevel int
	// Blockable marks the hit as affected by blocking dampening.
	Blockable bool
}

// Engine computes and applies knockback velocity from damage results.
type Engine struct {
	log          *slog.Logger
	clock        *clock.Clock
	tags         *tag.Store
	def          Config
	sprintWindow int
	blocking     BlockingChecker

	sprint        *SprintTracker
	lastKnockback *intintmap.Map
}

// Sprint returns the sprint tracker fed by the per-player tick handler.
func (e *Engine) Sprint() *SprintTracker {
	return e.sprint
}

// Apply resolves the knockback configuration for the hit passed and applies the resulting velocity to
// the victim. It returns false if the victim already received knockback this tick.
func (e *Engine) Apply(tx world.Tx, s Source) bool {
	if s.Victim == nil {
		e.log.Warn("knockback dispatch without victim")
		return false
	}
	now := e.clock.Tick()
	if t, ok := e.lastKnockback.Get(s.Victim.RuntimeID()); ok && t == now {
		return false
	}

	layers := Layers{
		ProjectileOriginItem: s.ProjectileOriginItem,
		Victim:               s.Victim.UUID(),
		Projectile:           s.Projectile,
		AttackerItem:         s.AttackerItem,
	}
	if s.Attacker != nil {
		layers.Attacker = s.Attacker.UUID()
		if layers.AttackerItem.Empty() {
			if ap, ok := s.Attacker.(world.Player); ok {
				layers.AttackerItem = ap.HeldItem()
			}
		}
	}
	cfg := Resolve(e.tags, layers, e.def)

	posDir, lookDir := e.directions(s)
	sprint := e.effectiveSprint(s)
	airborne := !s.Victim.OnGround()

	hMag := cfg.Horizontal
	if airborne {
		hMag += cfg.AirHorizontal
	}
	hMag += float64(s.EnchantLevel) * cfg.EnchantPerLevel
	if sprint {
		hMag += cfg.SprintHorizontal
	}
	vMag := cfg.Vertical
	if airborne {
		vMag += cfg.AirVertical
	}
	if sprint {
		vMag += cfg.SprintVertical
	}

	weight := cfg.LookWeight
	if sprint {
		weight = cfg.SprintLookWeight
	}
	var horizontal mgl64.Vec3
	switch cfg.Blend {
	case AddVectors:
		horizontal = posDir.Mul(hMag * (1 - weight)).Add(lookDir.Mul(hMag * weight))
	default:
		dir := posDir.Mul(1 - weight).Add(lookDir.Mul(weight))
		if dir.Len() < 1e-8 {
			dir = posDir
		}
		if dir.Len() >= 1e-8 {
			dir = dir.Normalize()
		}
		horizontal = dir.Mul(hMag)
	}

	if vMag > cfg.VerticalLimit {
		vMag = cfg.VerticalLimit
	}

	vel := mgl64.Vec3{horizontal[0], vMag, horizontal[2]}
	if vp, ok := s.Victim.(world.Player); ok && e.blocking != nil && s.Blockable && e.blocking.IsBlocking(vp) {
		bh, bv := e.blocking.KnockbackMultipliers(vp)
		vel[0] *= bh
		vel[1] *= bv
		vel[2] *= bh
	}

	tx.SetVelocity(s.Victim, vel)
	e.lastKnockback.Put(s.Victim.RuntimeID(), now)
	return true
}

// directions computes the position-relative and look-relative knockback directions in the XZ plane.
func (e *Engine) directions(s Source) (posDir, lookDir mgl64.Vec3) {
	var srcPos mgl64.Vec3
	switch {
	case s.Kind == KindProjectile && s.ShooterOrigin != nil:
		srcPos = *s.ShooterOrigin
	case s.Source != nil:
		srcPos = s.Source.Position()
	case s.Attacker != nil:
		srcPos = s.Attacker.Position()
	default:
		srcPos = s.Victim.Position()
	}

	looker := s.Attacker
	if looker == nil {
		looker = s.Source
	}
	if looker != nil {
		lookDir = looker.Rotation().DirectionVec3()
	}

	posDir = s.Victim.Position().Sub(srcPos)
	posDir[1] = 0
	if posDir.Len() < 1e-8 {
		// The source stands inside the victim; fall back to its look direction.
		posDir = lookDir
	} else {
		posDir = posDir.Normalize()
	}
	return posDir, lookDir
}

// effectiveSprint resolves the sprint state of the hit: a trusted flag if present, otherwise any sprint
// sample within the latency-compensated window.
func (e *Engine) effectiveSprint(s Source) bool {
	if s.WasSprinting != nil {
		return *s.WasSprinting
	}
	ap, ok := s.Attacker.(world.Player)
	if !ok {
		return false
	}
	window := LatencyWindow(ap.Latency())
	if window > e.sprintWindow {
		window = e.sprintWindow
	}
	return e.sprint.SprintedWithin(ap.UUID(), window)
}

// RemovePlayer drops per-player engine state, called on disconnect.
func (e *Engine) RemovePlayer(id uuid.UUID) {
	e.sprint.Remove(id)
}
