package damage

import (
	"errors"
	"log/slog"
	"math"

	"github.com/brentp/intintmap"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/tag"
	"github.com/legacymc/combat/world"
)

// HurtEffectKey suppresses the hurt animation for a specific entity when set to false, regardless of the
// damage type properties.
var HurtEffectKey = tag.NewKey[bool]("combat:hurt_effect")

// Damage describes a single damage event entering the pipeline.
type Damage struct {
	// Type is the damage type identifier.
	Type Type
	// Amount is the raw damage amount. A melee hit with an amount of 0 derives its damage from the
	// attacker's held item.
	Amount float64
	// Attacker is the entity responsible for the hit, or nil for environmental damage.
	Attacker world.Entity
	// Source is the direct cause of the hit: the attacker itself for melee, the projectile entity for
	// projectile hits.
	Source world.Entity
	// SourcePos is the position the damage originated from, used when no source entity exists.
	SourcePos mgl64.Vec3
	// Projectile is the UUID of the source projectile entity for cascade resolution, or uuid.Nil.
	Projectile uuid.UUID
	// ProjectileOriginItem is the item the source projectile was spawned from, if any.
	ProjectileOriginItem item.Stack
	// ShooterOrigin is the position recorded at projectile spawn, used as the knockback source for
	// projectile hits.
	ShooterOrigin *mgl64.Vec3
	// WasSprinting carries a trusted sprint state for the knockback dispatch. Nil means the knockback
	// engine should consult its sprint ring buffer.
	WasSprinting *bool
	// EnchantLevel is the knockback or punch enchantment level forwarded to the knockback dispatch.
	EnchantLevel int
}

// Context carries per-call pipeline flags, replacing the thread-local state of older designs.
type Context struct {
	// FromSwingWindow marks hits produced by the swing-window tracker, preventing them from being
	// recorded back into the attacker's victim map.
	FromSwingWindow bool
	// Buffered marks hits fired from the buffer, exempting them from being buffered again.
	Buffered bool
	// Cancelled may be set by a damage handler to reject the hit before it is applied.
	Cancelled bool
}

// Result is the outcome of a damage event. The caller owns it and dispatches knockback from it.
type Result struct {
	// Applied is true if the victim's health was mutated.
	Applied bool
	// WasReplacement is true if the hit replaced a weaker hit inside the invulnerability window.
	WasReplacement bool
	// FinalDamage is the health delta actually applied.
	FinalDamage float64
	// Props holds the effective damage type properties the hit resolved to.
	Props Properties
	// NoDamage is true if a cascade layer zeroed the amount while preserving effects.
	NoDamage bool
	// Type is the damage type of the hit.
	Type Type

	// Victim, Attacker and Source identify the participants of the hit.
	Victim   world.Living
	Attacker world.Entity
	Source   world.Entity
	// Projectile and ProjectileOriginItem identify the source projectile, forwarded for the knockback
	// cascade.
	Projectile           uuid.UUID
	ProjectileOriginItem item.Stack
	// ShooterOrigin, WasSprinting and EnchantLevel are forwarded from the Damage for the knockback
	// dispatch.
	ShooterOrigin *mgl64.Vec3
	WasSprinting  *bool
	EnchantLevel  int
}

// Handler inspects a damage event before it is applied and may cancel it by setting ctx.Cancelled.
type Handler func(victim world.Living, d *Damage, ctx *Context)

// BlockingHandler is notified when blocking reduced the damage of a hit.
type BlockingHandler func(p world.Player, reduced float64)

// Config holds the construction parameters of a Pipeline.
type Config struct {
	// Log is the logger warnings are reported on. Defaults to slog.Default().
	Log *slog.Logger
	// Clock is the tick clock of the simulation.
	Clock *clock.Clock
	// Tags is the tag store the configuration cascade reads from.
	Tags *tag.Store
	// InvulnerabilityTicks is the default invulnerability window. Defaults to 20.
	InvulnerabilityTicks int
	// CriticalMultiplier scales critical melee hits. Defaults to 1.5.
	CriticalMultiplier float64
	// SprintCritAllowed permits critical hits while the attacker is sprinting.
	SprintCritAllowed bool
	// Blocking resolves the blocking state of player victims. Constructed with defaults if nil.
	Blocking *Blocking
	// FallDistance returns the current fall distance of an entity, consulted for critical hits. May be
	// nil, in which case no hit is critical.
	FallDistance func(e world.Entity) float64
	// Defaults substitutes per-type server default properties, typically from a preset.
	Defaults map[Type]Properties
}

// New validates the config and returns a Pipeline.
func (conf Config) New() (*Pipeline, error) {
	if conf.Clock == nil {
		return nil, errors.New("damage: pipeline requires a clock")
	}
	if conf.Tags == nil {
		return nil, errors.New("damage: pipeline requires a tag store")
	}
	if conf.InvulnerabilityTicks < 0 {
		return nil, errors.New("damage: invulnerability ticks must not be negative")
	}
	if conf.InvulnerabilityTicks == 0 {
		conf.InvulnerabilityTicks = 20
	}
	if conf.CriticalMultiplier < 0 {
		return nil, errors.New("damage: critical multiplier must not be negative")
	}
	if conf.CriticalMultiplier == 0 {
		conf.CriticalMultiplier = 1.5
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Blocking == nil {
		conf.Blocking = NewBlocking(conf.Tags, BlockingConfig{})
	}
	return &Pipeline{
		log:            conf.Log,
		clock:          conf.Clock,
		tags:           conf.Tags,
		tracker:        NewInvulnerabilityTracker(conf.Clock, conf.Tags, conf.InvulnerabilityTicks),
		blocking:       conf.Blocking,
		critMultiplier: conf.CriticalMultiplier,
		sprintCrit:     conf.SprintCritAllowed,
		fallDistance:   conf.FallDistance,
		defaults:       conf.Defaults,
		lastMutated:    intintmap.New(1024, 0.6),
		buffered:       make(map[uuid.UUID]*bufferedHit),
	}, nil
}

// bufferedHit is an attacker-based hit received near the end of the victim's invulnerability window,
// deferred to fire exactly when the window lapses.
type bufferedHit struct {
	victim       uuid.UUID
	damage       Damage
	wasSprinting bool
	fireTick     int64
}

// Pipeline orchestrates attack, mitigation and application of damage events.
type Pipeline struct {
	log            *slog.Logger
	clock          *clock.Clock
	tags           *tag.Store
	tracker        *InvulnerabilityTracker
	blocking       *Blocking
	critMultiplier float64
	sprintCrit     bool
	fallDistance   func(e world.Entity) float64
	defaults       map[Type]Properties

	lastMutated *intintmap.Map
	buffered    map[uuid.UUID]*bufferedHit

	handlers         []Handler
	blockingHandlers []BlockingHandler
}

// Tracker returns the invulnerability tracker owned by the pipeline.
func (p *Pipeline) Tracker() *InvulnerabilityTracker {
	return p.tracker
}

// Blocking returns the blocking tracker used by the pipeline.
func (p *Pipeline) Blocking() *Blocking {
	return p.blocking
}

// Handle registers a damage handler run before every hit is applied. Handlers may cancel the hit.
func (p *Pipeline) Handle(h Handler) {
	p.handlers = append(p.handlers, h)
}

// HandleBlocking registers a handler notified when blocking reduces a hit.
func (p *Pipeline) HandleBlocking(h BlockingHandler) {
	p.blockingHandlers = append(p.blockingHandlers, h)
}

// HasBufferedHit reports if a buffered hit is pending for the victim passed.
func (p *Pipeline) HasBufferedHit(victim uuid.UUID) bool {
	_, ok := p.buffered[victim]
	return ok
}

// ClearVictim drops all per-victim pipeline state: the buffered hit and invulnerability state. Called on
// death, respawn and disconnect.
func (p *Pipeline) ClearVictim(victim uuid.UUID) {
	delete(p.buffered, victim)
	p.tracker.ClearState(victim)
}

// Tick fires buffered hits that are due on the current tick. It runs at the very start of each tick,
// before projectile and environmental processing. The results of fired hits are returned so the caller
// can dispatch knockback for them.
func (p *Pipeline) Tick(tx world.Tx) []Result {
	now := p.clock.Tick()
	var results []Result
	for id, hit := range p.buffered {
		if hit.fireTick > now {
			continue
		}
		delete(p.buffered, id)
		e, ok := tx.Entity(id)
		if !ok {
			// The victim was removed before the buffer fired; drop silently.
			continue
		}
		victim, ok := e.(world.Living)
		if !ok {
			continue
		}
		sprint := hit.wasSprinting
		d := hit.damage
		d.WasSprinting = &sprint
		if res := p.Apply(tx, victim, d, &Context{Buffered: true}); res.Applied {
			results = append(results, res)
		}
	}
	return results
}

// Apply runs the full damage pipeline for the victim and damage passed. It never panics; invalid input
// results in a rejected hit. The returned Result reports whether health was mutated and carries the data
// the knockback dispatch needs.
func (p *Pipeline) Apply(tx world.Tx, victim world.Living, d Damage, ctx *Context) Result {
	if ctx == nil {
		ctx = &Context{}
	}
	res := Result{
		Type: d.Type, Victim: victim, Attacker: d.Attacker, Source: d.Source,
		Projectile: d.Projectile, ProjectileOriginItem: d.ProjectileOriginItem,
		ShooterOrigin: d.ShooterOrigin, WasSprinting: d.WasSprinting, EnchantLevel: d.EnchantLevel,
	}
	if victim == nil {
		p.log.Warn("damage pipeline called without victim", "type", d.Type.String())
		return res
	}
	now := p.clock.Tick()

	// Dedup: at most one health mutation per victim per tick.
	if t, ok := p.lastMutated.Get(victim.RuntimeID()); ok && t == now {
		return res
	}

	layers := Layers{Victim: victim.UUID(), Projectile: d.Projectile, ProjectileOriginItem: d.ProjectileOriginItem}
	var held item.Stack
	if d.Attacker != nil {
		layers.Attacker = d.Attacker.UUID()
		if ap, ok := d.Attacker.(world.Player); ok {
			held = ap.HeldItem()
			layers.AttackerItem = held
		}
	}
	if p.defaults != nil {
		if def, ok := p.defaults[d.Type]; ok {
			layers.Defaults = &def
		}
	}
	resolution := Resolve(p.tags, d.Type, layers)
	if resolution.Disabled {
		return res
	}
	props := resolution.Props
	res.Props, res.NoDamage = props, resolution.NoDamage

	if !props.Enabled {
		return res
	}

	victimPlayer, isPlayer := victim.(world.Player)
	if isPlayer {
		if victimPlayer.GameMode() == world.GameModeSpectator {
			return res
		}
		if victimPlayer.GameMode() == world.GameModeCreative && !props.BypassCreative {
			return res
		}
	}

	for _, h := range p.handlers {
		h(victim, &d, ctx)
		if ctx.Cancelled {
			return res
		}
	}

	amount := p.calculateAmount(victim, d, props, resolution.NoDamage)

	if isPlayer && props.Blockable && p.blocking.IsBlocking(victimPlayer) {
		amount *= 1 - p.blocking.Reduction(victimPlayer)
		for _, h := range p.blockingHandlers {
			h(victimPlayer, amount)
		}
	}

	if isPlayer && !props.PenetratesArmour {
		amount = ReduceByArmour(amount, ArmourPoints(victimPlayer))
	}

	vid := victim.UUID()
	if !props.BypassInvulnerability && p.tracker.IsInvulnerable(vid) {
		return p.invulnerableHit(tx, victim, d, ctx, props, amount, held, res)
	}
	return p.applyHit(tx, victim, d, props, amount, held, res)
}

// calculateAmount derives the damage amount of the hit: melee damage from the held item with the
// critical multiplier, then the property multiplier, clamped against invalid values.
func (p *Pipeline) calculateAmount(victim world.Living, d Damage, props Properties, noDamage bool) float64 {
	amount := d.Amount
	if d.Type == TypeMelee && amount == 0 && d.Attacker != nil {
		if ap, ok := d.Attacker.(world.Player); ok {
			amount = ap.HeldItem().AttackDamage()
			if p.criticalHit(ap) {
				amount *= p.critMultiplier
			}
		} else {
			amount = 1
		}
	}
	amount *= props.Multiplier
	if noDamage {
		amount = 0
	}
	if math.IsNaN(amount) || amount < 0 {
		p.log.Warn("invalid damage amount clamped to zero", "type", d.Type.String(), "victim", victim.UUID())
		amount = 0
	}
	return amount
}

// criticalHit reports if the attacking player lands a critical hit: airborne with accumulated fall
// distance, and not sprinting unless sprint criticals are allowed.
func (p *Pipeline) criticalHit(attacker world.Player) bool {
	if attacker.OnGround() || p.fallDistance == nil {
		return false
	}
	if p.fallDistance(attacker) <= 0 {
		return false
	}
	return p.sprintCrit || !attacker.Sprinting()
}

// invulnerableHit handles a non-bypassing hit landing inside the victim's invulnerability window: the
// hit is buffered, applied as a replacement, or rejected.
func (p *Pipeline) invulnerableHit(tx world.Tx, victim world.Living, d Damage, ctx *Context, props Properties, amount float64, held item.Stack, res Result) Result {
	vid := victim.UUID()

	if d.Attacker != nil && props.BufferTicks > 0 && !ctx.Buffered {
		if remaining := p.tracker.Remaining(vid); remaining <= int64(props.BufferTicks) {
			if _, exists := p.buffered[vid]; !exists {
				sprint := false
				if ap, ok := d.Attacker.(world.Player); ok {
					sprint = ap.Sprinting()
				}
				lastTick, _ := p.tracker.LastDamageTick(vid)
				p.buffered[vid] = &bufferedHit{
					victim:       vid,
					damage:       d,
					wasSprinting: sprint,
					fireTick:     lastTick + int64(p.tracker.EffectiveTicks(vid)),
				}
				return res
			}
		}
	}

	if !props.Replacement {
		return res
	}
	if props.NoReplacementSameItem && item.SameItem(p.tracker.LastMeleeItem(vid), held) {
		return res
	}
	previous := p.tracker.LastDamageAmount(vid)
	if amount < previous+props.ReplacementCutoff {
		return res
	}

	// Amounts on both sides of the comparison already passed the armour reduction, so the difference is
	// armour-reduced as well.
	diff := amount - previous
	newHealth := victim.Health() - diff
	if newHealth < 0 {
		newHealth = 0
	}
	if p.shouldApplyHurtEffect(victim, props) {
		tx.SetHealth(victim, newHealth)
	} else {
		tx.SetHealthSilent(victim, newHealth)
	}
	p.tracker.UpdateAmount(vid, amount)
	p.tracker.SetReplacementFlag(vid, true)
	delete(p.buffered, vid)
	p.lastMutated.Put(victim.RuntimeID(), p.clock.Tick())

	res.Applied, res.WasReplacement, res.FinalDamage = true, true, diff
	return res
}

// applyHit mutates the victim's health and restarts its invulnerability window.
func (p *Pipeline) applyHit(tx world.Tx, victim world.Living, d Damage, props Properties, amount float64, held item.Stack, res Result) Result {
	vid := victim.UUID()
	newHealth := victim.Health() - amount
	if newHealth < 0 {
		newHealth = 0
	}
	if p.shouldApplyHurtEffect(victim, props) {
		tx.SetHealth(victim, newHealth)
	} else {
		tx.SetHealthSilent(victim, newHealth)
	}
	p.tracker.MarkDamaged(vid, amount, sourceUUID(d), held)
	delete(p.buffered, vid)
	p.lastMutated.Put(victim.RuntimeID(), p.clock.Tick())

	res.Applied, res.FinalDamage = true, amount
	return res
}

// shouldApplyHurtEffect reports if the hurt animation should be shown for the hit, combining the damage
// type properties with a per-entity suppression tag.
func (p *Pipeline) shouldApplyHurtEffect(victim world.Living, props Properties) bool {
	if !props.HurtEffect {
		return false
	}
	if v, ok := tag.EntityValue(p.tags, victim.UUID(), HurtEffectKey); ok && !v {
		return false
	}
	return true
}

// sourceUUID returns the identity of the direct damage source, falling back to the attacker.
func sourceUUID(d Damage) uuid.UUID {
	if d.Source != nil {
		return d.Source.UUID()
	}
	if d.Attacker != nil {
		return d.Attacker.UUID()
	}
	return uuid.Nil
}
