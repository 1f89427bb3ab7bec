package combat

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/environment"
	"github.com/legacymc/combat/hitdetect"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/knockback"
	"github.com/legacymc/combat/projectile"
	"github.com/legacymc/combat/session"
	"github.com/legacymc/combat/tag"
	"github.com/legacymc/combat/world"
)

// AttackLandedListener is notified after every applied hit whose attacker is a player.
type AttackLandedListener func(attacker world.Player, res damage.Result)

// Config contains options for constructing a combat Core.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set to slog.Default().
	Log *slog.Logger
	// Mode is the tick mode of the simulation clock.
	Mode clock.Mode
	// Preset bundles the combat parameters. The zero value uses VanillaPreset.
	Preset Preset
	// Viewer receives spawn/move/remove updates for projectiles. May be nil.
	Viewer world.ProjectileViewer
	// DamageDefaults substitutes per-type server default damage properties.
	DamageDefaults map[damage.Type]damage.Properties
}

// New validates the config, constructs every subsystem and wires them together.
func (conf Config) New() (*Core, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Preset.Name == "" {
		conf.Preset = VanillaPreset()
	}
	if err := conf.Preset.Validate(); err != nil {
		return nil, err
	}
	preset := conf.Preset

	c := &Core{
		log:     conf.Log,
		clock:   clock.New(conf.Mode),
		tags:    tag.NewStore(),
		metrics: NewMetrics(),
		reach:   preset.Reach,
		eyeHeights: world.EyeHeights{
			Standing: preset.EyeHeightStanding,
			Sneaking: preset.EyeHeightSneaking,
		},
		versions:   session.NewDetector(conf.Log),
		bowCharges: make(map[uuid.UUID]int64),
	}
	if c.eyeHeights == (world.EyeHeights{}) {
		c.eyeHeights = world.DefaultEyeHeights()
	}

	blocking := damage.NewBlocking(c.tags, preset.Blocking)
	pipeline, err := damage.Config{
		Log:                  conf.Log,
		Clock:                c.clock,
		Tags:                 c.tags,
		InvulnerabilityTicks: preset.InvulnerabilityTicks,
		CriticalMultiplier:   preset.CriticalMultiplier,
		SprintCritAllowed:    preset.SprintCritAllowed,
		Blocking:             blocking,
		FallDistance: func(e world.Entity) float64 {
			return c.trackers.FallDistance(e)
		},
		Defaults: conf.DamageDefaults,
	}.New()
	if err != nil {
		return nil, err
	}
	c.pipeline = pipeline

	engine, err := knockback.EngineConfig{
		Log:               conf.Log,
		Clock:             c.clock,
		Tags:              c.tags,
		Default:           preset.Knockback,
		SprintWindowTicks: preset.SprintWindowTicks,
		Blocking:          blocking,
	}.New()
	if err != nil {
		return nil, err
	}
	c.knockback = engine

	trackers, err := environment.Config{
		Log:      conf.Log,
		Clock:    c.clock,
		Tags:     c.tags,
		Pipeline: pipeline,
	}.New()
	if err != nil {
		return nil, err
	}
	c.trackers = trackers

	projectiles, err := projectile.Config{
		Log:      conf.Log,
		Clock:    c.clock,
		Pipeline: pipeline,
		Viewer:   conf.Viewer,
		Dispatch: func(tx world.Tx, res damage.Result, kind knockback.Kind) {
			c.finish(tx, res, false, kind)
		},
		ResetFall: trackers.ResetFall,
	}.New()
	if err != nil {
		return nil, err
	}
	c.projectiles = projectiles

	swing, err := hitdetect.SwingConfig{
		Log:            conf.Log,
		Clock:          c.clock,
		HitWindowTicks: preset.SwingHitWindowTicks,
		LookCheckTicks: preset.SwingLookCheckTicks,
		Reach:          preset.Reach,
		EyeHeights:     c.eyeHeights,
		Attack: func(tx world.Tx, attacker world.Player, victim world.Living) bool {
			res := c.attack(tx, attacker, victim, true)
			if res.Applied {
				c.metrics.incSwingWindowHits()
			}
			return res.Applied
		},
	}.New()
	if err != nil {
		return nil, err
	}
	c.swing = swing

	return c, nil
}

// Core aggregates every combat subsystem. The host constructs one and routes its events into it; all
// methods must be called from the tick goroutine.
type Core struct {
	log        *slog.Logger
	clock      *clock.Clock
	tags       *tag.Store
	metrics    *Metrics
	reach      hitdetect.ReachConfig
	eyeHeights world.EyeHeights

	pipeline    *damage.Pipeline
	knockback   *knockback.Engine
	trackers    *environment.Trackers
	projectiles *projectile.Manager
	swing       *hitdetect.SwingTracker
	versions    *session.Detector

	attackLanded []AttackLandedListener
	bowCharges   map[uuid.UUID]int64
}

// Clock returns the simulation clock.
func (c *Core) Clock() *clock.Clock { return c.clock }

// Tags returns the tag store shared by all subsystems.
func (c *Core) Tags() *tag.Store { return c.tags }

// Pipeline returns the damage pipeline.
func (c *Core) Pipeline() *damage.Pipeline { return c.pipeline }

// Knockback returns the knockback engine.
func (c *Core) Knockback() *knockback.Engine { return c.knockback }

// Projectiles returns the projectile manager.
func (c *Core) Projectiles() *projectile.Manager { return c.projectiles }

// Trackers returns the environmental damage trackers.
func (c *Core) Trackers() *environment.Trackers { return c.trackers }

// Blocking returns the blocking tracker.
func (c *Core) Blocking() *damage.Blocking { return c.pipeline.Blocking() }

// Versions returns the client version detector.
func (c *Core) Versions() *session.Detector { return c.versions }

// Metrics returns the combat counters.
func (c *Core) Metrics() *Metrics { return c.metrics }

// HandleAttackLanded registers a listener notified after every applied hit with a player attacker.
func (c *Core) HandleAttackLanded(l AttackLandedListener) {
	c.attackLanded = append(c.attackLanded, l)
}

// OnTick advances the simulation by one tick: the clock and its scheduled jobs, due buffered hits,
// then all projectiles.
func (c *Core) OnTick(tx world.Tx) {
	c.clock.Advance()
	for _, res := range c.pipeline.Tick(tx) {
		c.finish(tx, res, false, knockback.KindAttack)
	}
	c.projectiles.Tick(tx)
}

// OnPlayerTick drives the per-player subsystems: the sprint ring buffer, environmental trackers and
// the swing-window check.
func (c *Core) OnPlayerTick(tx world.Tx, p world.Player) {
	c.knockback.Sprint().Record(p)
	c.trackers.TickPlayer(tx, p)
	c.swing.TickPlayer(tx, p)
}

// OnEntityDamage dispatches an externally produced damage event into the pipeline and finishes it
// with knockback and listeners.
func (c *Core) OnEntityDamage(tx world.Tx, victim world.Living, d damage.Damage) damage.Result {
	res := c.pipeline.Apply(tx, victim, d, &damage.Context{})
	kind := knockback.KindAttack
	if d.Projectile != uuid.Nil {
		kind = knockback.KindProjectile
	}
	c.finish(tx, res, false, kind)
	return res
}

// OnEntityAttack handles a client-initiated melee attack: the reach gate, then the damage pipeline.
func (c *Core) OnEntityAttack(tx world.Tx, attacker world.Player, victim world.Living) damage.Result {
	if !c.reach.Valid(attacker, victim, c.eyeHeights) {
		c.metrics.incReachRejections()
		c.log.Debug("attack rejected by reach gate", "attacker", attacker.Name(), "victim", victim.UUID())
		return damage.Result{Victim: victim, Attacker: attacker}
	}
	return c.attack(tx, attacker, victim, false)
}

// attack runs a melee hit through the pipeline and finishes it.
func (c *Core) attack(tx world.Tx, attacker world.Player, victim world.Living, fromSwing bool) damage.Result {
	// An attack attempt always ends the attacker's blocking pose.
	c.Blocking().StopBlocking(tx, attacker)

	d := damage.Damage{
		Type:         damage.TypeMelee,
		Attacker:     attacker,
		Source:       attacker,
		SourcePos:    attacker.Position(),
		EnchantLevel: attacker.HeldItem().Enchantment(item.EnchantKnockback),
	}
	hadBuffer := c.pipeline.HasBufferedHit(victim.UUID())
	res := c.pipeline.Apply(tx, victim, d, &damage.Context{FromSwingWindow: fromSwing})
	if !res.Applied && !hadBuffer && c.pipeline.HasBufferedHit(victim.UUID()) {
		c.metrics.incDamageBuffered()
	}
	if res.Applied && !res.WasReplacement {
		if level := attacker.HeldItem().Enchantment(item.EnchantFireAspect); level > 0 {
			tx.SetOnFire(victim, 80*level)
		}
	}
	c.finish(tx, res, fromSwing, knockback.KindAttack)
	return res
}

// OnArmSwing handles an arm-swing animation: it is recorded for the swing window and, for modern
// clients, resolved into a hit by a server-side raycast.
func (c *Core) OnArmSwing(tx world.Tx, attacker world.Player) {
	c.swing.RecordSwing(attacker.UUID())
	if !c.versions.Modern(attacker.UUID()) {
		return
	}
	if target, ok := hitdetect.FindTargetFromSwing(tx, attacker, c.reach, c.eyeHeights, true); ok {
		c.swing.ConsumeSwing(attacker.UUID())
		c.attack(tx, attacker, target, false)
	}
}

// finish completes a pipeline result: knockback dispatch per the replacement rules, swing-window
// recording and attack-landed listeners.
func (c *Core) finish(tx world.Tx, res damage.Result, fromSwing bool, kind knockback.Kind) {
	if res.Applied {
		if res.WasReplacement {
			c.metrics.incDamageReplaced()
		} else {
			c.metrics.incDamageApplied()
		}
	} else if res.Victim != nil {
		c.metrics.incDamageRejected()
	}

	if res.Applied && (!res.WasReplacement || res.Props.KnockbackOnReplacement) && (res.Attacker != nil || res.Source != nil) {
		src := knockback.Source{
			Victim:               res.Victim,
			Attacker:             res.Attacker,
			Source:               res.Source,
			Projectile:           res.Projectile,
			ProjectileOriginItem: res.ProjectileOriginItem,
			ShooterOrigin:        res.ShooterOrigin,
			Kind:                 kind,
			WasSprinting:         res.WasSprinting,
			EnchantLevel:         res.EnchantLevel,
			Blockable:            res.Props.Blockable,
		}
		if c.knockback.Apply(tx, src) {
			c.metrics.incKnockbackApplies()
		}
	}

	if res.Applied {
		if ap, ok := res.Attacker.(world.Player); ok {
			if !fromSwing {
				c.swing.RecordHit(ap.UUID(), res.Victim.UUID())
			}
			for _, l := range c.attackLanded {
				l(ap, res)
			}
		}
	}
}

// OnItemUse handles a right-click with the held item: bows start charging, throwables spawn their
// projectile, fishing rods cast or reel and swords start blocking.
func (c *Core) OnItemUse(tx world.Tx, p world.Player) {
	held := p.HeldItem()
	switch held.Material() {
	case "minecraft:bow":
		c.bowCharges[p.UUID()] = c.clock.Tick()
	case "minecraft:snowball":
		c.throw(tx, p, projectile.SpawnSnowball(), held)
	case "minecraft:egg":
		c.throw(tx, p, projectile.SpawnEgg(), held)
	case "minecraft:ender_pearl":
		c.throw(tx, p, projectile.SpawnPearl(projectile.PearlConfig{}), held)
	case "minecraft:fishing_rod":
		if hooks := c.projectiles.OwnedBy(p.UUID(), "minecraft:fishing_hook"); len(hooks) > 0 {
			for _, hook := range hooks {
				if behaviour, ok := hookBehaviour(hook); ok {
					behaviour.Reel(hook, tx)
				}
			}
			return
		}
		c.throw(tx, p, projectile.SpawnBobber(projectile.BobberConfig{}), held)
	default:
		if held.Blockable() {
			c.Blocking().StartBlocking(tx, p)
		}
	}
}

// OnItemRelease handles releasing the use of the held item: bows fire their arrow and blocking ends.
func (c *Core) OnItemRelease(tx world.Tx, p world.Player) {
	held := p.HeldItem()
	if held.Material() == "minecraft:bow" {
		c.releaseBow(tx, p, held)
		return
	}
	c.Blocking().StopBlocking(tx, p)
}

// throwSpeed is the initial speed of thrown projectiles in blocks per second.
const throwSpeed = 1.5 * clock.TicksPerSecond

// throw spawns a thrown projectile from the player's eyes along its look direction.
func (c *Core) throw(tx world.Tx, p world.Player, opts projectile.SpawnOpts, origin item.Stack) *projectile.Projectile {
	opts.Owner = p
	opts.Position = world.EyePosition(p, c.eyeHeights)
	opts.Velocity = p.Rotation().Vec3().Mul(throwSpeed)
	opts.OriginItem = origin
	tx.PlaySound(p.Position(), "random.throw")
	return c.projectiles.Spawn(opts)
}

// bowSpeed is the speed of a fully-drawn arrow in blocks per second.
const bowSpeed = 3 * clock.TicksPerSecond

// releaseBow fires an arrow scaled by the bow draw power.
func (c *Core) releaseBow(tx world.Tx, p world.Player, bow item.Stack) {
	start, ok := c.bowCharges[p.UUID()]
	if !ok {
		return
	}
	delete(c.bowCharges, p.UUID())

	held := float64(c.clock.Tick()-start) / clock.TicksPerSecond
	power := item.BowPower(held)
	if power < 0.1 {
		return
	}

	fireTicks := 0
	if bow.Enchantment(item.EnchantFlame) > 0 {
		fireTicks = 100
	}
	opts := projectile.SpawnArrow(projectile.ArrowConfig{
		Critical:   power >= 1,
		FireTicks:  fireTicks,
		PunchLevel: bow.Enchantment(item.EnchantPunch),
		PowerLevel: bow.Enchantment(item.EnchantPower),
	})
	opts.Owner = p
	opts.Position = world.EyePosition(p, c.eyeHeights)
	opts.Velocity = p.Rotation().Vec3().Mul(bowSpeed * power)
	opts.OriginItem = bow
	c.projectiles.Spawn(opts)
	tx.PlaySound(p.Position(), "random.bow")
}

// OnPlayerSpawn resets the per-player combat state on spawn and respawn.
func (c *Core) OnPlayerSpawn(p world.Player) {
	c.resetPlayer(p.UUID())
}

// OnPlayerDeath resets the per-player combat state on death.
func (c *Core) OnPlayerDeath(p world.Player) {
	c.resetPlayer(p.UUID())
}

// OnPlayerDisconnect drops all per-player state, including the detected client version.
func (c *Core) OnPlayerDisconnect(p world.Player) {
	c.resetPlayer(p.UUID())
	c.versions.Remove(p.UUID())
	c.tags.ClearEntity(p.UUID())
}

// resetPlayer clears the combat state tied to a player's life.
func (c *Core) resetPlayer(id uuid.UUID) {
	c.pipeline.ClearVictim(id)
	c.trackers.Reset(id)
	c.Blocking().Reset(id)
	c.swing.Remove(id)
	c.knockback.RemovePlayer(id)
	delete(c.bowCharges, id)
}

// OnPluginMessage parses client-version plugin messages.
func (c *Core) OnPluginMessage(p world.Player, channel string, payload []byte) {
	if err := c.versions.HandlePluginMessage(p.UUID(), channel, payload); err != nil {
		c.log.Debug("ignoring malformed plugin message", "channel", channel, "err", err)
	}
}

// Spawn is a convenience wrapper spawning a projectile at an explicit position and velocity.
func (c *Core) Spawn(opts projectile.SpawnOpts, owner world.Entity, pos, vel mgl64.Vec3) *projectile.Projectile {
	opts.Owner = owner
	opts.Position = pos
	opts.Velocity = vel
	return c.projectiles.Spawn(opts)
}

// hookBehaviour extracts the bobber behaviour of a fishing hook projectile.
func hookBehaviour(p *projectile.Projectile) (*projectile.BobberBehaviour, bool) {
	b, ok := p.Behaviour().(*projectile.BobberBehaviour)
	return b, ok
}
