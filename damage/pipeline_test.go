package damage_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/internal/testutil"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/tag"
	"github.com/legacymc/combat/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(t *testing.T, conf damage.Config) (*damage.Pipeline, *clock.Clock, *tag.Store) {
	t.Helper()
	c := clock.New(clock.ModeScaled)
	tags := tag.NewStore()
	conf.Clock, conf.Tags = c, tags
	p, err := conf.New()
	require.NoError(t, err)
	return p, c, tags
}

func advance(c *clock.Clock, ticks int) {
	for i := 0; i < ticks; i++ {
		c.Advance()
	}
}

func meleeHit(attacker *testutil.Entity) damage.Damage {
	return damage.Damage{Type: damage.TypeMelee, Attacker: attacker, Source: attacker, SourcePos: attacker.Pos}
}

func TestPipelineBasicMelee(t *testing.T) {
	p, c, _ := newPipeline(t, damage.Config{})
	advance(c, 100)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:diamond_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{0, 64, 0})
	tx := testutil.NewTx(attacker, victim)

	res := p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, res.Applied)
	assert.False(t, res.WasReplacement)
	assert.Equal(t, 7.0, res.FinalDamage)
	assert.Equal(t, 13.0, victim.HealthV)
	assert.True(t, p.Tracker().IsInvulnerable(victim.ID))

	// The window lapses 20 ticks after the hit.
	advance(c, 19)
	assert.True(t, p.Tracker().IsInvulnerable(victim.ID))
	advance(c, 1)
	assert.False(t, p.Tracker().IsInvulnerable(victim.ID))
}

func TestPipelineDedupSameTick(t *testing.T) {
	p, c, _ := newPipeline(t, damage.Config{})
	advance(c, 10)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:iron_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(attacker, victim)

	first := p.Apply(tx, victim, meleeHit(attacker), nil)
	second := p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, first.Applied)
	assert.False(t, second.Applied)
	assert.Equal(t, 14.0, victim.HealthV)
}

func TestPipelineCreativeBypass(t *testing.T) {
	p, c, _ := newPipeline(t, damage.Config{})
	advance(c, 10)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	victim.Mode = world.GameModeCreative
	tx := testutil.NewTx(attacker, victim)

	res := p.Apply(tx, victim, meleeHit(attacker), nil)
	assert.False(t, res.Applied)
	assert.Equal(t, 20.0, victim.HealthV)
}

func TestPipelineReplacement(t *testing.T) {
	p, c, _ := newPipeline(t, damage.Config{})
	advance(c, 100)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:diamond_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(attacker, victim)

	first := p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, first.Applied)
	require.Equal(t, 13.0, victim.HealthV)

	advance(c, 5)
	attacker.Held = item.NewStack("minecraft:netherite_sword", 1)
	second := p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, second.Applied)
	assert.True(t, second.WasReplacement)
	assert.Equal(t, 1.0, second.FinalDamage)
	assert.Equal(t, 12.0, victim.HealthV)

	// The invulnerability window does not restart on replacement.
	lastTick, ok := p.Tracker().LastDamageTick(victim.ID)
	require.True(t, ok)
	assert.Equal(t, int64(100), lastTick)
}

func TestPipelineReplacementRejectsWeakerHit(t *testing.T) {
	p, c, _ := newPipeline(t, damage.Config{})
	advance(c, 100)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:diamond_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(attacker, victim)

	require.True(t, p.Apply(tx, victim, meleeHit(attacker), nil).Applied)

	advance(c, 5)
	attacker.Held = item.NewStack("minecraft:stone_sword", 1)
	res := p.Apply(tx, victim, meleeHit(attacker), nil)
	assert.False(t, res.Applied)
	assert.Equal(t, 13.0, victim.HealthV)
}

func TestPipelineNoReplacementSameItem(t *testing.T) {
	cutoff := -10.0
	same := true
	p, c, tags := newPipeline(t, damage.Config{})
	tag.SetWorldValue(tags, damage.OverrideKey(damage.TypeMelee), damage.Override(damage.Patch{
		NoReplacementSameItem: &same,
		ReplacementCutoff:     &cutoff,
	}))
	advance(c, 100)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:diamond_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(attacker, victim)

	require.True(t, p.Apply(tx, victim, meleeHit(attacker), nil).Applied)
	advance(c, 5)

	// Same material with different enchantments still counts as the same item.
	attacker.Held = item.NewStack("minecraft:diamond_sword", 1).WithEnchantment(item.EnchantSharpness, 2)
	res := p.Apply(tx, victim, meleeHit(attacker), nil)
	assert.False(t, res.Applied)

	// A different material is allowed through the same-item gate.
	attacker.Held = item.NewStack("minecraft:netherite_sword", 1)
	res = p.Apply(tx, victim, meleeHit(attacker), nil)
	assert.True(t, res.Applied)
}

func TestPipelineBufferedHit(t *testing.T) {
	defaults := damage.DefaultProperties(damage.TypeMelee)
	defaults.BufferTicks = 3
	p, c, _ := newPipeline(t, damage.Config{
		InvulnerabilityTicks: 10,
		Defaults:             map[damage.Type]damage.Properties{damage.TypeMelee: defaults},
	})
	advance(c, 100)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:diamond_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(attacker, victim)

	require.True(t, p.Apply(tx, victim, meleeHit(attacker), nil).Applied)
	require.Equal(t, 13.0, victim.HealthV)

	advance(c, 8)
	attacker.Sprint = true
	res := p.Apply(tx, victim, meleeHit(attacker), nil)
	assert.False(t, res.Applied)
	assert.True(t, p.HasBufferedHit(victim.ID))
	assert.Equal(t, 13.0, victim.HealthV)

	// Nothing fires before the window lapses.
	advance(c, 1)
	assert.Empty(t, p.Tick(tx))

	advance(c, 1)
	fired := p.Tick(tx)
	require.Len(t, fired, 1)
	assert.True(t, fired[0].Applied)
	require.NotNil(t, fired[0].WasSprinting)
	assert.True(t, *fired[0].WasSprinting)
	assert.Equal(t, 6.0, victim.HealthV)
	assert.False(t, p.HasBufferedHit(victim.ID))
	assert.True(t, p.Tracker().IsInvulnerable(victim.ID))
}

func TestPipelineSingleBufferPerVictim(t *testing.T) {
	defaults := damage.DefaultProperties(damage.TypeMelee)
	defaults.BufferTicks = 5
	p, c, _ := newPipeline(t, damage.Config{
		InvulnerabilityTicks: 10,
		Defaults:             map[damage.Type]damage.Properties{damage.TypeMelee: defaults},
	})
	advance(c, 100)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:iron_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(attacker, victim)

	require.True(t, p.Apply(tx, victim, meleeHit(attacker), nil).Applied)

	// Two weaker follow-ups in the buffer window produce a single buffered entry.
	attacker.Held = item.NewStack("minecraft:wooden_sword", 1)
	advance(c, 6)
	p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, p.HasBufferedHit(victim.ID))
	advance(c, 1)
	p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, p.HasBufferedHit(victim.ID))

	advance(c, 3)
	fired := p.Tick(tx)
	assert.Len(t, fired, 1)
}

func TestPipelineBufferedHitDroppedForRemovedVictim(t *testing.T) {
	defaults := damage.DefaultProperties(damage.TypeMelee)
	defaults.BufferTicks = 3
	p, c, _ := newPipeline(t, damage.Config{
		InvulnerabilityTicks: 10,
		Defaults:             map[damage.Type]damage.Properties{damage.TypeMelee: defaults},
	})
	advance(c, 100)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:wooden_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(attacker, victim)

	require.True(t, p.Apply(tx, victim, meleeHit(attacker), nil).Applied)
	advance(c, 8)
	p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, p.HasBufferedHit(victim.ID))

	tx.Removed[victim.ID] = true
	advance(c, 2)
	assert.Empty(t, p.Tick(tx))
	assert.False(t, p.HasBufferedHit(victim.ID))
}

func TestPipelineDisabledType(t *testing.T) {
	p, c, tags := newPipeline(t, damage.Config{})
	tag.SetWorldValue(tags, damage.OverrideKey(damage.TypeMelee), damage.Override(damage.Disabled{}))
	advance(c, 10)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(attacker, victim)

	res := p.Apply(tx, victim, meleeHit(attacker), nil)
	assert.False(t, res.Applied)
	assert.Equal(t, 20.0, victim.HealthV)
}

func TestPipelineNoDamagePreservesEffects(t *testing.T) {
	p, c, tags := newPipeline(t, damage.Config{})
	tag.SetWorldValue(tags, damage.OverrideKey(damage.TypeMelee), damage.Override(damage.NoDamage{}))
	advance(c, 10)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:diamond_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(attacker, victim)

	res := p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, res.Applied)
	assert.Equal(t, 0.0, res.FinalDamage)
	assert.Equal(t, 20.0, victim.HealthV)
	assert.True(t, p.Tracker().IsInvulnerable(victim.ID))
}

func TestPipelineBlockingReduction(t *testing.T) {
	p, c, _ := newPipeline(t, damage.Config{})
	advance(c, 10)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:diamond_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	victim.Held = item.NewStack("minecraft:iron_sword", 1)
	tx := testutil.NewTx(attacker, victim)

	require.True(t, p.Blocking().StartBlocking(tx, victim))

	var blocked []float64
	p.HandleBlocking(func(bp world.Player, reduced float64) {
		blocked = append(blocked, reduced)
	})

	res := p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, res.Applied)
	assert.Equal(t, 3.5, res.FinalDamage)
	assert.Equal(t, 16.5, victim.HealthV)
	assert.Equal(t, []float64{3.5}, blocked)
}

func TestPipelineArmourReduction(t *testing.T) {
	p, c, _ := newPipeline(t, damage.Config{})
	advance(c, 10)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:diamond_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	victim.ArmourV[1] = item.NewStack("minecraft:diamond_chestplate", 1)
	tx := testutil.NewTx(attacker, victim)

	res := p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, res.Applied)
	// Eight defence points reduce damage by 32%.
	assert.InDelta(t, 7*0.68, res.FinalDamage, 1e-9)
}

func TestPipelineInvalidAmountClamped(t *testing.T) {
	p, c, _ := newPipeline(t, damage.Config{})
	advance(c, 10)

	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(victim)

	res := p.Apply(tx, victim, damage.Damage{Type: damage.TypeGeneric, Amount: -5}, nil)
	require.True(t, res.Applied)
	assert.Equal(t, 0.0, res.FinalDamage)
	assert.Equal(t, 20.0, victim.HealthV)
}

func TestPipelineHandlerCancels(t *testing.T) {
	p, c, _ := newPipeline(t, damage.Config{})
	advance(c, 10)

	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(victim)

	p.Handle(func(v world.Living, d *damage.Damage, ctx *damage.Context) {
		ctx.Cancelled = true
	})
	res := p.Apply(tx, victim, damage.Damage{Type: damage.TypeGeneric, Amount: 4}, nil)
	assert.False(t, res.Applied)
	assert.Equal(t, 20.0, victim.HealthV)
}

func TestPipelineHurtEffectSuppressed(t *testing.T) {
	hurt := false
	p, c, tags := newPipeline(t, damage.Config{})
	tag.SetWorldValue(tags, damage.OverrideKey(damage.TypeMelee), damage.Override(damage.Patch{HurtEffect: &hurt}))
	advance(c, 10)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{1, 64, 0})
	attacker.Held = item.NewStack("minecraft:stone_sword", 1)
	victim := testutil.NewPlayer("P2", mgl64.Vec3{})
	tx := testutil.NewTx(attacker, victim)

	res := p.Apply(tx, victim, meleeHit(attacker), nil)
	require.True(t, res.Applied)
	assert.Empty(t, tx.Hurts)
	assert.Len(t, tx.SilentUpdates, 1)
	assert.Equal(t, 15.0, victim.HealthV)
}
