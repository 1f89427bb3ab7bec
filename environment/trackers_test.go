package environment_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/environment"
	"github.com/legacymc/combat/internal/testutil"
	"github.com/legacymc/combat/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackers(t *testing.T) (*environment.Trackers, *clock.Clock, *tag.Store) {
	t.Helper()
	c := clock.New(clock.ModeScaled)
	tags := tag.NewStore()
	pipeline, err := damage.Config{Clock: c, Tags: tags}.New()
	require.NoError(t, err)
	trackers, err := environment.Config{Clock: c, Tags: tags, Pipeline: pipeline}.New()
	require.NoError(t, err)
	return trackers, c, tags
}

func TestFallDamage(t *testing.T) {
	trackers, c, _ := newTrackers(t)

	p := testutil.NewPlayer("P1", mgl64.Vec3{0.5, 70, 0.5})
	p.Ground = false
	tx := testutil.NewTx(p)

	// The player falls from y=70 to y=54 in steps of 2 blocks per tick.
	for y := 70.0; y > 54; y -= 2 {
		p.Pos[1] = y
		c.Advance()
		trackers.TickPlayer(tx, p)
	}
	p.Pos[1] = 54
	c.Advance()
	trackers.TickPlayer(tx, p)
	require.Equal(t, 20.0, p.HealthV, "no damage while airborne")

	p.Ground = true
	c.Advance()
	trackers.TickPlayer(tx, p)
	assert.Equal(t, 7.0, p.HealthV, "a 16 block fall deals 13 damage")
	assert.Equal(t, 0.0, trackers.FallDistance(p), "fall distance resets on landing")
}

func TestFallResetInWater(t *testing.T) {
	trackers, c, _ := newTrackers(t)

	p := testutil.NewPlayer("P1", mgl64.Vec3{0.5, 70, 0.5})
	p.Ground = false
	tx := testutil.NewTx(p)

	for y := 70.0; y > 60; y -= 2 {
		p.Pos[1] = y
		c.Advance()
		trackers.TickPlayer(tx, p)
	}
	p.Water = true
	c.Advance()
	trackers.TickPlayer(tx, p)
	assert.Equal(t, 0.0, trackers.FallDistance(p))

	p.Water = false
	p.Ground = true
	c.Advance()
	trackers.TickPlayer(tx, p)
	assert.Equal(t, 20.0, p.HealthV, "water landing cancels fall damage")
}

func TestCactusContact(t *testing.T) {
	trackers, c, _ := newTrackers(t)

	p := testutil.NewPlayer("P1", mgl64.Vec3{0.8, 64, 0.5})
	tx := testutil.NewTx(p)
	tx.Blocks[cube.Pos{1, 64, 0}] = testutil.CactusBlock()

	for i := 0; i < 3; i++ {
		c.Advance()
		trackers.TickPlayer(tx, p)
	}
	// Repeated contact is gated by invulnerability frames.
	assert.Equal(t, 19.0, p.HealthV)
}

func TestFireDelayedIgnition(t *testing.T) {
	trackers, c, _ := newTrackers(t)

	p := testutil.NewPlayer("P1", mgl64.Vec3{0.5, 64, 0.5})
	tx := testutil.NewTx(p)
	tx.Blocks[cube.PosFromVec3(p.Pos)] = testutil.FireBlock()

	for i := 0; i < 20; i++ {
		c.Advance()
		trackers.TickPlayer(tx, p)
	}
	require.Equal(t, 20.0, p.HealthV, "delayed ignition waits a full delay before the first damage")

	c.Advance()
	trackers.TickPlayer(tx, p)
	assert.Equal(t, 19.0, p.HealthV)
}

func TestFireInstantIgnition(t *testing.T) {
	trackers, c, tags := newTrackers(t)
	mode := damage.IgnitionInstant
	tag.SetWorldValue(tags, damage.OverrideKey(damage.TypeFire), damage.Override(damage.Patch{IgnitionMode: &mode}))

	p := testutil.NewPlayer("P1", mgl64.Vec3{0.5, 64, 0.5})
	tx := testutil.NewTx(p)
	tx.Blocks[cube.PosFromVec3(p.Pos)] = testutil.FireBlock()

	c.Advance()
	trackers.TickPlayer(tx, p)
	assert.Equal(t, 19.0, p.HealthV, "instant ignition damages on the first burning tick")
}

func TestFireTickBasedIgnition(t *testing.T) {
	trackers, c, tags := newTrackers(t)
	mode := damage.IgnitionTickBased
	delay := 10
	tag.SetWorldValue(tags, damage.OverrideKey(damage.TypeFire), damage.Override(damage.Patch{
		IgnitionMode:       &mode,
		IgnitionDelayTicks: &delay,
	}))

	p := testutil.NewPlayer("P1", mgl64.Vec3{0.5, 64, 0.5})
	tx := testutil.NewTx(p)
	tx.Blocks[cube.PosFromVec3(p.Pos)] = testutil.FireBlock()

	// Damage lands only when the global tick counter is a multiple of the delay.
	for i := 0; i < 9; i++ {
		c.Advance()
		trackers.TickPlayer(tx, p)
	}
	require.Equal(t, 20.0, p.HealthV)
	c.Advance() // tick 10
	trackers.TickPlayer(tx, p)
	assert.Equal(t, 19.0, p.HealthV)
}
