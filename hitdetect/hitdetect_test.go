package hitdetect_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/cube"
	"github.com/legacymc/combat/hitdetect"
	"github.com/legacymc/combat/internal/testutil"
	"github.com/legacymc/combat/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReachValid(t *testing.T) {
	attacker := testutil.NewPlayer("P1", mgl64.Vec3{0, 64, 0})
	conf := hitdetect.ReachConfig{}
	eyes := world.DefaultEyeHeights()

	near := testutil.NewPlayer("P2", mgl64.Vec3{0, 64, 2})
	assert.True(t, conf.Valid(attacker, near, eyes))

	edge := testutil.NewPlayer("P3", mgl64.Vec3{0, 64, 3})
	assert.True(t, conf.Valid(attacker, edge, eyes))

	far := testutil.NewPlayer("P4", mgl64.Vec3{0, 64, 6})
	assert.False(t, conf.Valid(attacker, far, eyes))
}

func TestFindTargetFromSwing(t *testing.T) {
	attacker := testutil.NewPlayer("P1", mgl64.Vec3{0.5, 64, 0.5})
	victim := testutil.NewPlayer("P2", mgl64.Vec3{0.5, 64, 2.5})
	tx := testutil.NewTx(attacker, victim)

	target, ok := hitdetect.FindTargetFromSwing(tx, attacker, hitdetect.ReachConfig{}, world.DefaultEyeHeights(), true)
	require.True(t, ok)
	assert.Equal(t, victim.ID, target.UUID())

	// A wall between the two hides the victim.
	for y := 63; y <= 67; y++ {
		tx.Blocks[cube.Pos{0, y, 1}] = testutil.Stone()
	}
	_, ok = hitdetect.FindTargetFromSwing(tx, attacker, hitdetect.ReachConfig{}, world.DefaultEyeHeights(), true)
	assert.False(t, ok)
}

func TestFindTargetFromSwingLookingAway(t *testing.T) {
	attacker := testutil.NewPlayer("P1", mgl64.Vec3{0.5, 64, 0.5})
	attacker.Rot = cube.Rotation{180, 0}
	victim := testutil.NewPlayer("P2", mgl64.Vec3{0.5, 64, 2.5})
	tx := testutil.NewTx(attacker, victim)

	_, ok := hitdetect.FindTargetFromSwing(tx, attacker, hitdetect.ReachConfig{}, world.DefaultEyeHeights(), true)
	assert.False(t, ok)
}

func newSwingTracker(t *testing.T, c *clock.Clock, hits *int) *hitdetect.SwingTracker {
	t.Helper()
	tracker, err := hitdetect.SwingConfig{
		Clock:          c,
		HitWindowTicks: 5,
		LookCheckTicks: 3,
		Attack: func(tx world.Tx, attacker world.Player, victim world.Living) bool {
			*hits++
			return true
		},
	}.New()
	require.NoError(t, err)
	return tracker
}

func TestSwingWindowResolvesLateLook(t *testing.T) {
	c := clock.New(clock.ModeScaled)
	for i := 0; i < 200; i++ {
		c.Advance()
	}
	var hits int
	tracker := newSwingTracker(t, c, &hits)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{0.5, 64, 0.5})
	attacker.Rot = cube.Rotation{180, 0} // facing away for now
	victim := testutil.NewPlayer("P2", mgl64.Vec3{0.5, 64, 2.5})
	tx := testutil.NewTx(attacker, victim)

	// Tick 200: a melee hit lands and is recorded.
	tracker.RecordHit(attacker.ID, victim.ID)

	// Tick 202: the attacker swings at a wall.
	c.Advance()
	c.Advance()
	tracker.RecordSwing(attacker.ID)
	tracker.TickPlayer(tx, attacker)
	assert.Equal(t, 0, hits)

	// Tick 203: the crosshair lands on the victim; the swing resolves into exactly one hit.
	c.Advance()
	attacker.Rot = cube.Rotation{}
	tracker.TickPlayer(tx, attacker)
	assert.Equal(t, 1, hits)

	// The swing is consumed; further ticks produce no additional hits.
	c.Advance()
	tracker.TickPlayer(tx, attacker)
	assert.Equal(t, 1, hits)

	// The victim entry is retained within the window: a fresh swing resolves again.
	tracker.RecordSwing(attacker.ID)
	tracker.TickPlayer(tx, attacker)
	assert.Equal(t, 2, hits)
}

func TestSwingWindowExpires(t *testing.T) {
	c := clock.New(clock.ModeScaled)
	var hits int
	tracker := newSwingTracker(t, c, &hits)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{0.5, 64, 0.5})
	victim := testutil.NewPlayer("P2", mgl64.Vec3{0.5, 64, 2.5})
	tx := testutil.NewTx(attacker, victim)

	tracker.RecordHit(attacker.ID, victim.ID)
	for i := 0; i < 6; i++ {
		c.Advance()
	}
	tracker.RecordSwing(attacker.ID)
	tracker.TickPlayer(tx, attacker)
	assert.Equal(t, 0, hits, "entries older than the hit window are pruned")
}

func TestSwingWindowStaleSwing(t *testing.T) {
	c := clock.New(clock.ModeScaled)
	var hits int
	tracker := newSwingTracker(t, c, &hits)

	attacker := testutil.NewPlayer("P1", mgl64.Vec3{0.5, 64, 0.5})
	victim := testutil.NewPlayer("P2", mgl64.Vec3{0.5, 64, 2.5})
	tx := testutil.NewTx(attacker, victim)

	tracker.RecordHit(attacker.ID, victim.ID)
	tracker.RecordSwing(attacker.ID)
	for i := 0; i < 4; i++ {
		c.Advance()
	}
	tracker.TickPlayer(tx, attacker)
	assert.Equal(t, 0, hits, "a swing older than the look-check window never resolves")
}
