package clock_test

import (
	"testing"

	"github.com/legacymc/combat/clock"
	"github.com/stretchr/testify/assert"
)

func TestClockAdvance(t *testing.T) {
	c := clock.New(clock.ModeScaled)
	assert.Equal(t, int64(0), c.Tick())
	c.Advance()
	c.Advance()
	assert.Equal(t, int64(2), c.Tick())
}

func TestClockSchedule(t *testing.T) {
	c := clock.New(clock.ModeScaled)
	var fired []int64
	c.Schedule(3, func() {
		fired = append(fired, c.Tick())
	})
	c.Schedule(1, func() {
		fired = append(fired, c.Tick())
		// Scheduling for the current tick defers to the next advance.
		c.ScheduleAt(c.Tick(), func() {
			fired = append(fired, c.Tick())
		})
	})
	for i := 0; i < 4; i++ {
		c.Advance()
	}
	assert.Equal(t, []int64{1, 2, 3}, fired)
}

func TestClockScheduleAtPastTick(t *testing.T) {
	c := clock.New(clock.ModeScaled)
	c.Advance()
	c.Advance()

	fired := false
	c.ScheduleAt(1, func() { fired = true })
	c.Advance()
	assert.True(t, fired)
}

func TestClockRescaleTicks(t *testing.T) {
	scaled := clock.New(clock.ModeScaled)
	scaled.SetObservedTPS(10)
	assert.Equal(t, 20, scaled.RescaleTicks(20))

	realTime := clock.New(clock.ModeReal)
	realTime.SetObservedTPS(10)
	assert.Equal(t, 10, realTime.RescaleTicks(20))
	realTime.SetObservedTPS(40)
	assert.Equal(t, 40, realTime.RescaleTicks(20))
}
