// Package clock provides the monotonic tick counter and delta scheduler driving every time-based part of
// the combat core.
package clock

import "math"

// TicksPerSecond is the nominal simulation rate of the server.
const TicksPerSecond = 20

// Mode controls how tick counts relate to wall-clock time.
type Mode int

const (
	// ModeScaled assumes the host ticks at the nominal 20 Hz; tick counts are used as-is.
	ModeScaled Mode = iota
	// ModeReal rescales tick windows to real milliseconds when the host runs at a non-standard rate,
	// keeping durations like invulnerability windows constant in wall-clock terms.
	ModeReal
)

// Clock is a 64-bit monotonic tick counter with a delta scheduler. Operations scheduled at current+N fire
// after the counter has advanced N times.
type Clock struct {
	tick        int64
	mode        Mode
	observedTPS float64

	scheduled map[int64][]func()
}

// New returns a clock at tick 0 operating in the mode passed.
func New(mode Mode) *Clock {
	return &Clock{mode: mode, observedTPS: TicksPerSecond, scheduled: make(map[int64][]func())}
}

// Tick returns the current tick.
func (c *Clock) Tick() int64 {
	return c.tick
}

// Mode returns the tick mode of the clock.
func (c *Clock) Mode() Mode {
	return c.mode
}

// Advance increments the tick counter and runs all operations scheduled for the new tick, in the order
// they were scheduled.
func (c *Clock) Advance() {
	c.tick++
	for {
		jobs, ok := c.scheduled[c.tick]
		if !ok {
			return
		}
		delete(c.scheduled, c.tick)
		for _, job := range jobs {
			job()
		}
	}
}

// Schedule runs f after the counter has advanced delay more times. A delay of 0 or lower runs f on the
// next advance.
func (c *Clock) Schedule(delay int64, f func()) {
	if delay < 1 {
		delay = 1
	}
	c.ScheduleAt(c.tick+delay, f)
}

// ScheduleAt runs f when the counter reaches the tick passed. If that tick has already passed, f runs on
// the next advance.
func (c *Clock) ScheduleAt(tick int64, f func()) {
	if tick <= c.tick {
		tick = c.tick + 1
	}
	c.scheduled[tick] = append(c.scheduled[tick], f)
}

// SetObservedTPS records the tick rate the host is actually running at, used by ModeReal clocks to
// rescale durations. Values of 0 or lower are ignored.
func (c *Clock) SetObservedTPS(tps float64) {
	if tps > 0 {
		c.observedTPS = tps
	}
}

// RescaleTicks converts a duration expressed in nominal ticks to the clock's effective tick count. In
// ModeScaled the duration is returned unchanged; in ModeReal it is scaled by the observed tick rate so
// the real-time duration stays constant.
func (c *Clock) RescaleTicks(n int) int {
	if c.mode == ModeScaled || c.observedTPS == TicksPerSecond {
		return n
	}
	return int(math.Round(float64(n) * c.observedTPS / TicksPerSecond))
}
