package knockback

import (
	"time"

	"github.com/google/uuid"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/world"
)

// sprintHistoryTicks is the size of the per-player sprint sample ring.
const sprintHistoryTicks = 40

// sprintHistory is a ring of per-tick sprint samples for one player.
type sprintHistory struct {
	samples  [sprintHistoryTicks]bool
	lastTick int64
}

// SprintTracker records the server-side sprint state of players each tick, so the knockback engine can
// answer "was this player sprinting within the last N ticks" for latency compensation.
type SprintTracker struct {
	clock   *clock.Clock
	players map[uuid.UUID]*sprintHistory
}

// NewSprintTracker returns an empty sprint tracker using the clock passed.
func NewSprintTracker(c *clock.Clock) *SprintTracker {
	return &SprintTracker{clock: c, players: make(map[uuid.UUID]*sprintHistory)}
}

// Record samples the sprint state of the player for the current tick. Ticks skipped since the last
// sample are cleared so stale samples never satisfy a query.
func (t *SprintTracker) Record(p world.Player) {
	now := t.clock.Tick()
	h, ok := t.players[p.UUID()]
	if !ok {
		h = &sprintHistory{lastTick: now - 1}
		t.players[p.UUID()] = h
	}
	gap := now - h.lastTick
	if gap > sprintHistoryTicks {
		gap = sprintHistoryTicks
	}
	for i := int64(1); i < gap; i++ {
		h.samples[(h.lastTick+i)%sprintHistoryTicks] = false
	}
	h.samples[now%sprintHistoryTicks] = p.Sprinting()
	h.lastTick = now
}

// SprintedWithin reports if any sprint sample within the window ticks preceding the current tick,
// inclusive of the current tick, was true.
func (t *SprintTracker) SprintedWithin(id uuid.UUID, window int) bool {
	h, ok := t.players[id]
	if !ok {
		return false
	}
	if window < 0 {
		window = 0
	}
	if window >= sprintHistoryTicks {
		window = sprintHistoryTicks - 1
	}
	now := t.clock.Tick()
	for i := int64(0); i <= int64(window); i++ {
		tick := now - i
		if tick < 0 || tick > h.lastTick {
			continue
		}
		if h.lastTick-tick >= sprintHistoryTicks {
			break
		}
		if h.samples[tick%sprintHistoryTicks] {
			return true
		}
	}
	return false
}

// Remove drops the sprint history of the player passed, called on disconnect.
func (t *SprintTracker) Remove(id uuid.UUID) {
	delete(t.players, id)
}

// LatencyWindow converts half the round-trip time passed to a tick count, the window within which a
// client-observed sprint state may still be in flight.
func LatencyWindow(latency time.Duration) int {
	return int(latency.Milliseconds() / 2 * clock.TicksPerSecond / 1000)
}
