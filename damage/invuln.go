package damage

import (
	"github.com/google/uuid"
	"github.com/legacymc/combat/clock"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/tag"
)

// InvulnerabilityTicksKey overrides the invulnerability window for a specific entity or the whole world.
var InvulnerabilityTicksKey = tag.NewKey[int]("combat:invulnerability_ticks")

// invulnState records the last damage taken by an entity, driving the invulnerability window and the
// replacement and buffering logic of the pipeline.
type invulnState struct {
	lastTick       int64
	lastAmount     float64
	lastSourceID   uuid.UUID
	lastMeleeItem  item.Stack
	wasReplacement bool
}

// InvulnerabilityTracker tracks per-entity invulnerability state. All operations are total: querying an
// entity without state behaves as if the entity was never damaged.
type InvulnerabilityTracker struct {
	clock  *clock.Clock
	tags   *tag.Store
	window int

	states map[uuid.UUID]*invulnState
}

// NewInvulnerabilityTracker returns a tracker using the default invulnerability window passed, in ticks.
func NewInvulnerabilityTracker(c *clock.Clock, tags *tag.Store, window int) *InvulnerabilityTracker {
	return &InvulnerabilityTracker{clock: c, tags: tags, window: window, states: make(map[uuid.UUID]*invulnState)}
}

// EffectiveTicks returns the invulnerability window applied to the entity passed: an entity tag override
// if present, then a world override, then the default, rescaled to the clock's tick mode.
func (t *InvulnerabilityTracker) EffectiveTicks(id uuid.UUID) int {
	window := t.window
	if v, ok := tag.EntityValue(t.tags, id, InvulnerabilityTicksKey); ok {
		window = v
	} else if v, ok := tag.WorldValue(t.tags, InvulnerabilityTicksKey); ok {
		window = v
	}
	return t.clock.RescaleTicks(window)
}

// IsInvulnerable reports if the entity is currently inside its invulnerability window.
func (t *InvulnerabilityTracker) IsInvulnerable(id uuid.UUID) bool {
	s, ok := t.states[id]
	if !ok {
		return false
	}
	return t.clock.Tick()-s.lastTick < int64(t.EffectiveTicks(id))
}

// Remaining returns the ticks left of the entity's invulnerability window, or 0 if it is not
// invulnerable.
func (t *InvulnerabilityTracker) Remaining(id uuid.UUID) int64 {
	s, ok := t.states[id]
	if !ok {
		return 0
	}
	remaining := int64(t.EffectiveTicks(id)) - (t.clock.Tick() - s.lastTick)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TicksSinceLast returns the ticks elapsed since the entity last took damage.
func (t *InvulnerabilityTracker) TicksSinceLast(id uuid.UUID) (int64, bool) {
	s, ok := t.states[id]
	if !ok {
		return 0, false
	}
	return t.clock.Tick() - s.lastTick, true
}

// LastDamageTick returns the tick the entity last took damage on.
func (t *InvulnerabilityTracker) LastDamageTick(id uuid.UUID) (int64, bool) {
	s, ok := t.states[id]
	if !ok {
		return 0, false
	}
	return s.lastTick, true
}

// LastDamageAmount returns the amount of the last damage taken by the entity, or 0 if it has none.
func (t *InvulnerabilityTracker) LastDamageAmount(id uuid.UUID) float64 {
	if s, ok := t.states[id]; ok {
		return s.lastAmount
	}
	return 0
}

// LastMeleeItem returns a snapshot of the item the entity was last damaged with.
func (t *InvulnerabilityTracker) LastMeleeItem(id uuid.UUID) item.Stack {
	if s, ok := t.states[id]; ok {
		return s.lastMeleeItem
	}
	return item.Stack{}
}

// WasReplacement reports if the entity's last damage was a replacement hit.
func (t *InvulnerabilityTracker) WasReplacement(id uuid.UUID) bool {
	if s, ok := t.states[id]; ok {
		return s.wasReplacement
	}
	return false
}

// MarkDamaged writes new damage state for the entity, restarting its invulnerability window. The pipeline
// coordinates the window start itself to avoid re-entrant rejection, so MarkDamaged does nothing else.
func (t *InvulnerabilityTracker) MarkDamaged(id uuid.UUID, amount float64, source uuid.UUID, held item.Stack) {
	t.states[id] = &invulnState{
		lastTick:      t.clock.Tick(),
		lastAmount:    amount,
		lastSourceID:  source,
		lastMeleeItem: held,
	}
}

// UpdateAmount raises the recorded damage amount of a replacement hit without restarting the
// invulnerability window.
func (t *InvulnerabilityTracker) UpdateAmount(id uuid.UUID, amount float64) {
	if s, ok := t.states[id]; ok {
		s.lastAmount = amount
	}
}

// SetReplacementFlag marks whether the entity's last damage was a replacement hit.
func (t *InvulnerabilityTracker) SetReplacementFlag(id uuid.UUID, replacement bool) {
	if s, ok := t.states[id]; ok {
		s.wasReplacement = replacement
	}
}

// ClearState removes the entity's damage state. Called on entity removal, death and respawn.
func (t *InvulnerabilityTracker) ClearState(id uuid.UUID) {
	delete(t.states, id)
}
