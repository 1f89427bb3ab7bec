package damage

import (
	"github.com/google/uuid"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/tag"
	"github.com/legacymc/combat/world"
)

// Tag keys resolving the blocking reduction and knockback multipliers. They are read from the blocking
// item first, then the player, then the world, then the configured default.
var (
	BlockingReductionKey  = tag.NewKey[float64]("combat:blocking/reduction")
	BlockingKnockbackHKey = tag.NewKey[float64]("combat:blocking/knockback_h")
	BlockingKnockbackVKey = tag.NewKey[float64]("combat:blocking/knockback_v")
)

// BlockingConfig holds the default mitigation applied while a player is blocking.
type BlockingConfig struct {
	// DamageReduction is the fraction of blockable damage removed while blocking. Legacy sword blocking
	// reduces damage by half.
	DamageReduction float64
	// KnockbackHorizontal and KnockbackVertical scale knockback applied to a blocking victim.
	KnockbackHorizontal float64
	KnockbackVertical   float64
}

// withDefaults fills zero fields with the legacy sword-blocking values.
func (c BlockingConfig) withDefaults() BlockingConfig {
	if c.DamageReduction == 0 {
		c.DamageReduction = 0.5
	}
	if c.KnockbackHorizontal == 0 {
		c.KnockbackHorizontal = 0.6
	}
	if c.KnockbackVertical == 0 {
		c.KnockbackVertical = 0.8
	}
	return c
}

// blockingState tracks a single player's blocking pose.
type blockingState struct {
	blocking        bool
	originalOffhand item.Stack
}

// Blocking tracks which players are currently blocking and resolves the mitigation that applies to them.
type Blocking struct {
	tags   *tag.Store
	config BlockingConfig

	states map[uuid.UUID]*blockingState
}

// NewBlocking returns a Blocking tracker using the config passed.
func NewBlocking(tags *tag.Store, config BlockingConfig) *Blocking {
	return &Blocking{tags: tags, config: config.withDefaults(), states: make(map[uuid.UUID]*blockingState)}
}

// IsBlocking reports if the player passed is currently blocking.
func (b *Blocking) IsBlocking(p world.Player) bool {
	s, ok := b.states[p.UUID()]
	return ok && s.blocking
}

// StartBlocking puts the player in the blocking pose. The off-hand item is snapshotted so the visual
// shield swap can be undone when blocking stops. Returns false if the player was already blocking or the
// held item cannot block.
func (b *Blocking) StartBlocking(tx world.Tx, p world.Player) bool {
	if b.IsBlocking(p) {
		return false
	}
	if !p.HeldItem().Blockable() {
		return false
	}
	b.states[p.UUID()] = &blockingState{blocking: true, originalOffhand: p.OffHandItem()}
	tx.SendEquipmentUpdate(p)
	return true
}

// OriginalOffhand returns the off-hand item snapshotted when the player started blocking, so hosts can
// restore the visual swap.
func (b *Blocking) OriginalOffhand(p world.Player) (item.Stack, bool) {
	s, ok := b.states[p.UUID()]
	if !ok || !s.blocking {
		return item.Stack{}, false
	}
	return s.originalOffhand, true
}

// StopBlocking takes the player out of the blocking pose, restoring the off-hand visual.
func (b *Blocking) StopBlocking(tx world.Tx, p world.Player) {
	s, ok := b.states[p.UUID()]
	if !ok || !s.blocking {
		return
	}
	delete(b.states, p.UUID())
	tx.SendEquipmentUpdate(p)
}

// Reset drops the blocking state of the player without touching equipment, used on death and disconnect.
func (b *Blocking) Reset(id uuid.UUID) {
	delete(b.states, id)
}

// Reduction returns the damage reduction fraction applying to the blocking player passed, resolved from
// the held item, the player, the world and finally the configured default.
func (b *Blocking) Reduction(p world.Player) float64 {
	if v, ok := tag.ItemValue(p.HeldItem(), BlockingReductionKey); ok {
		return v
	}
	if v, ok := tag.EntityValue(b.tags, p.UUID(), BlockingReductionKey); ok {
		return v
	}
	if v, ok := tag.WorldValue(b.tags, BlockingReductionKey); ok {
		return v
	}
	return b.config.DamageReduction
}

// KnockbackMultipliers returns the horizontal and vertical knockback multipliers applying to the blocking
// player passed, resolved through the same chain as Reduction.
func (b *Blocking) KnockbackMultipliers(p world.Player) (h, v float64) {
	h, v = b.config.KnockbackHorizontal, b.config.KnockbackVertical
	if x, ok := tag.ItemValue(p.HeldItem(), BlockingKnockbackHKey); ok {
		h = x
	} else if x, ok := tag.EntityValue(b.tags, p.UUID(), BlockingKnockbackHKey); ok {
		h = x
	} else if x, ok := tag.WorldValue(b.tags, BlockingKnockbackHKey); ok {
		h = x
	}
	if x, ok := tag.ItemValue(p.HeldItem(), BlockingKnockbackVKey); ok {
		v = x
	} else if x, ok := tag.EntityValue(b.tags, p.UUID(), BlockingKnockbackVKey); ok {
		v = x
	} else if x, ok := tag.WorldValue(b.tags, BlockingKnockbackVKey); ok {
		v = x
	}
	return h, v
}
