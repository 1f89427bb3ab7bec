// Package damage implements the damage pipeline of the combat core: damage types and their properties,
// the tag-driven configuration cascade, invulnerability frames with replacement and buffered hits,
// blocking and armour mitigation.
package damage

// Type identifies a registered damage type.
type Type uint8

const (
	// TypeGeneric is damage with no specific cause.
	TypeGeneric Type = iota
	// TypeMelee is a direct attack by another entity.
	TypeMelee
	// TypeArrow is damage dealt by an arrow projectile.
	TypeArrow
	// TypeThrown is damage dealt by a thrown projectile such as a snowball, egg or ender pearl.
	TypeThrown
	// TypeFall is damage from falling further than the safe fall distance.
	TypeFall
	// TypeFire is damage from standing in a fire block.
	TypeFire
	// TypeOnFire is periodic damage while burning.
	TypeOnFire
	// TypeLava is damage from contact with lava.
	TypeLava
	// TypeCactus is damage from touching a cactus.
	TypeCactus
	// TypeVoid is damage from falling below the world.
	TypeVoid

	typeCount
)

// String returns the identifier of the damage type.
func (t Type) String() string {
	switch t {
	case TypeMelee:
		return "melee"
	case TypeArrow:
		return "arrow"
	case TypeThrown:
		return "thrown"
	case TypeFall:
		return "fall"
	case TypeFire:
		return "fire"
	case TypeOnFire:
		return "on_fire"
	case TypeLava:
		return "lava"
	case TypeCactus:
		return "cactus"
	case TypeVoid:
		return "void"
	}
	return "generic"
}

// Types returns all registered damage types.
func Types() []Type {
	types := make([]Type, 0, typeCount)
	for t := Type(0); t < typeCount; t++ {
		types = append(types, t)
	}
	return types
}

// Properties holds the immutable behaviour of a damage type after the configuration cascade has been
// resolved.
type Properties struct {
	// Enabled toggles the damage type entirely. Disabled types reject every hit.
	Enabled bool
	// Multiplier scales the damage amount after calculation.
	Multiplier float64
	// Blockable allows the blocking reduction to apply to hits of this type.
	Blockable bool
	// BypassInvulnerability makes hits of this type ignore the victim's invulnerability window.
	BypassInvulnerability bool
	// BypassCreative makes hits of this type damage players in creative mode.
	BypassCreative bool
	// HurtEffect controls whether the hurt animation and camera tilt are shown on the victim.
	HurtEffect bool
	// Replacement allows a stronger hit during the invulnerability window to raise the damage dealt to
	// its level, applying only the difference.
	Replacement bool
	// KnockbackOnReplacement dispatches knockback for replacement hits as well.
	KnockbackOnReplacement bool
	// NoReplacementSameItem rejects replacement hits dealt with the same item as the hit being replaced.
	NoReplacementSameItem bool
	// ReplacementCutoff is the minimum amount a replacement hit must exceed the previous hit by.
	ReplacementCutoff float64
	// BufferTicks is the window at the end of the invulnerability period during which an attacker-based
	// hit is buffered and deferred to fire exactly when invulnerability lapses.
	BufferTicks int
	// PenetratesArmour skips the armour reduction for hits of this type.
	PenetratesArmour bool
	// IgnitionDelayTicks is the cadence of periodic fire damage. Only meaningful for fire types.
	IgnitionDelayTicks int
	// IgnitionMode controls when fire damage is first applied after ignition. Only meaningful for fire
	// types.
	IgnitionMode IgnitionMode
}

// IgnitionMode controls the scheduling of the first fire damage tick after an entity catches fire.
type IgnitionMode uint8

const (
	// IgnitionInstant applies the first fire damage on the tick the entity catches fire.
	IgnitionInstant IgnitionMode = iota
	// IgnitionDelayed applies the first fire damage a full ignition delay after catching fire.
	IgnitionDelayed
	// IgnitionTickBased aligns fire damage to the global tick counter, damaging whenever the counter is
	// a multiple of the ignition delay.
	IgnitionTickBased
)

// DefaultProperties returns the server default properties for the damage type passed.
func DefaultProperties(t Type) Properties {
	props := Properties{
		Enabled:    true,
		Multiplier: 1,
		HurtEffect: true,
	}
	switch t {
	case TypeMelee:
		props.Blockable = true
		props.Replacement = true
	case TypeArrow:
		props.Blockable = true
		props.Replacement = true
	case TypeThrown:
		props.Blockable = true
	case TypeFall:
		props.PenetratesArmour = true
	case TypeFire, TypeLava:
		props.PenetratesArmour = true
		props.IgnitionDelayTicks = 20
		props.IgnitionMode = IgnitionDelayed
	case TypeOnFire:
		props.PenetratesArmour = true
		props.BypassInvulnerability = true
		props.HurtEffect = true
		props.IgnitionDelayTicks = 20
	case TypeCactus:
	case TypeVoid:
		props.PenetratesArmour = true
		props.BypassCreative = true
		props.BypassInvulnerability = true
	}
	return props
}

// Override is a layered modification of the properties of a damage type. Overrides are read from the tag
// cascade and merged in layer order by Resolve.
type Override interface {
	damageOverride()
}

// Disabled is an Override that disables the damage type entirely. Resolution stops at the first layer
// carrying it.
type Disabled struct{}

func (Disabled) damageOverride() {}

// NoDamage is an Override that zeroes the damage amount while preserving hit effects such as knockback
// and the hurt animation.
type NoDamage struct{}

func (NoDamage) damageOverride() {}

// Multiplier is an Override scaling the damage amount. Multipliers from different layers compose as a
// product.
type Multiplier float64

func (Multiplier) damageOverride() {}

// Replace is an Override substituting the full properties of the damage type. The first layer carrying a
// Replace wins.
type Replace struct {
	Props Properties
}

func (Replace) damageOverride() {}

// Patch is an Override modifying individual properties. Fields left nil inherit from lower layers or the
// server default; for each field the first layer setting it wins.
type Patch struct {
	Enabled                *bool
	Blockable              *bool
	BypassInvulnerability  *bool
	BypassCreative         *bool
	HurtEffect             *bool
	Replacement            *bool
	KnockbackOnReplacement *bool
	NoReplacementSameItem  *bool
	ReplacementCutoff      *float64
	BufferTicks            *int
	PenetratesArmour       *bool
	IgnitionDelayTicks     *int
	IgnitionMode           *IgnitionMode
}

func (Patch) damageOverride() {}
