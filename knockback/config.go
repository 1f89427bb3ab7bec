// Package knockback implements the knockback engine of the combat core: a tag-driven configuration
// cascade over six velocity components, direction blending and latency-compensated sprint bonuses.
package knockback

import (
	"fmt"
)

// Component indices of the six-component knockback vector.
const (
	compHorizontal = iota
	compVertical
	compSprintHorizontal
	compSprintVertical
	compAirHorizontal
	compAirVertical

	componentCount
)

// Exported component indices for building modifiers.
const (
	ComponentHorizontal       = compHorizontal
	ComponentVertical         = compVertical
	ComponentSprintHorizontal = compSprintHorizontal
	ComponentSprintVertical   = compSprintVertical
	ComponentAirHorizontal    = compAirHorizontal
	ComponentAirVertical      = compAirVertical
)

// BlendMode controls how the position-relative and look-relative directions combine.
type BlendMode uint8

const (
	// BlendDirections normalises a weighted blend of the two directions and applies the full magnitude
	// along the result.
	BlendDirections BlendMode = iota
	// AddVectors splits the magnitude pro-rata by weight over the two directions and adds the scaled
	// vectors.
	AddVectors
)

// Config is the effective knockback configuration produced by the cascade.
type Config struct {
	// Horizontal and Vertical are the base velocity components.
	Horizontal, Vertical float64
	// SprintHorizontal and SprintVertical are added when the attacker was sprinting.
	SprintHorizontal, SprintVertical float64
	// AirHorizontal and AirVertical are added when the victim is off the ground.
	AirHorizontal, AirVertical float64

	// LookWeight and SprintLookWeight blend the attacker's look direction into the knockback direction,
	// the latter applying while sprinting.
	LookWeight, SprintLookWeight float64
	// Blend selects the direction combination mode.
	Blend BlendMode
	// VerticalLimit caps the vertical velocity component after all additions.
	VerticalLimit float64
	// EnchantPerLevel is the horizontal velocity added per level of the knockback or punch enchantment.
	EnchantPerLevel float64
}

// Default returns the vanilla-flavoured knockback configuration.
func Default() Config {
	return Config{
		Horizontal:       0.4,
		Vertical:         0.4,
		SprintHorizontal: 0.5,
		SprintVertical:   0.1,
		VerticalLimit:    0.45,
		EnchantPerLevel:  0.5,
	}
}

// components returns the six-component form of the config.
func (c Config) components() [componentCount]float64 {
	return [componentCount]float64{
		c.Horizontal, c.Vertical, c.SprintHorizontal, c.SprintVertical, c.AirHorizontal, c.AirVertical,
	}
}

// withComponents returns a copy of the config with the six components replaced.
func (c Config) withComponents(v [componentCount]float64) Config {
	c.Horizontal, c.Vertical = v[compHorizontal], v[compVertical]
	c.SprintHorizontal, c.SprintVertical = v[compSprintHorizontal], v[compSprintVertical]
	c.AirHorizontal, c.AirVertical = v[compAirHorizontal], v[compAirVertical]
	return c
}

// Validate reports an error for out-of-range configuration values.
func (c Config) Validate() error {
	if c.VerticalLimit < 0 {
		return fmt.Errorf("knockback: vertical limit must not be negative, got %v", c.VerticalLimit)
	}
	if c.LookWeight < 0 || c.LookWeight > 1 {
		return fmt.Errorf("knockback: look weight must be within [0,1], got %v", c.LookWeight)
	}
	if c.SprintLookWeight < 0 || c.SprintLookWeight > 1 {
		return fmt.Errorf("knockback: sprint look weight must be within [0,1], got %v", c.SprintLookWeight)
	}
	return nil
}

// Modifier is the layered knockback modification stored in tags. A modifier may fully replace the six
// components (custom), scale them elementwise and shift them elementwise. Replacement is first-wins
// across layers; multipliers compose as elementwise products; modifies compose as elementwise sums.
type Modifier struct {
	// Multiply scales the six components elementwise.
	Multiply [componentCount]float64
	// Add shifts the six components elementwise, applied after all multipliers.
	Add [componentCount]float64
	// HasCustom marks the modifier as carrying a full six-component replacement.
	HasCustom bool
	// Custom is the replacement component set, used when HasCustom is true.
	Custom [componentCount]float64
}

// NewModifier returns an identity modifier that leaves the configuration unchanged.
func NewModifier() Modifier {
	return Modifier{Multiply: [componentCount]float64{1, 1, 1, 1, 1, 1}}
}

// WithMultiplier returns a copy of the modifier with the multiplier of the component index passed set.
func (m Modifier) WithMultiplier(component int, v float64) Modifier {
	m.Multiply[component] = v
	return m
}

// WithAdd returns a copy of the modifier with the additive term of the component index passed set.
func (m Modifier) WithAdd(component int, v float64) Modifier {
	m.Add[component] = v
	return m
}

// WithCustom returns a copy of the modifier carrying a full component replacement.
func (m Modifier) WithCustom(horizontal, vertical, sprintH, sprintV, airH, airV float64) Modifier {
	m.HasCustom = true
	m.Custom = [componentCount]float64{horizontal, vertical, sprintH, sprintV, airH, airV}
	return m
}

// customKeys are the persistent NBT keys of the six custom components, in component order.
var customKeys = [componentCount]string{"chm", "cvm", "csm", "cg", "char", "cvar"}

// Encode serializes the modifier to the persistent tag form stored on items. The multiplier list is
// written under "m", the modify list under "d" and the custom flag under "hc"; custom components use
// their fixed short keys.
func (m Modifier) Encode() map[string]any {
	out := map[string]any{
		"m":  sliceOf(m.Multiply),
		"d":  sliceOf(m.Add),
		"hc": m.HasCustom,
	}
	if m.HasCustom {
		for i, key := range customKeys {
			out[key] = m.Custom[i]
		}
	}
	return out
}

// DecodeModifier reads a modifier previously produced by Encode. Missing fields produce identity values,
// so a round trip reproduces the original modifier exactly.
func DecodeModifier(data map[string]any) (Modifier, error) {
	m := NewModifier()
	if v, ok := data["m"]; ok {
		arr, err := componentsOf(v)
		if err != nil {
			return m, fmt.Errorf("knockback: multiplier list: %w", err)
		}
		m.Multiply = arr
	}
	if v, ok := data["d"]; ok {
		arr, err := componentsOf(v)
		if err != nil {
			return m, fmt.Errorf("knockback: modify list: %w", err)
		}
		m.Add = arr
	}
	if v, ok := data["hc"].(bool); ok {
		m.HasCustom = v
	} else if v, ok := data["hc"].(byte); ok {
		m.HasCustom = v != 0
	}
	if m.HasCustom {
		for i, key := range customKeys {
			if v, ok := data[key].(float64); ok {
				m.Custom[i] = v
			}
		}
	}
	return m, nil
}

// sliceOf converts a component array to the slice form stored in NBT.
func sliceOf(v [componentCount]float64) []float64 {
	out := make([]float64, componentCount)
	copy(out, v[:])
	return out
}

// componentsOf converts a decoded NBT list back to a component array.
func componentsOf(v any) ([componentCount]float64, error) {
	var out [componentCount]float64
	switch list := v.(type) {
	case []float64:
		if len(list) != componentCount {
			return out, fmt.Errorf("expected %d components, got %d", componentCount, len(list))
		}
		copy(out[:], list)
	case []any:
		if len(list) != componentCount {
			return out, fmt.Errorf("expected %d components, got %d", componentCount, len(list))
		}
		for i, e := range list {
			f, ok := e.(float64)
			if !ok {
				return out, fmt.Errorf("component %d is not a float", i)
			}
			out[i] = f
		}
	default:
		return out, fmt.Errorf("unsupported list type %T", v)
	}
	return out, nil
}
