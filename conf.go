// Package combat implements the combat core of a Minecraft-compatible server: a deterministic,
// tick-driven simulation of melee attacks, projectiles, knockback and damage mitigation reproducing
// the feel of legacy 1.8 PvP while supporting modern-client behaviour transparently.
package combat

import (
	"fmt"
	"os"

	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/hitdetect"
	"github.com/legacymc/combat/knockback"
	"github.com/pelletier/go-toml"
)

// Preset bundles the tunable combat parameters of a server flavour. At construction a preset with an
// empty Name is replaced as a whole by VanillaPreset. Otherwise zero-valued InvulnerabilityTicks,
// CriticalMultiplier, SprintWindowTicks, swing windows and individual Reach and Blocking fields fall back
// to their vanilla defaults; the eye heights fall back only when both are zero, and Knockback only when
// the whole configuration is zero.
type Preset struct {
	// Name identifies the preset in logs and config files.
	Name string
	// InvulnerabilityTicks is the default invulnerability window after a hit.
	InvulnerabilityTicks int
	// CriticalMultiplier scales critical melee hits.
	CriticalMultiplier float64
	// SprintCritAllowed permits critical hits while sprinting.
	SprintCritAllowed bool
	// Knockback is the server default knockback configuration.
	Knockback knockback.Config
	// Blocking is the default blocking mitigation.
	Blocking damage.BlockingConfig
	// Reach is the reach gate configuration.
	Reach hitdetect.ReachConfig
	// SwingHitWindowTicks and SwingLookCheckTicks configure the swing-window tracker.
	SwingHitWindowTicks int
	SwingLookCheckTicks int
	// EyeHeightStanding and EyeHeightSneaking are the server-enforced eye heights.
	EyeHeightStanding float64
	EyeHeightSneaking float64
	// SprintWindowTicks caps the latency-compensated sprint lookup window.
	SprintWindowTicks int
}

// VanillaPreset returns the vanilla 1.8 combat parameters.
func VanillaPreset() Preset {
	return Preset{
		Name:                 "vanilla",
		InvulnerabilityTicks: 20,
		CriticalMultiplier:   1.5,
		Knockback:            knockback.Default(),
		Reach:                hitdetect.ReachConfig{MaxReach: 3, ExpansionLimit: 0.3},
		SwingHitWindowTicks:  5,
		SwingLookCheckTicks:  3,
		EyeHeightStanding:    1.62,
		EyeHeightSneaking:    1.54,
		SprintWindowTicks:    10,
	}
}

// MinemenPreset returns the Minemen-style competitive preset: shorter invulnerability and snappier
// knockback.
func MinemenPreset() Preset {
	p := VanillaPreset()
	p.Name = "minemen"
	p.InvulnerabilityTicks = 10
	p.Knockback.Horizontal = 0.35
	p.Knockback.Vertical = 0.35
	p.Knockback.SprintHorizontal = 0.465
	p.SprintCritAllowed = true
	return p
}

// HypixelPreset returns the Hypixel-style preset.
func HypixelPreset() Preset {
	p := VanillaPreset()
	p.Name = "hypixel"
	p.InvulnerabilityTicks = 15
	p.Knockback.SprintHorizontal = 0.45
	return p
}

// Validate reports an error for out-of-range preset values.
func (p Preset) Validate() error {
	if p.InvulnerabilityTicks < 0 {
		return fmt.Errorf("combat: preset %q: invulnerability ticks must not be negative", p.Name)
	}
	if p.CriticalMultiplier < 0 {
		return fmt.Errorf("combat: preset %q: critical multiplier must not be negative", p.Name)
	}
	if p.SwingHitWindowTicks < 0 || p.SwingLookCheckTicks < 0 {
		return fmt.Errorf("combat: preset %q: swing windows must not be negative", p.Name)
	}
	if err := p.Knockback.Validate(); err != nil {
		return fmt.Errorf("combat: preset %q: %w", p.Name, err)
	}
	return nil
}

// presetFile is the TOML shape of a preset overlay file.
type presetFile struct {
	Preset string `toml:"preset"`

	InvulnerabilityTicks *int     `toml:"invulnerability_ticks"`
	CriticalMultiplier   *float64 `toml:"critical_multiplier"`
	SprintCritAllowed    *bool    `toml:"sprint_crit_allowed"`
	SwingHitWindowTicks  *int     `toml:"swing_hit_window_ticks"`
	SwingLookCheckTicks  *int     `toml:"swing_look_check_ticks"`
	EyeHeightSneaking    *float64 `toml:"eye_height_sneaking"`

	Knockback struct {
		Horizontal       *float64 `toml:"horizontal"`
		Vertical         *float64 `toml:"vertical"`
		SprintHorizontal *float64 `toml:"sprint_horizontal"`
		SprintVertical   *float64 `toml:"sprint_vertical"`
		AirHorizontal    *float64 `toml:"air_horizontal"`
		AirVertical      *float64 `toml:"air_vertical"`
		VerticalLimit    *float64 `toml:"vertical_limit"`
	} `toml:"knockback"`
}

// LoadPreset reads a preset overlay from the TOML file passed: a named base preset plus individual
// parameter overrides. The result is validated before it is returned.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("combat: reading preset file: %w", err)
	}
	var file presetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return Preset{}, fmt.Errorf("combat: decoding preset file: %w", err)
	}

	var preset Preset
	switch file.Preset {
	case "", "vanilla":
		preset = VanillaPreset()
	case "minemen":
		preset = MinemenPreset()
	case "hypixel":
		preset = HypixelPreset()
	default:
		return Preset{}, fmt.Errorf("combat: unknown base preset %q", file.Preset)
	}

	if file.InvulnerabilityTicks != nil {
		preset.InvulnerabilityTicks = *file.InvulnerabilityTicks
	}
	if file.CriticalMultiplier != nil {
		preset.CriticalMultiplier = *file.CriticalMultiplier
	}
	if file.SprintCritAllowed != nil {
		preset.SprintCritAllowed = *file.SprintCritAllowed
	}
	if file.SwingHitWindowTicks != nil {
		preset.SwingHitWindowTicks = *file.SwingHitWindowTicks
	}
	if file.SwingLookCheckTicks != nil {
		preset.SwingLookCheckTicks = *file.SwingLookCheckTicks
	}
	if file.EyeHeightSneaking != nil {
		preset.EyeHeightSneaking = *file.EyeHeightSneaking
	}
	kb := file.Knockback
	if kb.Horizontal != nil {
		preset.Knockback.Horizontal = *kb.Horizontal
	}
	if kb.Vertical != nil {
		preset.Knockback.Vertical = *kb.Vertical
	}
	if kb.SprintHorizontal != nil {
		preset.Knockback.SprintHorizontal = *kb.SprintHorizontal
	}
	if kb.SprintVertical != nil {
		preset.Knockback.SprintVertical = *kb.SprintVertical
	}
	if kb.AirHorizontal != nil {
		preset.Knockback.AirHorizontal = *kb.AirHorizontal
	}
	if kb.AirVertical != nil {
		preset.Knockback.AirVertical = *kb.AirVertical
	}
	if kb.VerticalLimit != nil {
		preset.Knockback.VerticalLimit = *kb.VerticalLimit
	}

	if err := preset.Validate(); err != nil {
		return Preset{}, err
	}
	return preset, nil
}
