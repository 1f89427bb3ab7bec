package damage

import (
	"github.com/google/uuid"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/tag"
)

// overrideKeys holds the tag key carrying the Override of each damage type.
var overrideKeys [typeCount]tag.Key[Override]

func init() {
	for t := Type(0); t < typeCount; t++ {
		overrideKeys[t] = tag.NewKey[Override]("combat:damage/" + t.String())
	}
}

// OverrideKey returns the tag key under which an Override for the damage type passed is stored on items,
// entities or the world.
func OverrideKey(t Type) tag.Key[Override] {
	return overrideKeys[t]
}

// Layers identifies the participants of a damage event for cascade resolution. Zero UUIDs and empty item
// stacks mark absent layers.
type Layers struct {
	// AttackerItem is the item held by the attacker.
	AttackerItem item.Stack
	// ProjectileOriginItem is the item the source projectile was spawned from, if any.
	ProjectileOriginItem item.Stack
	// Attacker is the attacking entity.
	Attacker uuid.UUID
	// Victim is the entity being damaged.
	Victim uuid.UUID
	// Projectile is the source projectile entity, if any.
	Projectile uuid.UUID
	// Defaults substitutes the server default properties for the damage type. Nil uses
	// DefaultProperties.
	Defaults *Properties
}

// Resolution is the outcome of walking the configuration cascade for a damage event.
type Resolution struct {
	// Props holds the effective properties.
	Props Properties
	// Disabled is true if a layer disabled the damage type; the hit must be rejected.
	Disabled bool
	// NoDamage is true if a layer zeroed the damage amount while preserving effects.
	NoDamage bool
}

// Resolve walks the configuration cascade for the damage type passed and merges the overrides found, in
// order: attacker held item, projectile origin item, attacker entity, victim entity, projectile entity,
// world, server default. Full replacements are first-wins per field; multipliers compose as a product;
// the first Disabled stops resolution.
func Resolve(store *tag.Store, t Type, l Layers) Resolution {
	key := OverrideKey(t)

	overrides := make([]Override, 0, 6)
	if !l.AttackerItem.Empty() {
		if o, ok := tag.ItemValue(l.AttackerItem, key); ok {
			overrides = append(overrides, o)
		}
	}
	if !l.ProjectileOriginItem.Empty() {
		if o, ok := tag.ItemValue(l.ProjectileOriginItem, key); ok {
			overrides = append(overrides, o)
		}
	}
	for _, id := range []uuid.UUID{l.Attacker, l.Victim, l.Projectile} {
		if id == uuid.Nil {
			continue
		}
		if o, ok := tag.EntityValue(store, id, key); ok {
			overrides = append(overrides, o)
		}
	}
	if o, ok := tag.WorldValue(store, key); ok {
		overrides = append(overrides, o)
	}

	defaults := DefaultProperties(t)
	if l.Defaults != nil {
		defaults = *l.Defaults
	}
	return merge(overrides, defaults)
}

// merge folds the overrides collected from the cascade, earliest layer first, onto the defaults.
func merge(overrides []Override, defaults Properties) Resolution {
	var (
		res      Resolution
		set      propertySet
		multiple = 1.0
	)
	for _, o := range overrides {
		switch o := o.(type) {
		case Disabled:
			return Resolution{Disabled: true}
		case NoDamage:
			res.NoDamage = true
		case Multiplier:
			multiple *= float64(o)
		case Replace:
			applyReplace(&res.Props, &set, o.Props)
		case Patch:
			applyPatch(&res.Props, &set, o)
		}
	}
	applyReplace(&res.Props, &set, defaults)
	res.Props.Multiplier *= multiple
	return res
}

// propertySet tracks which properties have already been decided by an earlier layer.
type propertySet struct {
	enabled, blockable, bypassInvuln, bypassCreative, hurtEffect, replacement, kbOnReplacement,
	noReplacementSameItem, replacementCutoff, bufferTicks, penetratesArmour, ignitionDelay,
	ignitionMode, multiplier bool
}

func applyReplace(p *Properties, set *propertySet, r Properties) {
	patch := Patch{
		Enabled:                &r.Enabled,
		Blockable:              &r.Blockable,
		BypassInvulnerability:  &r.BypassInvulnerability,
		BypassCreative:         &r.BypassCreative,
		HurtEffect:             &r.HurtEffect,
		Replacement:            &r.Replacement,
		KnockbackOnReplacement: &r.KnockbackOnReplacement,
		NoReplacementSameItem:  &r.NoReplacementSameItem,
		ReplacementCutoff:      &r.ReplacementCutoff,
		BufferTicks:            &r.BufferTicks,
		PenetratesArmour:       &r.PenetratesArmour,
		IgnitionDelayTicks:     &r.IgnitionDelayTicks,
		IgnitionMode:           &r.IgnitionMode,
	}
	applyPatch(p, set, patch)
	if !set.multiplier {
		p.Multiplier = r.Multiplier
		set.multiplier = true
	}
}

func applyPatch(p *Properties, set *propertySet, patch Patch) {
	if patch.Enabled != nil && !set.enabled {
		p.Enabled, set.enabled = *patch.Enabled, true
	}
	if patch.Blockable != nil && !set.blockable {
		p.Blockable, set.blockable = *patch.Blockable, true
	}
	if patch.BypassInvulnerability != nil && !set.bypassInvuln {
		p.BypassInvulnerability, set.bypassInvuln = *patch.BypassInvulnerability, true
	}
	if patch.BypassCreative != nil && !set.bypassCreative {
		p.BypassCreative, set.bypassCreative = *patch.BypassCreative, true
	}
	if patch.HurtEffect != nil && !set.hurtEffect {
		p.HurtEffect, set.hurtEffect = *patch.HurtEffect, true
	}
	if patch.Replacement != nil && !set.replacement {
		p.Replacement, set.replacement = *patch.Replacement, true
	}
	if patch.KnockbackOnReplacement != nil && !set.kbOnReplacement {
		p.KnockbackOnReplacement, set.kbOnReplacement = *patch.KnockbackOnReplacement, true
	}
	if patch.NoReplacementSameItem != nil && !set.noReplacementSameItem {
		p.NoReplacementSameItem, set.noReplacementSameItem = *patch.NoReplacementSameItem, true
	}
	if patch.ReplacementCutoff != nil && !set.replacementCutoff {
		p.ReplacementCutoff, set.replacementCutoff = *patch.ReplacementCutoff, true
	}
	if patch.BufferTicks != nil && !set.bufferTicks {
		p.BufferTicks, set.bufferTicks = *patch.BufferTicks, true
	}
	if patch.PenetratesArmour != nil && !set.penetratesArmour {
		p.PenetratesArmour, set.penetratesArmour = *patch.PenetratesArmour, true
	}
	if patch.IgnitionDelayTicks != nil && !set.ignitionDelay {
		p.IgnitionDelayTicks, set.ignitionDelay = *patch.IgnitionDelayTicks, true
	}
	if patch.IgnitionMode != nil && !set.ignitionMode {
		p.IgnitionMode, set.ignitionMode = *patch.IgnitionMode, true
	}
}
