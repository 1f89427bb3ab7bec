package knockback

import (
	"github.com/google/uuid"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/tag"
)

// ModifierKey is the tag key under which knockback modifiers are stored on items, entities and the
// world.
var ModifierKey = tag.NewKey[Modifier]("combat:knockback")

// Layers identifies the participants of a knockback event for cascade resolution. Zero UUIDs and empty
// item stacks mark absent layers.
type Layers struct {
	// AttackerItem is the item held by the attacker.
	AttackerItem item.Stack
	// ProjectileOriginItem is the item the source projectile was spawned from, if any.
	ProjectileOriginItem item.Stack
	// Attacker, Victim and Projectile are the entities participating in the hit.
	Attacker, Victim, Projectile uuid.UUID
}

// Resolve walks the knockback cascade in the order item, projectile origin item, attacker entity,
// victim entity, projectile entity, world, and folds the modifiers found onto the default config
// passed: the first custom replacement wins, multipliers compose as elementwise products and modifies
// as elementwise sums applied last.
func Resolve(store *tag.Store, l Layers, def Config) Config {
	modifiers := make([]Modifier, 0, 6)
	if !l.AttackerItem.Empty() {
		if m, ok := tag.ItemValue(l.AttackerItem, ModifierKey); ok {
			modifiers = append(modifiers, m)
		}
	}
	if !l.ProjectileOriginItem.Empty() {
		if m, ok := tag.ItemValue(l.ProjectileOriginItem, ModifierKey); ok {
			modifiers = append(modifiers, m)
		}
	}
	for _, id := range []uuid.UUID{l.Attacker, l.Victim, l.Projectile} {
		if id == uuid.Nil {
			continue
		}
		if m, ok := tag.EntityValue(store, id, ModifierKey); ok {
			modifiers = append(modifiers, m)
		}
	}
	if m, ok := tag.WorldValue(store, ModifierKey); ok {
		modifiers = append(modifiers, m)
	}

	comps := def.components()
	var (
		multiply = [componentCount]float64{1, 1, 1, 1, 1, 1}
		add      [componentCount]float64
	)
	custom := false
	for _, m := range modifiers {
		if m.HasCustom && !custom {
			comps = m.Custom
			custom = true
		}
		for i := 0; i < componentCount; i++ {
			multiply[i] *= m.Multiply[i]
			add[i] += m.Add[i]
		}
	}
	for i := 0; i < componentCount; i++ {
		comps[i] = comps[i]*multiply[i] + add[i]
	}
	return def.withComponents(comps)
}
