package damage_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/legacymc/combat/damage"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replaceWithCutoff(cutoff float64) damage.Override {
	props := damage.DefaultProperties(damage.TypeMelee)
	props.ReplacementCutoff = cutoff
	return damage.Replace{Props: props}
}

func TestResolveLayerOrder(t *testing.T) {
	tags := tag.NewStore()
	key := damage.OverrideKey(damage.TypeMelee)

	attackerID, victimID := uuid.New(), uuid.New()

	held := tag.SetItemValue(item.NewStack("minecraft:diamond_sword", 1), key, replaceWithCutoff(1))
	tag.SetEntityValue(tags, attackerID, key, replaceWithCutoff(2))
	tag.SetEntityValue(tags, victimID, key, replaceWithCutoff(3))
	tag.SetWorldValue(tags, key, replaceWithCutoff(4))

	// The item layer wins for full replacements.
	res := damage.Resolve(tags, damage.TypeMelee, damage.Layers{
		AttackerItem: held, Attacker: attackerID, Victim: victimID,
	})
	assert.Equal(t, 1.0, res.Props.ReplacementCutoff)

	// Without the item layer, the attacker entity layer wins.
	res = damage.Resolve(tags, damage.TypeMelee, damage.Layers{Attacker: attackerID, Victim: victimID})
	assert.Equal(t, 2.0, res.Props.ReplacementCutoff)

	// With only world and victim layers, the victim wins.
	res = damage.Resolve(tags, damage.TypeMelee, damage.Layers{Victim: victimID})
	assert.Equal(t, 3.0, res.Props.ReplacementCutoff)

	res = damage.Resolve(tags, damage.TypeMelee, damage.Layers{})
	assert.Equal(t, 4.0, res.Props.ReplacementCutoff)
}

func TestResolveProjectileOriginItemLayer(t *testing.T) {
	tags := tag.NewStore()
	key := damage.OverrideKey(damage.TypeArrow)
	props := damage.DefaultProperties(damage.TypeArrow)
	props.ReplacementCutoff = 7

	origin := tag.SetItemValue(item.NewStack("minecraft:bow", 1), key, damage.Override(damage.Replace{Props: props}))
	tag.SetWorldValue(tags, key, replaceWithCutoff(4))

	res := damage.Resolve(tags, damage.TypeArrow, damage.Layers{ProjectileOriginItem: origin})
	assert.Equal(t, 7.0, res.Props.ReplacementCutoff)
}

func TestResolveMultipliersCompose(t *testing.T) {
	tags := tag.NewStore()
	key := damage.OverrideKey(damage.TypeMelee)

	victimID := uuid.New()
	held := tag.SetItemValue(item.NewStack("minecraft:diamond_sword", 1), key, damage.Override(damage.Multiplier(2)))
	tag.SetEntityValue(tags, victimID, key, damage.Override(damage.Multiplier(0.5)))
	tag.SetWorldValue(tags, key, damage.Override(damage.Multiplier(3)))

	res := damage.Resolve(tags, damage.TypeMelee, damage.Layers{AttackerItem: held, Victim: victimID})
	assert.InDelta(t, 3.0, res.Props.Multiplier, 1e-9)
}

func TestResolveDisabledStopsResolution(t *testing.T) {
	tags := tag.NewStore()
	key := damage.OverrideKey(damage.TypeMelee)

	victimID := uuid.New()
	tag.SetEntityValue(tags, victimID, key, damage.Override(damage.Disabled{}))
	tag.SetWorldValue(tags, key, damage.Override(damage.Multiplier(3)))

	res := damage.Resolve(tags, damage.TypeMelee, damage.Layers{Victim: victimID})
	assert.True(t, res.Disabled)
}

func TestResolvePatchFieldFirstWins(t *testing.T) {
	tags := tag.NewStore()
	key := damage.OverrideKey(damage.TypeMelee)

	victimID := uuid.New()
	cutoffVictim, cutoffWorld := 5.0, 9.0
	blockable := false
	tag.SetEntityValue(tags, victimID, key, damage.Override(damage.Patch{ReplacementCutoff: &cutoffVictim}))
	tag.SetWorldValue(tags, key, damage.Override(damage.Patch{ReplacementCutoff: &cutoffWorld, Blockable: &blockable}))

	res := damage.Resolve(tags, damage.TypeMelee, damage.Layers{Victim: victimID})
	require.False(t, res.Disabled)
	assert.Equal(t, 5.0, res.Props.ReplacementCutoff, "the victim layer set the cutoff first")
	assert.False(t, res.Props.Blockable, "fields untouched by earlier layers fall through")
	assert.True(t, res.Props.Enabled, "unpatched fields inherit the defaults")
}
