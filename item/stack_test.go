package item_test

import (
	"testing"

	"github.com/legacymc/combat/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameItem(t *testing.T) {
	a := item.NewStack("minecraft:diamond_sword", 1)
	b := item.NewStack("minecraft:diamond_sword", 1)
	assert.True(t, item.SameItem(a, b))

	// Enchantments do not make an item different for replacement checks.
	assert.True(t, item.SameItem(a, b.WithEnchantment(item.EnchantSharpness, 3)))

	assert.False(t, item.SameItem(a, item.NewStack("minecraft:netherite_sword", 1)))
	assert.False(t, item.SameItem(a, b.WithValue("custom", int64(1))))

	c := a.WithValue("custom", int64(1))
	d := b.WithValue("custom", int64(1))
	assert.True(t, item.SameItem(c, d))
}

func TestAttackDamage(t *testing.T) {
	assert.Equal(t, 7.0, item.NewStack("minecraft:diamond_sword", 1).AttackDamage())
	assert.Equal(t, 8.0, item.NewStack("minecraft:netherite_sword", 1).AttackDamage())
	assert.Equal(t, 1.0, item.NewStack("minecraft:stick", 1).AttackDamage())
	assert.Equal(t, 1.0, item.Stack{}.AttackDamage())

	sharp := item.NewStack("minecraft:iron_sword", 1).WithEnchantment(item.EnchantSharpness, 2)
	assert.Equal(t, 6+2.5, sharp.AttackDamage())
}

func TestBowPower(t *testing.T) {
	assert.Equal(t, 0.0, item.BowPower(0))
	assert.Equal(t, 1.0, item.BowPower(1))
	assert.Equal(t, 1.0, item.BowPower(5))
	assert.InDelta(t, (0.25+1)/3, item.BowPower(0.5), 1e-9)
}

func TestBlockable(t *testing.T) {
	assert.True(t, item.NewStack("minecraft:diamond_sword", 1).Blockable())
	assert.False(t, item.NewStack("minecraft:bow", 1).Blockable())
	assert.False(t, item.Stack{}.Blockable())
}

func TestStackDataRoundTrip(t *testing.T) {
	s := item.NewStack("minecraft:diamond_sword", 1).
		WithValue("owner", "Steve").
		WithValue("uses", int32(42))

	data, err := s.MarshalData()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	restored, err := item.NewStack("minecraft:diamond_sword", 1).WithData(data)
	require.NoError(t, err)
	assert.True(t, item.SameItem(s, restored))

	owner, ok := restored.Value("owner")
	require.True(t, ok)
	assert.Equal(t, "Steve", owner)
}
