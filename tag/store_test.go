package tag_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/legacymc/combat/item"
	"github.com/legacymc/combat/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var speedKey = tag.NewKey[float64]("test:speed")

func TestStoreEntityValues(t *testing.T) {
	s := tag.NewStore()
	id := uuid.New()

	_, ok := tag.EntityValue(s, id, speedKey)
	assert.False(t, ok)

	tag.SetEntityValue(s, id, speedKey, 1.5)
	v, ok := tag.EntityValue(s, id, speedKey)
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	tag.RemoveEntityValue(s, id, speedKey)
	_, ok = tag.EntityValue(s, id, speedKey)
	assert.False(t, ok)
}

func TestStoreClearEntity(t *testing.T) {
	s := tag.NewStore()
	id := uuid.New()
	tag.SetEntityValue(s, id, speedKey, 2.0)
	s.ClearEntity(id)
	_, ok := tag.EntityValue(s, id, speedKey)
	assert.False(t, ok)
}

func TestStoreWorldValues(t *testing.T) {
	s := tag.NewStore()
	tag.SetWorldValue(s, speedKey, 0.5)
	v, ok := tag.WorldValue(s, speedKey)
	require.True(t, ok)
	assert.Equal(t, 0.5, v)

	tag.RemoveWorldValue(s, speedKey)
	_, ok = tag.WorldValue(s, speedKey)
	assert.False(t, ok)
}

func TestItemValuesCopyOnWrite(t *testing.T) {
	base := item.NewStack("minecraft:diamond_sword", 1)
	tagged := tag.SetItemValue(base, speedKey, 3.0)

	_, ok := tag.ItemValue(base, speedKey)
	assert.False(t, ok, "the original stack must stay untouched")

	v, ok := tag.ItemValue(tagged, speedKey)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestTypedMismatchIsAbsent(t *testing.T) {
	s := tag.NewStore()
	id := uuid.New()
	intKey := tag.NewKey[int]("test:speed")
	tag.SetEntityValue(s, id, intKey, 7)

	_, ok := tag.EntityValue(s, id, speedKey)
	assert.False(t, ok, "a value of a different type must not be returned")
}
