package pico

import (
	"testing"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackRoundTrip(t *testing.T) {
	r := newSwordRegistry(t)
	inst, err := r.NewInstance("ruby_sword")
	require.NoError(t, err)

	stack, err := r.WriteStack(item.NewStack(item.Stick{}, 1), inst)
	require.NoError(t, err)

	read, ok, err := r.ReadStack(stack)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, inst.ID, read.ID)
	assert.Equal(t, inst.Tree.Keys(), read.Tree.Keys())

	stats, err := r.InstanceStats(read)
	require.NoError(t, err)
	damage, _ := Get(stats, DecimalStat("damage"))
	assert.Equal(t, 30.0, damage)
}

func TestWriteStackInvalidatesCache(t *testing.T) {
	r := newSwordRegistry(t)
	inst, err := r.NewInstance("iron_sword")
	require.NoError(t, err)
	_, err = r.InstanceStats(inst)
	require.NoError(t, err)
	require.Equal(t, 1, r.Cache().Len())

	_, err = r.WriteStack(item.NewStack(item.Stick{}, 1), inst)
	require.NoError(t, err)
	assert.Zero(t, r.Cache().Len())
}

func TestReadStackWithoutInstance(t *testing.T) {
	r := newSwordRegistry(t)

	inst, ok, err := r.ReadStack(item.NewStack(item.Stick{}, 1))
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, inst)

	_, _, err = r.ReadStack(item.NewStack(item.Stick{}, 1).WithValue("pico", "sword"))
	assert.Error(t, err)
}

func TestStackKeyOption(t *testing.T) {
	r := newSwordRegistry(t, WithStackKey("weapon"))
	inst, err := r.NewInstance("iron_sword")
	require.NoError(t, err)

	stack, err := r.WriteStack(item.NewStack(item.Stick{}, 1), inst)
	require.NoError(t, err)

	_, ok := stack.Value("weapon")
	assert.True(t, ok)
	_, ok = stack.Value("pico")
	assert.False(t, ok)
}
