package pico

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustChain[T any](t *testing.T, stat *Stat[T], values ...Value[T]) *StatNode[T] {
	t.Helper()
	chain, err := StatNodeOf(stat, values...)
	require.NoError(t, err)
	return chain
}

func TestStatMapDiscardingOverwrite(t *testing.T) {
	damage := DecimalStat("damage")
	m := NewStatMap()

	require.NoError(t, m.Merge("damage", mustChain[float64](t, damage, Add[float64]{V: 3}, Add[float64]{V: 2})))
	require.NoError(t, m.Merge("damage", mustChain[float64](t, damage, Set[float64]{V: 5})))
	require.NoError(t, m.Merge("damage", mustChain[float64](t, damage, Add[float64]{V: 1})))

	c, err := m.Compile()
	require.NoError(t, err)
	v, err := Get(c, damage)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}

func TestStatMapMergeAppends(t *testing.T) {
	damage := DecimalStat("damage")
	m := NewStatMap()

	require.NoError(t, m.Merge("damage", mustChain[float64](t, damage, Set[float64]{V: 10})))
	require.NoError(t, m.Merge("damage", mustChain[float64](t, damage, Multiply[float64]{V: 2})))
	require.NoError(t, m.Merge("damage", mustChain[float64](t, damage, Subtract[float64]{V: 3})))

	chain, ok := m.Get("damage")
	require.True(t, ok)
	assert.Equal(t, 3, chain.Len())

	v, err := chain.ComputeAny()
	require.NoError(t, err)
	assert.Equal(t, 17.0, v)
}

func TestStatMapDoesNotMutateSources(t *testing.T) {
	damage := DecimalStat("damage")
	base := mustChain[float64](t, damage, Set[float64]{V: 1})
	bonus := mustChain[float64](t, damage, Add[float64]{V: 1})

	for range 3 {
		m := NewStatMap()
		require.NoError(t, m.Merge("damage", base))
		require.NoError(t, m.Merge("damage", bonus))
		c, err := m.Compile()
		require.NoError(t, err)
		v, err := Get(c, damage)
		require.NoError(t, err)
		assert.Equal(t, 2.0, v)
	}
	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 1, bonus.Len())
}

func TestStatMapTypeMismatch(t *testing.T) {
	m := NewStatMap()
	require.NoError(t, m.Merge("x", mustChain[float64](t, DecimalStat("x"), Set[float64]{V: 1})))

	err := m.Merge("x", mustChain[int64](t, IntegerStat("x"), Add[int64]{V: 1}))
	assert.ErrorIs(t, err, ErrStatType)

	// A discarding chain of another type does not replace the chain either.
	err = m.Merge("x", mustChain[int64](t, IntegerStat("x"), Set[int64]{V: 2}))
	require.ErrorIs(t, err, ErrStatType)
	assert.Contains(t, err.Error(), "x")

	c, err := m.Compile()
	require.NoError(t, err)
	v, err := Get(c, DecimalStat("x"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestStatMapCompileRequiresFirst(t *testing.T) {
	damage := DecimalStat("damage")
	m := NewStatMap()
	m.Set("damage", NewStatNode[float64](damage, divideOnly{}))

	before := testutil.ToFloat64(statCompileTotal.WithLabelValues("error"))
	_, err := m.Compile()
	require.ErrorIs(t, err, ErrNotFirst)
	assert.Contains(t, err.Error(), "damage")
	assert.Equal(t, before+1, testutil.ToFloat64(statCompileTotal.WithLabelValues("error")))
}

func TestStatMapOrder(t *testing.T) {
	m := NewStatMap()
	for _, key := range []string{"c", "a", "b"} {
		m.Set(key, mustChain[float64](t, DecimalStat(key), Set[float64]{V: 1}))
	}
	// Re-setting keeps the original position.
	m.Set("c", mustChain[float64](t, DecimalStat("c"), Set[float64]{V: 2}))

	assert.Equal(t, []string{"c", "a", "b"}, m.Keys())

	var backward []string
	for key := range m.Backward() {
		backward = append(backward, key)
	}
	assert.Equal(t, []string{"b", "a", "c"}, backward)

	c, err := m.Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, c.Keys())
	v, _ := c.Lookup("c")
	assert.Equal(t, 2.0, v)
}

func TestStatMapMergeAllReversed(t *testing.T) {
	name := TextStat("name")
	src := NewStatMap()
	src.Set("a", mustChain[string](t, name, Append{V: "a"}))
	src.Set("b", mustChain[string](t, name, Append{V: "b"}))

	m := NewStatMap()
	require.NoError(t, m.MergeAllReversed(src))
	assert.Equal(t, []string{"b", "a"}, m.Keys())

	m = NewStatMap()
	require.NoError(t, m.MergeAll(src))
	assert.Equal(t, []string{"a", "b"}, m.Keys())
}

func TestCompiledStatMapAccessors(t *testing.T) {
	damage := DecimalStat("damage")
	speed := DecimalStat("speed")
	m := NewStatMap()
	m.Set("damage", mustChain[float64](t, damage, Set[float64]{V: 7}))

	c, err := m.Compile()
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Has("damage"))
	assert.False(t, c.Has("speed"))

	_, err = Get(c, speed)
	assert.ErrorIs(t, err, ErrMissingStat)

	v, err := GetOr(c, speed, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	v, err = GetOr(c, damage, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	fail := errors.New("no speed")
	_, err = GetOrElse(c, speed, func() (float64, error) { return 0, fail })
	assert.ErrorIs(t, err, fail)

	// Same key, different kind.
	_, err = GetOr(c, IntegerStat("damage"), 0)
	assert.ErrorIs(t, err, ErrStatType)

	// A nil compiled map behaves as empty.
	var empty *CompiledStatMap
	assert.Zero(t, empty.Len())
	_, err = Get(empty, damage)
	assert.ErrorIs(t, err, ErrMissingStat)
}

func TestStatMapCopy(t *testing.T) {
	damage := DecimalStat("damage")
	m := NewStatMap()
	m.Set("damage", mustChain[float64](t, damage, Set[float64]{V: 1}))

	c := m.Copy()
	require.NoError(t, c.Merge("damage", mustChain[float64](t, damage, Add[float64]{V: 1})))

	orig, _ := m.Get("damage")
	copied, _ := c.Get("damage")
	assert.Equal(t, 1, orig.Len())
	assert.Equal(t, 2, copied.Len())
}
