package pico

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statsOf builds a single-key stat map from ops.
func statsOf(t *testing.T, stat AnyStat, ops ...Op) *StatMap {
	t.Helper()
	chain, err := stat.ParseChain(ops)
	require.NoError(t, err)
	m := NewStatMap()
	m.Set(stat.Key(), chain)
	return m
}

func contributionIndexes(cs []Contribution) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Index
	}
	return out
}

func TestPriorityOrder(t *testing.T) {
	in := []Contribution{
		{Index: 0, ApplicableStats: ApplicableStats{Priority: 2}},
		{Index: 1, ApplicableStats: ApplicableStats{Priority: 1}},
		{Index: 2, ApplicableStats: ApplicableStats{Priority: 1, Reversed: true}},
		{Index: 3, ApplicableStats: ApplicableStats{Priority: -1}},
	}

	out := PriorityOrder{}.Order(in)
	assert.Equal(t, []int{3, 1, 2, 0}, contributionIndexes(out))
	assert.Equal(t, []int{0, 1, 2, 3}, contributionIndexes(in), "input is not modified")
}

func TestReversedTiesOrder(t *testing.T) {
	in := []Contribution{
		{Index: 0, ApplicableStats: ApplicableStats{Priority: 1, Reversed: true}},
		{Index: 1, ApplicableStats: ApplicableStats{Priority: 1}},
		{Index: 2, ApplicableStats: ApplicableStats{Priority: 1, Reversed: true}},
		{Index: 3, ApplicableStats: ApplicableStats{Priority: 0, Reversed: true}},
		{Index: 4, ApplicableStats: ApplicableStats{Priority: 1, Reversed: true}},
	}

	out := ReversedTiesOrder{}.Order(in)
	assert.Equal(t, []int{3, 4, 1, 2, 0}, contributionIndexes(out))
}

func TestEvaluateOrder(t *testing.T) {
	log := TextStat("log")
	sword := NewComponent("sword").
		WithSlot(NewSlot("blade", true, nil)).
		WithSlot(NewSlot("handle", true, nil)).
		WithStats(ApplicableStats{Stats: statsOf(t, log, Op{OpSet, "S"})})
	blade := NewComponent("blade").
		WithSlot(NewSlot("tip", false, nil)).
		WithStats(ApplicableStats{Priority: 1, Stats: statsOf(t, log, Op{OpAdd, "B"})})
	tip := NewComponent("tip").
		WithStats(ApplicableStats{Priority: 1, Stats: statsOf(t, log, Op{OpAdd, "T"})})
	handle := NewComponent("handle").
		WithStats(ApplicableStats{Stats: statsOf(t, log, Op{OpAdd, "H"})}).
		WithStats(ApplicableStats{Stats: statsOf(t, log, Op{OpAdd, "!"}), Rule: IsRoot})

	root := NewNode(sword)
	b := NewNode(blade)
	require.NoError(t, b.Insert("tip", NewNode(tip)))
	require.NoError(t, root.Insert("blade", b))
	require.NoError(t, root.Insert("handle", NewNode(handle)))

	contributions := Collect(root)
	require.Len(t, contributions, 4, "handle's root-only block is skipped")
	assert.Equal(t, "blade/tip", contributions[2].Path.String())

	c, err := Evaluate(root, nil)
	require.NoError(t, err)
	v, err := Get(c, log)
	require.NoError(t, err)
	assert.Equal(t, "SHBT", v)

	// Evaluating a subtree only collects from that subtree.
	c, err = Evaluate(b, nil)
	require.NoError(t, err)
	v, err = Get(c, log)
	require.NoError(t, err)
	assert.Equal(t, "BT", v)
}

func TestEvaluateRuleGating(t *testing.T) {
	damage := DecimalStat("damage")
	hilt := NewComponent("hilt").
		WithSlot(NewSlot("gem", false, nil)).
		WithStats(ApplicableStats{Stats: statsOf(t, damage, Op{OpSet, 10.0})}).
		WithStats(ApplicableStats{
			Priority: 1,
			Stats:    statsOf(t, damage, Op{OpMultiply, 2.0}),
			Rule:     Has(PathOf("gem")),
		})
	gem := NewComponent("gem").WithTags("gem")

	root := NewNode(hilt)
	c, err := Evaluate(root, PriorityOrder{})
	require.NoError(t, err)
	v, _ := Get(c, damage)
	assert.Equal(t, 10.0, v)

	require.NoError(t, root.Insert("gem", NewNode(gem)))
	c, err = Evaluate(root, PriorityOrder{})
	require.NoError(t, err)
	v, _ = Get(c, damage)
	assert.Equal(t, 20.0, v)
}

func TestEvaluateReversedEntry(t *testing.T) {
	damage := DecimalStat("damage")
	speed := DecimalStat("speed")

	block := NewStatMap()
	block.Set("damage", mustChain[float64](t, damage, Set[float64]{V: 1}))
	block.Set("speed", mustChain[float64](t, speed, Set[float64]{V: 2}))

	forward := NewNode(NewComponent("f").WithStats(ApplicableStats{Stats: block}))
	reversed := NewNode(NewComponent("r").WithStats(ApplicableStats{Stats: block, Reversed: true}))

	c, err := Evaluate(forward, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"damage", "speed"}, c.Keys())

	c, err = Evaluate(reversed, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"speed", "damage"}, c.Keys())
}

func TestEvaluateReportsMergeErrors(t *testing.T) {
	root := NewNode(NewComponent("root").
		WithStats(ApplicableStats{Stats: statsOf(t, DecimalStat("x"), Op{OpSet, 1.0})}).
		WithStats(ApplicableStats{Stats: statsOf(t, IntegerStat("x"), Op{OpAdd, 1})}))

	_, err := Evaluate(root, nil)
	require.ErrorIs(t, err, ErrStatType)
	assert.Contains(t, err.Error(), "root")
}

func TestEvaluateDoesNotMutateDefinitions(t *testing.T) {
	damage := DecimalStat("damage")
	base := statsOf(t, damage, Op{OpSet, 1.0})
	bonus := statsOf(t, damage, Op{OpAdd, 1.0})
	c := NewComponent("c").
		WithStats(ApplicableStats{Stats: base}).
		WithStats(ApplicableStats{Stats: bonus})

	for range 3 {
		compiled, err := Evaluate(NewNode(c), nil)
		require.NoError(t, err)
		v, _ := Get(compiled, damage)
		assert.Equal(t, 2.0, v)
	}
}
