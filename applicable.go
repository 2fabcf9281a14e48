package pico

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// ApplicableStats is a rule-gated, prioritized bundle of stat contributions
// declared on a component.
type ApplicableStats struct {
	// Stats holds the contributed chains.
	Stats *StatMap

	// Priority orders contributions across the tree, lowest first.
	Priority int

	// Reversed merges Stats in reverse key order.
	Reversed bool

	// Rule gates the contribution per node. Nil always applies.
	Rule Rule
}

// Applies evaluates the contribution's rule against n.
func (a ApplicableStats) Applies(n *Node) bool {
	if a.Rule == nil {
		return true
	}
	return a.Rule.Applies(n)
}

// Contribution is an ApplicableStats selected for a node during evaluation.
type Contribution struct {
	// Node is the node whose component declared the stats.
	Node *Node

	// Path is the node's path relative to the evaluated node.
	Path NodePath

	// Index is the declaration index within the component.
	Index int

	ApplicableStats
}

// OrderPolicy orders the collected contributions before they are merged.
// Contributions arrive in collection order: tree walk order, then
// declaration order within each node.
type OrderPolicy interface {
	Order(contributions []Contribution) []Contribution
}

// PriorityOrder sorts contributions by ascending priority, keeping collection
// order for equal priorities. This is the default policy.
//
// Reversed only affects the order in which an entry's own keys are merged.
// Keys within one entry are unique, so under this policy Reversed changes the
// key order of the compiled map but never a computed value. Use
// ReversedTiesOrder for Reversed to change results.
type PriorityOrder struct{}

// Order implements OrderPolicy.
func (PriorityOrder) Order(contributions []Contribution) []Contribution {
	ordered := slices.Clone(contributions)
	slices.SortStableFunc(ordered, func(a, b Contribution) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return ordered
}

// ReversedTiesOrder behaves like PriorityOrder, and additionally flips the
// relative order of reversed contributions within each priority tier: the
// positions held by reversed entries of a tier are refilled with those same
// entries in reverse collection order. Non-reversed entries keep their place.
type ReversedTiesOrder struct{}

// Order implements OrderPolicy.
func (ReversedTiesOrder) Order(contributions []Contribution) []Contribution {
	ordered := PriorityOrder{}.Order(contributions)
	for start := 0; start < len(ordered); {
		end := start
		for end < len(ordered) && ordered[end].Priority == ordered[start].Priority {
			end++
		}

		var slots []int
		for i := start; i < end; i++ {
			if ordered[i].Reversed {
				slots = append(slots, i)
			}
		}
		for i, j := 0, len(slots)-1; i < j; i, j = i+1, j-1 {
			ordered[slots[i]], ordered[slots[j]] = ordered[slots[j]], ordered[slots[i]]
		}

		start = end
	}
	return ordered
}

// Collect walks the subtree rooted at n and returns every stat contribution
// whose rule applies to the node that declares it, in collection order.
func Collect(n *Node) []Contribution {
	var contributions []Contribution
	n.Walk(func(cur *Node, path NodePath) WalkResult {
		for i, stats := range cur.component.stats {
			if stats.Applies(cur) {
				contributions = append(contributions, Contribution{
					Node:            cur,
					Path:            path,
					Index:           i,
					ApplicableStats: stats,
				})
			}
		}
		return Continue
	})
	return contributions
}

// Merge merges contributions in order into a new stat map.
func Merge(contributions []Contribution) (*StatMap, error) {
	merged := NewStatMap()
	for _, c := range contributions {
		if c.Stats == nil {
			continue
		}
		var err error
		if c.Reversed {
			err = merged.MergeAllReversed(c.Stats)
		} else {
			err = merged.MergeAll(c.Stats)
		}
		if err != nil {
			return nil, fmt.Errorf("%s at %q: %w", c.Node.component.ID(), c.Path, err)
		}
	}
	return merged, nil
}

// Evaluate collects, orders and merges the stat contributions of the subtree
// rooted at n, then compiles the result. A nil policy uses PriorityOrder.
func Evaluate(n *Node, policy OrderPolicy) (*CompiledStatMap, error) {
	start := time.Now()
	defer func() {
		treeEvaluateDuration.Observe(time.Since(start).Seconds())
	}()

	if policy == nil {
		policy = PriorityOrder{}
	}
	merged, err := Merge(policy.Order(Collect(n)))
	if err != nil {
		return nil, err
	}
	return merged.Compile()
}
