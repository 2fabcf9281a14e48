package pico

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// StatMap is an insertion-ordered collection of stat chains keyed by stat key.
//
// Iteration order is evaluation order when one map is merged into another,
// so entries are kept in the order their keys were first added.
//
// The map owns its chains: Set and Merge store copies, so chains belonging to
// component definitions are never modified by evaluation.
type StatMap struct {
	keys    []string
	entries map[string]AnyStatNode
}

// NewStatMap creates an empty stat map.
func NewStatMap() *StatMap {
	return &StatMap{entries: make(map[string]AnyStatNode)}
}

// Len returns the number of keys.
func (m *StatMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *StatMap) Keys() []string {
	return slices.Clone(m.keys)
}

// Get returns the chain for key.
func (m *StatMap) Get(key string) (AnyStatNode, bool) {
	n, ok := m.entries[key]
	return n, ok
}

// All iterates the entries in insertion order.
func (m *StatMap) All() iter.Seq2[string, AnyStatNode] {
	return func(yield func(string, AnyStatNode) bool) {
		for _, key := range m.keys {
			if !yield(key, m.entries[key]) {
				return
			}
		}
	}
}

// Backward iterates the entries in reverse insertion order.
func (m *StatMap) Backward() iter.Seq2[string, AnyStatNode] {
	return func(yield func(string, AnyStatNode) bool) {
		for i := len(m.keys) - 1; i >= 0; i-- {
			key := m.keys[i]
			if !yield(key, m.entries[key]) {
				return
			}
		}
	}
}

// Set stores a copy of node at key, replacing any existing chain.
func (m *StatMap) Set(key string, node AnyStatNode) {
	m.put(key, node.cloneChain())
}

// Merge combines node into the chain at key. If there is no chain yet, or
// node discards prior values, node replaces the chain; otherwise it is
// appended to the tail of the existing chain. Either way an existing chain
// must hold the same value type.
func (m *StatMap) Merge(key string, node AnyStatNode) error {
	incoming := node.cloneChain()
	existing, ok := m.entries[key]
	if ok && !existing.sameType(incoming) {
		return fmt.Errorf("stat %s: %w: cannot merge %T into %T", key, ErrStatType, incoming, existing)
	}
	if !ok || incoming.IsDiscarding() {
		m.put(key, incoming)
		return nil
	}
	return existing.appendChain(incoming)
}

// MergeAll merges every entry of other in other's iteration order.
func (m *StatMap) MergeAll(other *StatMap) error {
	return m.mergeSeq(other.All())
}

// MergeAllReversed merges every entry of other in reverse iteration order.
func (m *StatMap) MergeAllReversed(other *StatMap) error {
	return m.mergeSeq(other.Backward())
}

func (m *StatMap) mergeSeq(seq iter.Seq2[string, AnyStatNode]) error {
	for key, node := range seq {
		if err := m.Merge(key, node); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a copy of the map and its chains.
func (m *StatMap) Copy() *StatMap {
	c := NewStatMap()
	for key, node := range m.All() {
		c.Set(key, node)
	}
	return c
}

func (m *StatMap) put(key string, node AnyStatNode) {
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = node
}

// Compile computes every chain and freezes the result. Fails if any chain
// head cannot produce a first value.
func (m *StatMap) Compile() (*CompiledStatMap, error) {
	c := &CompiledStatMap{
		keys:    slices.Clone(m.keys),
		entries: make(map[string]compiledStat, len(m.keys)),
	}
	for key, node := range m.All() {
		v, err := node.ComputeAny()
		if err != nil {
			statCompileTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("compile %s: %w", key, err)
		}
		c.entries[key] = compiledStat{stat: node.Stat(), value: v}
	}
	statCompileTotal.WithLabelValues("ok").Inc()
	return c, nil
}

// CompiledStatMap is the read-only, fully computed form of a StatMap.
// It is safe for concurrent use.
type CompiledStatMap struct {
	keys    []string
	entries map[string]compiledStat
}

type compiledStat struct {
	stat  AnyStat
	value any
}

// Len returns the number of stats.
func (c *CompiledStatMap) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the stat keys in evaluation order.
func (c *CompiledStatMap) Keys() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.keys)
}

// Has checks if a value exists for key.
func (c *CompiledStatMap) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.entries[key]
	return ok
}

// Lookup returns the untyped value for key.
func (c *CompiledStatMap) Lookup(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.entries[key]
	return e.value, ok
}

// All iterates the computed values in evaluation order.
func (c *CompiledStatMap) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if c == nil {
			return
		}
		for _, key := range c.keys {
			if !yield(key, c.entries[key].value) {
				return
			}
		}
	}
}

// Get returns the computed value of stat. Fails with ErrMissingStat if the
// map has no value for the stat's key and ErrStatType if the value has a
// different type.
func Get[T any](c *CompiledStatMap, stat *Stat[T]) (T, error) {
	var zero T
	v, ok := c.Lookup(stat.Key())
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrMissingStat, stat.Key())
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("stat %s: %w: have %T, want %T", stat.Key(), ErrStatType, v, zero)
	}
	return typed, nil
}

// GetOr returns the computed value of stat, or def if it is missing.
// A value of the wrong type is still an error.
func GetOr[T any](c *CompiledStatMap, stat *Stat[T], def T) (T, error) {
	v, err := Get(c, stat)
	if errors.Is(err, ErrMissingStat) {
		return def, nil
	}
	return v, err
}

// GetOrElse returns the computed value of stat, or the result of fallback
// if it is missing. fallback may itself fail.
func GetOrElse[T any](c *CompiledStatMap, stat *Stat[T], fallback func() (T, error)) (T, error) {
	v, err := Get(c, stat)
	if errors.Is(err, ErrMissingStat) {
		return fallback()
	}
	return v, err
}
