package pico

import (
	"fmt"
	"maps"
	"slices"
)

// Value is a single stat operation: it transforms the running value of a
// chain into the next one. Implementations must be pure.
type Value[T any] interface {
	Next(last T) T
}

// First is a Value that can also start a chain, producing a value without a
// predecessor.
type First[T any] interface {
	Value[T]
	First() T
}

// Discarding is a First whose Next ignores the running value and returns
// First. It models absolute assignment: merging one into a stat map replaces
// the existing chain for its key.
type Discarding[T any] interface {
	First[T]

	// Discards marks the value as discarding.
	Discards()
}

// Op is a tokenized stat operation, such as {"+", 5.0}.
type Op struct {
	Operator string
	Operand  any
}

// String returns the operation in "operator operand" form.
func (o Op) String() string {
	return fmt.Sprintf("%s %v", o.Operator, o.Operand)
}

// OpParser builds a Value from an operand.
type OpParser[T any] func(operand any) (Value[T], error)

// Stat describes a typed, named computed property and how its serialized
// operations deserialize into values.
type Stat[T any] struct {
	key string
	ops map[string]OpParser[T]
}

// NewStat creates a stat kind with the given operators.
func NewStat[T any](key string, ops map[string]OpParser[T]) *Stat[T] {
	return &Stat[T]{key: key, ops: maps.Clone(ops)}
}

// Key returns the stat key.
func (s *Stat[T]) Key() string {
	return s.key
}

// Operators returns the supported operators in sorted order.
func (s *Stat[T]) Operators() []string {
	return slices.Sorted(maps.Keys(s.ops))
}

// Deserialize parses one operation.
func (s *Stat[T]) Deserialize(op Op) (Value[T], error) {
	parse, ok := s.ops[op.Operator]
	if !ok {
		return nil, fmt.Errorf("stat %s: %w %q", s.key, ErrUnknownOperator, op.Operator)
	}
	v, err := parse(op.Operand)
	if err != nil {
		return nil, fmt.Errorf("stat %s: operator %q: %w", s.key, op.Operator, err)
	}
	return v, nil
}

// Chain deserializes ops into a stat chain.
func (s *Stat[T]) Chain(ops []Op) (*StatNode[T], error) {
	values := make([]Value[T], 0, len(ops))
	for _, op := range ops {
		v, err := s.Deserialize(op)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return StatNodeOf(s, values...)
}

// ParseChain implements AnyStat.
func (s *Stat[T]) ParseChain(ops []Op) (AnyStatNode, error) {
	n, err := s.Chain(ops)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// AnyStat is the type-erased view of a Stat used by registries and stat maps.
type AnyStat interface {
	Key() string
	Operators() []string
	ParseChain(ops []Op) (AnyStatNode, error)
}

// AnyStatNode is the type-erased view of a StatNode chain.
type AnyStatNode interface {
	// Stat returns the stat the chain belongs to.
	Stat() AnyStat

	// IsFirst reports whether the chain can be computed on its own.
	IsFirst() bool

	// IsDiscarding reports whether the chain head discards prior values.
	IsDiscarding() bool

	// Len returns the number of links in the chain.
	Len() int

	// ComputeAny computes the chain.
	ComputeAny() (any, error)

	cloneChain() AnyStatNode
	appendChain(next AnyStatNode) error
	sameType(other AnyStatNode) bool
}

// StatNode is one link in a chain of stat operations.
type StatNode[T any] struct {
	stat  *Stat[T]
	value Value[T]
	next  *StatNode[T]
}

// NewStatNode creates a single-link chain.
func NewStatNode[T any](stat *Stat[T], value Value[T]) *StatNode[T] {
	return &StatNode[T]{stat: stat, value: value}
}

// StatNodeOf links values into a chain in order. At least one value is required.
func StatNodeOf[T any](stat *Stat[T], values ...Value[T]) (*StatNode[T], error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("stat %s: %w", stat.key, ErrEmptyStat)
	}
	head := NewStatNode(stat, values[0])
	tail := head
	for _, v := range values[1:] {
		tail.next = NewStatNode(stat, v)
		tail = tail.next
	}
	return head, nil
}

// Stat implements AnyStatNode.
func (n *StatNode[T]) Stat() AnyStat {
	return n.stat
}

// Descriptor returns the typed stat.
func (n *StatNode[T]) Descriptor() *Stat[T] {
	return n.stat
}

// Op returns the operation of this link.
func (n *StatNode[T]) Op() Value[T] {
	return n.value
}

// Next returns the next link, or nil.
func (n *StatNode[T]) Next() *StatNode[T] {
	return n.next
}

// Value applies this link and every following link to last.
func (n *StatNode[T]) Value(last T) T {
	for cur := n; cur != nil; cur = cur.next {
		last = cur.value.Next(last)
	}
	return last
}

// Last returns the tail of the chain.
func (n *StatNode[T]) Last() *StatNode[T] {
	cur := n
	for cur.next != nil {
		cur = cur.next
	}
	return cur
}

// Add appends next at the tail of the chain and returns n.
func (n *StatNode[T]) Add(next *StatNode[T]) *StatNode[T] {
	n.Last().next = next
	return n
}

// Len implements AnyStatNode.
func (n *StatNode[T]) Len() int {
	count := 0
	for cur := n; cur != nil; cur = cur.next {
		count++
	}
	return count
}

// IsFirst implements AnyStatNode.
func (n *StatNode[T]) IsFirst() bool {
	_, ok := n.value.(First[T])
	return ok
}

// IsDiscarding implements AnyStatNode.
func (n *StatNode[T]) IsDiscarding() bool {
	_, ok := n.value.(Discarding[T])
	return ok
}

// AsFirst returns the chain as a computable chain if its head is a First.
func (n *StatNode[T]) AsFirst() (*FirstStatNode[T], bool) {
	first, ok := n.value.(First[T])
	if !ok {
		return nil, false
	}
	return &FirstStatNode[T]{StatNode: n, first: first}, true
}

// Compute evaluates the chain from scratch.
func (n *StatNode[T]) Compute() (T, error) {
	f, ok := n.AsFirst()
	if !ok {
		var zero T
		return zero, fmt.Errorf("stat %s: %w", n.stat.key, ErrNotFirst)
	}
	return f.Compute(), nil
}

// ComputeAny implements AnyStatNode.
func (n *StatNode[T]) ComputeAny() (any, error) {
	return n.Compute()
}

// Copy returns a copy of the chain links. Values are shared.
func (n *StatNode[T]) Copy() *StatNode[T] {
	head := &StatNode[T]{stat: n.stat, value: n.value}
	tail := head
	for cur := n.next; cur != nil; cur = cur.next {
		tail.next = &StatNode[T]{stat: cur.stat, value: cur.value}
		tail = tail.next
	}
	return head
}

func (n *StatNode[T]) cloneChain() AnyStatNode {
	return n.Copy()
}

func (n *StatNode[T]) sameType(other AnyStatNode) bool {
	_, ok := other.(*StatNode[T])
	return ok
}

func (n *StatNode[T]) appendChain(next AnyStatNode) error {
	typed, ok := next.(*StatNode[T])
	if !ok {
		return fmt.Errorf("stat %s: %w: cannot append %T to %T", n.stat.key, ErrStatType, next, n)
	}
	n.Add(typed)
	return nil
}

// FirstStatNode is a chain whose head can produce a value on its own.
type FirstStatNode[T any] struct {
	*StatNode[T]
	first First[T]
}

// Compute applies the head's First value, then folds the rest of the chain.
func (f *FirstStatNode[T]) Compute() T {
	v := f.first.First()
	if f.next == nil {
		return v
	}
	return f.next.Value(v)
}
