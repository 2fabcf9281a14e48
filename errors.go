package pico

import "errors"

// Configuration errors. These are returned while loading definitions and
// always wrap enough context (stat key, operator, component id) to locate
// the offending entry.
var (
	// ErrEmptyStat is returned when a stat declaration has no operations.
	ErrEmptyStat = errors.New("stat has no operations")

	// ErrUnknownOperator is returned when an operator is not defined by a stat kind.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrInvalidOperand is returned when an operand cannot be used with an operator.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrInvalidRule is returned when a rule cannot be decoded.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrUnknownStat is returned when a stat key is not registered.
	ErrUnknownStat = errors.New("unknown stat")

	// ErrUnknownComponent is returned when a component id is not registered.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrUnknownFeature is returned when a feature id is not registered or not
	// declared by the component of a node.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrUnknownBlueprint is returned when a blueprint id is not registered.
	ErrUnknownBlueprint = errors.New("unknown blueprint")

	// ErrDuplicate is returned when a definition id is registered twice.
	ErrDuplicate = errors.New("duplicate definition")
)

// Invariant violations.
var (
	// ErrNotFirst is returned when a stat chain head cannot produce a value
	// without a predecessor.
	ErrNotFirst = errors.New("chain head is not a first value")

	// ErrStatType is returned when chains or values of different types meet
	// under the same stat key.
	ErrStatType = errors.New("stat type mismatch")
)

// Tree errors.
var (
	// ErrMissingStat is returned when a compiled stat map has no value for a key.
	ErrMissingStat = errors.New("no such stat")

	// ErrUnknownSlot is returned when a child is inserted at a key the parent
	// component does not declare.
	ErrUnknownSlot = errors.New("unknown slot")

	// ErrIncompatible is returned when a child fails a slot's compatibility rule.
	ErrIncompatible = errors.New("incompatible node")

	// ErrCycle is returned when attaching a node under itself or one of its descendants.
	ErrCycle = errors.New("node would become its own ancestor")
)
