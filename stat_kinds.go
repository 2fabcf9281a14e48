package pico

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Standard operators.
const (
	OpSet      = "="
	OpAdd      = "+"
	OpSubtract = "-"
	OpMultiply = "*"
	OpDivide   = "/"
)

// Set assigns V, discarding whatever precedes it.
type Set[T any] struct {
	V T
}

func (s Set[T]) Next(T) T  { return s.V }
func (s Set[T]) First() T  { return s.V }
func (s Set[T]) Discards() {}

// Number is the constraint for numeric stats.
type Number interface {
	~int64 | ~float64
}

// Add adds V to the running value. As a first value it yields V.
type Add[N Number] struct {
	V N
}

func (a Add[N]) Next(last N) N { return last + a.V }
func (a Add[N]) First() N      { return a.V }

// Subtract subtracts V from the running value. As a first value it yields -V.
type Subtract[N Number] struct {
	V N
}

func (s Subtract[N]) Next(last N) N { return last - s.V }
func (s Subtract[N]) First() N      { return -s.V }

// Multiply multiplies the running value by V. As a first value it yields V.
type Multiply[N Number] struct {
	V N
}

func (m Multiply[N]) Next(last N) N { return last * m.V }
func (m Multiply[N]) First() N      { return m.V }

// Divide divides the running value by V. As a first value it yields 1/V.
// V is never zero: the parser rejects it.
type Divide[N Number] struct {
	V N
}

func (d Divide[N]) Next(last N) N { return last / d.V }
func (d Divide[N]) First() N      { return 1 / d.V }

// NumberStat creates a numeric stat supporting =, +, -, * and /.
func NumberStat[N Number](key string) *Stat[N] {
	return NewStat(key, map[string]OpParser[N]{
		OpSet: func(operand any) (Value[N], error) {
			v, err := toNumber[N](operand)
			return Set[N]{V: v}, err
		},
		OpAdd: func(operand any) (Value[N], error) {
			v, err := toNumber[N](operand)
			return Add[N]{V: v}, err
		},
		OpSubtract: func(operand any) (Value[N], error) {
			v, err := toNumber[N](operand)
			return Subtract[N]{V: v}, err
		},
		OpMultiply: func(operand any) (Value[N], error) {
			v, err := toNumber[N](operand)
			return Multiply[N]{V: v}, err
		},
		OpDivide: func(operand any) (Value[N], error) {
			v, err := toNumber[N](operand)
			if err == nil && v == 0 {
				err = fmt.Errorf("%w: division by zero", ErrInvalidOperand)
			}
			return Divide[N]{V: v}, err
		},
	})
}

// DecimalStat creates a float64 stat.
func DecimalStat(key string) *Stat[float64] {
	return NumberStat[float64](key)
}

// IntegerStat creates an int64 stat. Division truncates.
func IntegerStat(key string) *Stat[int64] {
	return NumberStat[int64](key)
}

// VecAdd adds V component-wise. As a first value it yields V.
type VecAdd struct {
	V mgl64.Vec3
}

func (a VecAdd) Next(last mgl64.Vec3) mgl64.Vec3 { return last.Add(a.V) }
func (a VecAdd) First() mgl64.Vec3               { return a.V }

// VecSubtract subtracts V component-wise. As a first value it yields -V.
type VecSubtract struct {
	V mgl64.Vec3
}

func (s VecSubtract) Next(last mgl64.Vec3) mgl64.Vec3 { return last.Sub(s.V) }
func (s VecSubtract) First() mgl64.Vec3               { return s.V.Mul(-1) }

// VecScale multiplies component-wise by V. As a first value it yields V.
type VecScale struct {
	V mgl64.Vec3
}

func (s VecScale) Next(last mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{last[0] * s.V[0], last[1] * s.V[1], last[2] * s.V[2]}
}
func (s VecScale) First() mgl64.Vec3 { return s.V }

// VectorStat creates a 3-vector stat. The * and / operators accept either a
// scalar or a 3-element operand and act component-wise.
func VectorStat(key string) *Stat[mgl64.Vec3] {
	return NewStat(key, map[string]OpParser[mgl64.Vec3]{
		OpSet: func(operand any) (Value[mgl64.Vec3], error) {
			v, err := toVec3(operand, false)
			return Set[mgl64.Vec3]{V: v}, err
		},
		OpAdd: func(operand any) (Value[mgl64.Vec3], error) {
			v, err := toVec3(operand, false)
			return VecAdd{V: v}, err
		},
		OpSubtract: func(operand any) (Value[mgl64.Vec3], error) {
			v, err := toVec3(operand, false)
			return VecSubtract{V: v}, err
		},
		OpMultiply: func(operand any) (Value[mgl64.Vec3], error) {
			v, err := toVec3(operand, true)
			return VecScale{V: v}, err
		},
		OpDivide: func(operand any) (Value[mgl64.Vec3], error) {
			v, err := toVec3(operand, true)
			if err != nil {
				return nil, err
			}
			if v[0] == 0 || v[1] == 0 || v[2] == 0 {
				return nil, fmt.Errorf("%w: division by zero", ErrInvalidOperand)
			}
			return VecScale{V: mgl64.Vec3{1 / v[0], 1 / v[1], 1 / v[2]}}, nil
		},
	})
}

// FlagStat creates a boolean stat supporting only =.
func FlagStat(key string) *Stat[bool] {
	return NewStat(key, map[string]OpParser[bool]{
		OpSet: func(operand any) (Value[bool], error) {
			b, ok := operand.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: expected a boolean, got %T", ErrInvalidOperand, operand)
			}
			return Set[bool]{V: b}, nil
		},
	})
}

// Append appends V to the running text. As a first value it yields V.
type Append struct {
	V string
}

func (a Append) Next(last string) string { return last + a.V }
func (a Append) First() string           { return a.V }

// TextStat creates a string stat supporting = and + (append).
func TextStat(key string) *Stat[string] {
	return NewStat(key, map[string]OpParser[string]{
		OpSet: func(operand any) (Value[string], error) {
			s, err := toText(operand)
			return Set[string]{V: s}, err
		},
		OpAdd: func(operand any) (Value[string], error) {
			s, err := toText(operand)
			return Append{V: s}, err
		},
	})
}

// toFloat converts the numeric types produced by YAML and NBT decoders.
func toFloat(operand any) (float64, error) {
	switch v := operand.(type) {
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, fmt.Errorf("%w: expected a number, got %T", ErrInvalidOperand, operand)
}

func toNumber[N Number](operand any) (N, error) {
	f, err := toFloat(operand)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidOperand, f)
	}
	n := N(f)
	if float64(n) != f {
		return 0, fmt.Errorf("%w: %v is not a whole number", ErrInvalidOperand, f)
	}
	return n, nil
}

func toVec3(operand any, allowScalar bool) (mgl64.Vec3, error) {
	switch v := operand.(type) {
	case mgl64.Vec3:
		return v, nil
	case []any:
		if len(v) != 3 {
			return mgl64.Vec3{}, fmt.Errorf("%w: expected 3 components, got %d", ErrInvalidOperand, len(v))
		}
		var out mgl64.Vec3
		for i, c := range v {
			f, err := toFloat(c)
			if err != nil {
				return mgl64.Vec3{}, err
			}
			out[i] = f
		}
		return out, nil
	case []float64:
		if len(v) != 3 {
			return mgl64.Vec3{}, fmt.Errorf("%w: expected 3 components, got %d", ErrInvalidOperand, len(v))
		}
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	}
	if allowScalar {
		f, err := toFloat(operand)
		if err != nil {
			return mgl64.Vec3{}, err
		}
		return mgl64.Vec3{f, f, f}, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("%w: expected a 3-vector, got %T", ErrInvalidOperand, operand)
}

func toText(operand any) (string, error) {
	s, ok := operand.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected a string, got %T", ErrInvalidOperand, operand)
	}
	return s, nil
}
