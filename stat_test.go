package pico

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainCompute(t *testing.T) {
	damage := DecimalStat("damage")

	chain, err := StatNodeOf[float64](damage, Set[float64]{V: 10}, Multiply[float64]{V: 2}, Subtract[float64]{V: 3})
	require.NoError(t, err)

	first, ok := chain.AsFirst()
	require.True(t, ok)
	assert.Equal(t, 17.0, first.Compute())
	assert.Equal(t, 3, chain.Len())
}

func TestChainFromOps(t *testing.T) {
	damage := DecimalStat("damage")

	chain, err := damage.Chain([]Op{{OpSet, 10.0}, {OpMultiply, 2}, {OpSubtract, 3.0}})
	require.NoError(t, err)

	v, err := chain.Compute()
	require.NoError(t, err)
	assert.Equal(t, 17.0, v)
}

func TestStatNodeOfRejectsEmpty(t *testing.T) {
	chain, err := StatNodeOf(DecimalStat("damage"))
	assert.ErrorIs(t, err, ErrEmptyStat)
	assert.Nil(t, chain)

	_, err = DecimalStat("damage").ParseChain(nil)
	assert.ErrorIs(t, err, ErrEmptyStat)
}

func TestDeserializeErrors(t *testing.T) {
	damage := DecimalStat("damage")

	_, err := damage.Deserialize(Op{Operator: "^", Operand: 2.0})
	require.ErrorIs(t, err, ErrUnknownOperator)
	assert.Contains(t, err.Error(), "damage")
	assert.Contains(t, err.Error(), "^")

	_, err = damage.Deserialize(Op{Operator: OpAdd, Operand: "five"})
	assert.ErrorIs(t, err, ErrInvalidOperand)

	_, err = damage.Deserialize(Op{Operator: OpDivide, Operand: 0})
	assert.ErrorIs(t, err, ErrInvalidOperand)

	_, err = IntegerStat("count").Deserialize(Op{Operator: OpAdd, Operand: 1.5})
	assert.ErrorIs(t, err, ErrInvalidOperand)

	_, err = FlagStat("glows").Deserialize(Op{Operator: OpAdd, Operand: true})
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestComputeRequiresFirst(t *testing.T) {
	damage := DecimalStat("damage")
	chain := NewStatNode[float64](damage, divideOnly{})

	assert.False(t, chain.IsFirst())
	_, err := chain.Compute()
	assert.ErrorIs(t, err, ErrNotFirst)
}

// divideOnly is a Value that cannot start a chain.
type divideOnly struct{}

func (divideOnly) Next(last float64) float64 { return last / 2 }

func TestFirstValues(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		want float64
	}{
		{"set", Op{OpSet, 4.0}, 4},
		{"add", Op{OpAdd, 4.0}, 4},
		{"subtract", Op{OpSubtract, 4.0}, -4},
		{"multiply", Op{OpMultiply, 4.0}, 4},
		{"divide", Op{OpDivide, 4.0}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := DecimalStat("x").Chain([]Op{tt.op})
			require.NoError(t, err)
			v, err := chain.Compute()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, v, 1e-12)
		})
	}
}

func TestIntegerStat(t *testing.T) {
	chain, err := IntegerStat("slots").Chain([]Op{{OpSet, 7}, {OpDivide, 2}, {OpAdd, int64(1)}})
	require.NoError(t, err)

	v, err := chain.Compute()
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
}

func TestVectorStat(t *testing.T) {
	chain, err := VectorStat("knockback").Chain([]Op{
		{OpSet, []any{1, 2, 3}},
		{OpAdd, []any{1.0, 1.0, 1.0}},
		{OpMultiply, 2},
		{OpDivide, []any{4, 2, 1}},
	})
	require.NoError(t, err)

	v, err := chain.Compute()
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 3, 8}, v)

	_, err = VectorStat("knockback").Deserialize(Op{OpAdd, 2.0})
	assert.ErrorIs(t, err, ErrInvalidOperand, "scalars only scale")
	_, err = VectorStat("knockback").Deserialize(Op{OpSet, []any{1, 2}})
	assert.ErrorIs(t, err, ErrInvalidOperand)
}

func TestTextAndFlagStats(t *testing.T) {
	chain, err := TextStat("name").Chain([]Op{{OpAdd, "Iron"}, {OpAdd, " Sword"}})
	require.NoError(t, err)
	name, err := chain.Compute()
	require.NoError(t, err)
	assert.Equal(t, "Iron Sword", name)

	flag, err := FlagStat("glows").Chain([]Op{{OpSet, false}, {OpSet, true}})
	require.NoError(t, err)
	glows, err := flag.Compute()
	require.NoError(t, err)
	assert.True(t, glows)
}

func TestChainCopyIsIndependent(t *testing.T) {
	damage := DecimalStat("damage")
	chain, err := StatNodeOf[float64](damage, Set[float64]{V: 1})
	require.NoError(t, err)

	c := chain.Copy()
	c.Add(NewStatNode[float64](damage, Add[float64]{V: 1}))

	assert.Equal(t, 1, chain.Len())
	assert.Equal(t, 2, c.Len())
}

func TestStatOperators(t *testing.T) {
	assert.Equal(t, []string{"*", "+", "-", "/", "="}, DecimalStat("x").Operators())
	assert.Equal(t, []string{"="}, FlagStat("x").Operators())
	assert.Equal(t, "+ 5", Op{OpAdd, 5}.String())
}
