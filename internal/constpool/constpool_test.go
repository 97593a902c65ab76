package constpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPreinternsDefaults(t *testing.T) {
	p := New()
	assert.Equal(t, []string{""}, p.Strings())
	assert.Equal(t, []int32{0}, p.Ints())
	assert.False(t, p.BoolTrueUsed())
	assert.True(t, p.BoolFalseUsed())
}

func TestInternStringDeduplicatesAndAssignsStableIndex(t *testing.T) {
	p := New()
	idx1 := p.InternString("hello")
	idx2 := p.InternString("world")
	idx3 := p.InternString("hello")

	require.Equal(t, idx1, idx3, "interning the same string twice returns the same index")
	assert.NotEqual(t, idx1, idx2)
	assert.Equal(t, idx1, p.StringIndex("hello"))
	assert.Equal(t, []string{"", "hello", "world"}, p.Strings())
}

func TestInternIntDeduplicatesAndAssignsStableIndex(t *testing.T) {
	p := New()
	idx1 := p.InternInt(42)
	idx2 := p.InternInt(-7)
	idx3 := p.InternInt(42)

	require.Equal(t, idx1, idx3)
	assert.NotEqual(t, idx1, idx2)
	assert.Equal(t, []int32{0, 42, -7}, p.Ints())
}

func TestUseBoolTracksBothValuesIndependently(t *testing.T) {
	p := New()
	assert.False(t, p.BoolTrueUsed())
	p.UseBool(true)
	assert.True(t, p.BoolTrueUsed())
	assert.True(t, p.BoolFalseUsed(), "New already interned false")
}

func TestFirstUseOrderIsDeterministic(t *testing.T) {
	p1 := New()
	p1.InternString("b")
	p1.InternString("a")

	p2 := New()
	p2.InternString("b")
	p2.InternString("a")

	assert.Equal(t, p1.Strings(), p2.Strings(), "same source order must yield identical labels")
}

func TestLabelHelpers(t *testing.T) {
	assert.Equal(t, "str_const3", StringLabel(3))
	assert.Equal(t, "int_const0", IntLabel(0))
	assert.Equal(t, "bool_const1", BoolLabel(true))
	assert.Equal(t, "bool_const0", BoolLabel(false))
}
