package classtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSimple wires Object -> A -> B and Object -> C atop the five
// built-ins, exercising Finalize's pre-order walk without needing the
// full semantic pipeline.
func buildSimple(t *testing.T) *Table {
	t.Helper()
	b := NewBuilder()
	linkBuiltins(b)
	b.Add("A", "Object", 1)
	b.Add("B", "A", 2)
	b.Add("C", "Object", 3)
	b.SetParent("A", "Object")
	b.SetParent("B", "A")
	b.SetParent("C", "Object")
	return b.Finalize()
}

// linkBuiltins wires the four non-Object built-ins under Object, the
// link the class collector performs for every real program; tests
// that only care about user-class shape still need it so Finalize's
// Object-rooted walk reaches them.
func linkBuiltins(b *Builder) {
	b.SetParent("IO", "Object")
	b.SetParent("Int", "Object")
	b.SetParent("Bool", "Object")
	b.SetParent("String", "Object")
}

func TestFinalizeAssignsContiguousTagRanges(t *testing.T) {
	table := buildSimple(t)

	objIdx, _ := table.Index("Object")
	aIdx, _ := table.Index("A")
	bIdx, _ := table.Index("B")
	cIdx, _ := table.Index("C")

	lo, hi := table.TagRange(objIdx)
	assert.Equal(t, lo, table.Record(objIdx).Index)
	assert.GreaterOrEqual(t, hi, table.Record(bIdx).Index, "B must fall in Object's range")

	aLo, aHi := table.TagRange(aIdx)
	assert.True(t, aLo <= table.Record(bIdx).Index && table.Record(bIdx).Index <= aHi,
		"B's tag must fall within A's range")

	cLo, cHi := table.TagRange(cIdx)
	assert.False(t, cLo <= table.Record(bIdx).Index && table.Record(bIdx).Index <= cHi,
		"B's tag must not fall within C's unrelated range")
}

func TestIsSubclassOf(t *testing.T) {
	table := buildSimple(t)
	aIdx, _ := table.Index("A")
	bIdx, _ := table.Index("B")
	cIdx, _ := table.Index("C")
	objIdx, _ := table.Index("Object")

	tests := []struct {
		name     string
		sub, sup int
		want     bool
	}{
		{"B is A", bIdx, aIdx, true},
		{"B is Object", bIdx, objIdx, true},
		{"B is B", bIdx, bIdx, true},
		{"A is not B", aIdx, bIdx, false},
		{"C is not A", cIdx, aIdx, false},
		{"everything is Object", cIdx, objIdx, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.IsSubclassOf(tt.sub, tt.sup))
		})
	}
}

func TestLUB(t *testing.T) {
	table := buildSimple(t)
	aIdx, _ := table.Index("A")
	bIdx, _ := table.Index("B")
	cIdx, _ := table.Index("C")
	objIdx, _ := table.Index("Object")

	assert.Equal(t, aIdx, table.LUB(aIdx, bIdx))
	assert.Equal(t, bIdx, table.LUB(bIdx, bIdx))
	assert.Equal(t, objIdx, table.LUB(bIdx, cIdx))
}

func TestAllAttributesFlattensAncestorsFirst(t *testing.T) {
	b := NewBuilder()
	aRec := b.Add("A", "Object", 1)
	bRec := b.Add("B", "A", 2)
	b.SetParent("A", "Object")
	b.SetParent("B", "A")
	aRec.Attributes = []Attr{{Name: "x", DeclType: 2}}
	bRec.Attributes = []Attr{{Name: "y", DeclType: 2}}

	table := b.Finalize()
	table.FinalizeLayouts()

	bIdx, _ := table.Index("B")
	flat := table.AllAttributes(bIdx)
	require.Len(t, flat, 2)
	assert.Equal(t, "x", flat[0].Name)
	assert.Equal(t, "y", flat[1].Name)
	assert.Equal(t, 0, flat[0].Slot)
	assert.Equal(t, 1, flat[1].Slot)
}

func TestAllMethodsOverrideKeepsSlot(t *testing.T) {
	b := NewBuilder()
	aRec := b.Add("A", "Object", 1)
	bRec := b.Add("B", "A", 2)
	b.SetParent("A", "Object")
	b.SetParent("B", "A")
	aRec.Methods = []Method{{Name: "foo", RetType: 2}, {Name: "bar", RetType: 2}}
	bRec.Methods = []Method{{Name: "foo", RetType: 2, Line: 99}}

	table := b.Finalize()
	table.FinalizeLayouts()

	bIdx, _ := table.Index("B")
	flat := table.AllMethods(bIdx)
	require.Len(t, flat, 2)

	var foo, bar FlatMethod
	for _, m := range flat {
		switch m.Name {
		case "foo":
			foo = m
		case "bar":
			bar = m
		}
	}
	assert.Equal(t, 0, foo.Slot, "override keeps the ancestor's dispatch slot")
	assert.Equal(t, bIdx, foo.OwnerIndex, "override replaces the owner")
	assert.Equal(t, 99, foo.Line)
	assert.Equal(t, 1, bar.Slot)
}

func TestEmissionOrderBuiltinsFirst(t *testing.T) {
	table := buildSimple(t)
	order := table.EmissionOrder()
	require.Len(t, order, 5+3)

	names := make([]string, len(order))
	for i, idx := range order {
		names[i] = table.Name(idx)
	}
	assert.Equal(t, []string{"Object", "IO", "Int", "Bool", "String"}, names[:5])
}
