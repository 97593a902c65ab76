// Package constpool implements the static constant pool: the
// interning tables for every integer, string, and boolean literal the
// program uses, assigned deterministic labels in first-use order so
// the same source always produces byte-identical assembly.
package constpool

import "fmt"

// Pool accumulates the distinct int/string/bool constants a
// compilation unit references. Labels are assigned at first use and
// never change afterwards, matching the reference compiler's
// StaticConstants behavior of interning once and reusing thereafter.
type Pool struct {
	strings  []string
	strIndex map[string]int

	ints    []int32
	intIndex map[int32]int

	trueUsed  bool
	falseUsed bool
}

// New creates an empty pool and interns the defaults every program
// needs regardless of what the source mentions: the empty string and
// zero int (the `no_expr` default values of type String and Int) and
// boolean false (the default value of type Bool), per the reference
// compiler's emit_default_value handling of attributes with no
// initializer.
func New() *Pool {
	p := &Pool{strIndex: make(map[string]int), intIndex: make(map[int32]int)}
	p.InternString("")
	p.InternInt(0)
	p.UseBool(false)
	return p
}

// InternString records s if new and returns its stable index.
func (p *Pool) InternString(s string) int {
	if idx, ok := p.strIndex[s]; ok {
		return idx
	}
	idx := len(p.strings)
	p.strings = append(p.strings, s)
	p.strIndex[s] = idx
	return idx
}

// InternInt records v if new and returns its stable index.
func (p *Pool) InternInt(v int32) int {
	if idx, ok := p.intIndex[v]; ok {
		return idx
	}
	idx := len(p.ints)
	p.ints = append(p.ints, v)
	p.intIndex[v] = idx
	return idx
}

// UseBool records that the given boolean constant is referenced. COOL
// has exactly two boolean values, so this never grows a table; it
// only flips a flag so the emitter knows whether to emit the object.
func (p *Pool) UseBool(b bool) {
	if b {
		p.trueUsed = true
	} else {
		p.falseUsed = true
	}
}

// Strings returns interned strings in label order (first use first).
func (p *Pool) Strings() []string { return p.strings }

// Ints returns interned ints in label order (first use first).
func (p *Pool) Ints() []int32 { return p.ints }

// BoolTrueUsed reports whether `true` was ever referenced.
func (p *Pool) BoolTrueUsed() bool { return p.trueUsed }

// BoolFalseUsed reports whether `false` was ever referenced.
func (p *Pool) BoolFalseUsed() bool { return p.falseUsed }

// StringIndex returns s's stable index; s must already be interned.
func (p *Pool) StringIndex(s string) int { return p.strIndex[s] }

// IntIndex returns v's stable index; v must already be interned.
func (p *Pool) IntIndex(v int32) int { return p.intIndex[v] }

// StringLabel returns the assembly label for the string constant at
// idx, e.g. "str_const3".
func StringLabel(idx int) string { return fmt.Sprintf("str_const%d", idx) }

// IntLabel returns the assembly label for the int constant at idx,
// e.g. "int_const3".
func IntLabel(idx int) string { return fmt.Sprintf("int_const%d", idx) }

// BoolLabel returns the assembly label for the given boolean value:
// bool_const0 is the canonical false object, bool_const1 the
// canonical true object.
func BoolLabel(b bool) string {
	if b {
		return "bool_const1"
	}
	return "bool_const0"
}
