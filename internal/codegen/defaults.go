package codegen

import "github.com/coolc/coolc/internal/riscv"

// emitDefaultValue loads the default value of declType into a0: the
// canonical zero/empty object for Int, Bool, and String, void (a null
// pointer) for every other class and for SELF_TYPE. Used for
// attributes with no initializer and for let bindings with no `<-`.
func (g *Generator) emitDefaultValue(declType int) {
	b := g.text
	switch declType {
	case g.tag("Int"):
		b.La(riscv.ResultReg, "int_const0")
	case g.tag("Bool"):
		b.La(riscv.ResultReg, "bool_const0")
	case g.tag("String"):
		b.La(riscv.ResultReg, "str_const0")
	default:
		b.Li(riscv.ResultReg, 0)
	}
}
