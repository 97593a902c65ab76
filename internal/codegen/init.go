package codegen

import (
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/riscv"
)

// emitInit writes class idx's _init routine. By convention it takes
// the freshly-copied object to initialize in a0 and returns it in a0
// unchanged. Object's _init is the base case: nothing to do but
// return. Every other class first chains to its parent's _init (so
// inherited attributes are initialized in ancestor-to-descendant
// order, per the data model) then runs its own attribute initializers
// in source order, left to right, each one able to reference earlier
// attributes and self.
func (g *Generator) emitInit(idx int) {
	rec := g.table.Record(idx)
	b := g.text

	b.Label(initLabel(rec.Name))
	if rec.Name == "Object" {
		b.Mv(riscv.ResultReg, riscv.ResultReg)
		b.Ret()
		return
	}

	b.Mv(riscv.ControlLink, riscv.StackPointer)
	b.Addi(riscv.StackPointer, riscv.StackPointer, -frameHeaderBytes)
	b.Sw(riscv.SelfReg, riscv.Mem(0, riscv.StackPointer))
	b.Sw(riscv.ReturnAddr, riscv.Mem(4, riscv.StackPointer))
	b.Mv(riscv.SelfReg, riscv.ResultReg)

	g.depth = 0
	g.pushControlLink()
	b.Jal(initLabel(g.table.Name(rec.ParentIndex)))
	g.popControlLink()

	g.selfClass = idx
	g.scope = newScope()
	for _, a := range rec.Attributes {
		g.emitAttrInit(idx, a)
	}

	b.Mv(riscv.ResultReg, riscv.SelfReg)
	b.Lw(riscv.SelfReg, riscv.Mem(0, riscv.StackPointer))
	b.Lw(riscv.ReturnAddr, riscv.Mem(4, riscv.StackPointer))
	b.Addi(riscv.StackPointer, riscv.StackPointer, frameHeaderBytes)
	b.Lw(riscv.ControlLink, riscv.Mem(0, riscv.StackPointer))
	b.Ret()
}

func (g *Generator) emitAttrInit(classIdx int, a classtable.Attr) {
	b := g.text
	flat := g.table.AllAttributes(classIdx)
	slot := -1
	for _, f := range flat {
		if f.OwnerIndex == classIdx && f.Name == a.Name {
			slot = f.Slot
			break
		}
	}
	if slot < 0 {
		panic("emitAttrInit: attribute not found in flattened layout: " + a.Name)
	}

	if a.Init != nil {
		g.emitExpr(a.Init)
		b.Sw(riscv.ResultReg, riscv.Mem(attrByteOffset(slot), riscv.SelfReg))
		return
	}

	switch a.DeclType {
	case g.tag("Int"):
		b.La(riscv.ResultReg, "int_const0")
	case g.tag("Bool"):
		b.La(riscv.ResultReg, "bool_const0")
	case g.tag("String"):
		b.La(riscv.ResultReg, "str_const0")
	default:
		return // object types default to void, already zero in the prototype
	}
	b.Sw(riscv.ResultReg, riscv.Mem(attrByteOffset(slot), riscv.SelfReg))
}
