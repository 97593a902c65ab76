package codegen

import (
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/riscv"
)

// emitMethod writes one user-defined method's full activation record:
// prologue (adopt the control-link slot as this frame's frame pointer,
// save ra and the caller's self, adopt the new self from a0), the
// body's expression code (leaving its value in a0), and the epilogue
// (restore ra and self, pop the frame, reload the caller's frame
// pointer from the control-link slot, return).
func (g *Generator) emitMethod(classIdx int, m classtable.Method) {
	if m.Builtin || m.Body == nil {
		return
	}
	b := g.text
	rec := g.table.Record(classIdx)

	b.Label(methodLabel(rec.Name, m.Name))
	b.Comment("%s.%s", rec.Name, m.Name)
	b.Mv(riscv.ControlLink, riscv.StackPointer)
	b.Addi(riscv.StackPointer, riscv.StackPointer, -frameHeaderBytes)
	b.Sw(riscv.SelfReg, riscv.Mem(0, riscv.StackPointer))
	b.Sw(riscv.ReturnAddr, riscv.Mem(4, riscv.StackPointer))
	b.Mv(riscv.SelfReg, riscv.ResultReg)

	g.selfClass = classIdx
	g.scope = newScope()
	g.depth = 0
	for i, f := range m.Formals {
		g.scope.define(f.Name, location{kind: locFormal, index: i})
	}

	g.emitExpr(m.Body)

	b.Lw(riscv.SelfReg, riscv.Mem(0, riscv.StackPointer))
	b.Lw(riscv.ReturnAddr, riscv.Mem(4, riscv.StackPointer))
	b.Addi(riscv.StackPointer, riscv.StackPointer, frameHeaderBytes)
	b.Lw(riscv.ControlLink, riscv.Mem(0, riscv.StackPointer))
	b.Ret()
}

// pushLocal reserves one new stack slot for a let/case binding,
// storing the value currently in ResultReg, and returns the location
// to register in scope for the binding's lifetime.
func (g *Generator) pushLocal(name string) location {
	b := g.text
	b.Addi(riscv.StackPointer, riscv.StackPointer, -riscv.FrameSlotBytes)
	loc := location{kind: locLocal, index: g.depth}
	g.depth++
	b.Sw(riscv.ResultReg, loc.addr(g.depth))
	g.scope.define(name, loc)
	return loc
}

// pushControlLink pushes the caller's current frame pointer onto the
// stack immediately before a call, right after its arguments: the
// callee's prologue captures this slot's address as its own frame
// pointer, so formal i ends up at fp+4*(i+1) and the control link
// itself sits at fp+0, matching the fixed formal-offset convention
// every call site and activation record shares.
func (g *Generator) pushControlLink() {
	b := g.text
	b.Addi(riscv.StackPointer, riscv.StackPointer, -riscv.FrameSlotBytes)
	g.depth++
	b.Sw(riscv.ControlLink, riscv.Mem(0, riscv.StackPointer))
}

// popControlLink releases the control-link slot pushControlLink
// reserved, once the call it guarded has returned.
func (g *Generator) popControlLink() {
	g.popLocals(1)
}

// popLocals releases n previously pushed local slots, restoring sp
// and the live-depth counter as a binding's scope ends.
func (g *Generator) popLocals(n int) {
	if n == 0 {
		return
	}
	g.text.Addi(riscv.StackPointer, riscv.StackPointer, int32(n*riscv.FrameSlotBytes))
	g.depth -= n
}

// pushScratch spills src to a transient, unnamed stack slot (used to
// keep a value alive across evaluating a second operand that also
// needs ResultReg) and returns a token to hand back to popInto.
func (g *Generator) pushScratch(src riscv.Reg) int {
	b := g.text
	b.Addi(riscv.StackPointer, riscv.StackPointer, -riscv.FrameSlotBytes)
	slot := g.depth
	g.depth++
	b.Sw(src, riscv.Mem(0, riscv.StackPointer))
	return slot
}

// popInto reloads the value pushScratch spilled at slot into dst and
// releases the slot. It must be the first pop after the matching
// push (scratch slots nest like a stack, innermost first).
func (g *Generator) popInto(dst riscv.Reg, slot int) {
	b := g.text
	off := riscv.FrameSlotBytes * (g.depth - slot - 1)
	b.Lw(dst, riscv.Mem(off, riscv.StackPointer))
	b.Addi(riscv.StackPointer, riscv.StackPointer, riscv.FrameSlotBytes)
	g.depth--
}
