package codegen

import (
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/constpool"
	"github.com/coolc/coolc/internal/riscv"
	"github.com/coolc/coolc/internal/typedast"
)

// emitExpr emits code for e, leaving its value in ResultReg (a0) and
// restoring every register and stack slot it used internally except
// a0 by the time it returns, so callers can freely chain emitExpr
// calls without saving anything around them.
func (g *Generator) emitExpr(e typedast.Expr) {
	b := g.text
	switch n := e.(type) {
	case *typedast.IntConst:
		b.La(riscv.ResultReg, constpool.IntLabel(g.pool.IntIndex(n.Value)))
	case *typedast.BoolConst:
		b.La(riscv.ResultReg, constpool.BoolLabel(n.Value))
	case *typedast.StringConst:
		b.La(riscv.ResultReg, constpool.StringLabel(g.pool.StringIndex(n.Value)))

	case *typedast.ObjectRef:
		g.emitObjectRef(n.Name)

	case *typedast.Assign:
		g.emitExpr(n.Value)
		g.storeTo(n.Name)

	case *typedast.Block:
		for _, sub := range n.Exprs {
			g.emitExpr(sub)
		}

	case *typedast.If:
		g.emitIf(n)

	case *typedast.While:
		g.emitWhile(n)

	case *typedast.Let:
		g.emitLet(n)

	case *typedast.Case:
		g.emitCase(n)

	case *typedast.New:
		g.emitNew(n.NewType)

	case *typedast.IsVoid:
		g.emitExpr(n.Expr)
		b.Seqz(riscv.ResultReg, riscv.ResultReg)
		g.boxBool(riscv.ResultReg)

	case *typedast.Neg:
		g.emitExpr(n.Expr)
		g.unboxInt(riscv.ResultReg, riscv.ResultReg)
		b.Neg(riscv.ResultReg, riscv.ResultReg)
		g.boxInt(riscv.ResultReg)

	case *typedast.Not:
		g.emitExpr(n.Expr)
		g.unboxInt(riscv.ResultReg, riscv.ResultReg)
		b.Seqz(riscv.ResultReg, riscv.ResultReg)
		g.boxBool(riscv.ResultReg)

	case *typedast.BinOp:
		g.emitBinOp(n)

	case *typedast.Compare:
		g.emitCompare(n)

	case *typedast.Eq:
		g.emitEq(n)

	case *typedast.Call:
		g.emitCall(n)

	case *typedast.Dispatch:
		g.emitDispatch(n)

	case *typedast.StaticDispatch:
		g.emitStaticDispatch(n)

	default:
		panic("emitExpr: unhandled typed expression")
	}
}

// unboxInt loads a boxed Int object's value word into dst.
func (g *Generator) unboxInt(dst, src riscv.Reg) {
	g.text.Lw(dst, riscv.Mem(attrByteOffset(0), src))
}

// boxInt wraps the raw integer in src (== ResultReg, by convention)
// into a freshly copied Int object.
func (g *Generator) boxInt(src riscv.Reg) {
	b := g.text
	slot := g.pushScratch(src)
	b.La(riscv.ResultReg, protoLabel("Int"))
	g.pushControlLink()
	b.Jal("Object.copy")
	g.popControlLink()
	g.popInto(riscv.ArgScratch, slot)
	b.Sw(riscv.ArgScratch, riscv.Mem(attrByteOffset(0), riscv.ResultReg))
}

// boxBool turns the 0/1 value in src into a Bool object in
// ResultReg. Unlike boxInt, COOL's two boolean values are canonical
// singletons (bool_const0/bool_const1), so no copy is needed: this
// just selects the matching constant.
func (g *Generator) boxBool(src riscv.Reg) {
	b := g.text
	doneLabel := g.labels.Next("bool_box_done")
	falseLabel := g.labels.Next("bool_box_false")
	b.Beqz(src, falseLabel)
	b.La(riscv.ResultReg, "bool_const1")
	b.J(doneLabel)
	b.Label(falseLabel)
	b.La(riscv.ResultReg, "bool_const0")
	b.Label(doneLabel)
}

func (g *Generator) emitObjectRef(name string) {
	b := g.text
	if name == "self" {
		b.Mv(riscv.ResultReg, riscv.SelfReg)
		return
	}
	if loc, ok := g.scope.lookup(name); ok {
		b.Lw(riscv.ResultReg, loc.addr(g.depth))
		return
	}
	for _, a := range g.table.AllAttributes(g.selfClass) {
		if a.Name == name {
			b.Lw(riscv.ResultReg, riscv.Mem(attrByteOffset(a.Slot), riscv.SelfReg))
			return
		}
	}
	panic("emitObjectRef: unresolved identifier: " + name)
}

func (g *Generator) storeTo(name string) {
	b := g.text
	if loc, ok := g.scope.lookup(name); ok {
		b.Sw(riscv.ResultReg, loc.addr(g.depth))
		return
	}
	flat := g.table.AllAttributes(g.selfClass)
	for _, a := range flat {
		if a.Name == name {
			b.Sw(riscv.ResultReg, riscv.Mem(attrByteOffset(a.Slot), riscv.SelfReg))
			return
		}
	}
	panic("storeTo: unresolved identifier: " + name)
}

func (g *Generator) emitIf(n *typedast.If) {
	b := g.text
	elseLabel := g.labels.Next("if_else")
	endLabel := g.labels.Next("if_end")

	g.emitExpr(n.Cond)
	g.unboxBool(riscv.ResultReg, riscv.ResultReg)
	b.Beqz(riscv.ResultReg, elseLabel)
	g.emitExpr(n.Then)
	b.J(endLabel)
	b.Label(elseLabel)
	g.emitExpr(n.Else)
	b.Label(endLabel)
}

func (g *Generator) emitWhile(n *typedast.While) {
	b := g.text
	topLabel := g.labels.Next("while_top")
	endLabel := g.labels.Next("while_end")

	b.Label(topLabel)
	g.emitExpr(n.Cond)
	g.unboxBool(riscv.ResultReg, riscv.ResultReg)
	b.Beqz(riscv.ResultReg, endLabel)
	g.emitExpr(n.Body)
	b.J(topLabel)
	b.Label(endLabel)
	b.Li(riscv.ResultReg, 0) // while always evaluates to void
}

func (g *Generator) unboxBool(dst, src riscv.Reg) {
	g.text.Lw(dst, riscv.Mem(attrByteOffset(0), src))
}

func (g *Generator) emitLet(n *typedast.Let) {
	g.scope.push()
	for _, bind := range n.Bindings {
		if bind.Init != nil {
			g.emitExpr(bind.Init)
		} else {
			g.emitDefaultValue(bind.Type)
		}
		g.pushLocal(bind.Name)
	}
	g.emitExpr(n.Body)
	g.popLocals(len(n.Bindings))
	g.scope.pop()
}

func (g *Generator) emitCase(n *typedast.Case) {
	b := g.text
	endLabel := g.labels.Next("case_end")
	voidLabel := g.labels.Next("case_void")
	noMatchLabel := g.labels.Next("case_no_match")

	g.emitExpr(n.Subject)
	b.Beqz(riscv.ResultReg, voidLabel)
	b.Lw(riscv.ArgScratch, riscv.Mem(0, riscv.ResultReg)) // runtime tag

	for _, arm := range n.Arms {
		lo, hi := g.table.TagRange(arm.BranchType)
		nextLabel := g.labels.Next("case_next")
		b.Li(riscv.ArgScratch2, int32(lo))
		b.Blt(riscv.ArgScratch, riscv.ArgScratch2, nextLabel)
		b.Li(riscv.ArgScratch2, int32(hi))
		b.Blt(riscv.ArgScratch2, riscv.ArgScratch, nextLabel)

		g.scope.push()
		g.pushLocal(arm.Name)
		g.emitExpr(arm.Body)
		g.popLocals(1)
		g.scope.pop()
		b.J(endLabel)
		b.Label(nextLabel)
	}
	b.J(noMatchLabel)

	b.Label(voidLabel)
	g.emitCaseAbortCall("_case_abort_on_void", n.Pos.Line, "")
	b.J(endLabel)

	b.Label(noMatchLabel)
	g.emitCaseAbortCall("_case_abort_no_match", n.Pos.Line, riscv.ArgScratch)
	b.Label(endLabel)
}

// emitCaseAbortCall invokes one of the externally-linked case-abort
// runtime functions, pushing self, the control link, the source
// file's name, and the failing line number, in that order, matching
// CoolCodegen::ExpressionCodegen's own abort sequence. classNameTag,
// when non-empty, is the register holding the unmatched subject's
// runtime tag; its dynamic class-name pointer (read from
// class_nameTab) is pushed as a fourth argument for _case_abort_no_match.
func (g *Generator) emitCaseAbortCall(symbol string, line int, classNameTag riscv.Reg) {
	b := g.text
	b.Mv(riscv.ResultReg, riscv.SelfReg)
	g.pushReg(riscv.ResultReg)
	g.pushControlLink()
	b.La(riscv.ArgScratch2, fileNameLabel)
	g.pushReg(riscv.ArgScratch2)
	b.La(riscv.ArgScratch2, constpool.IntLabel(g.pool.IntIndex(int32(line))))
	g.pushReg(riscv.ArgScratch2)

	slots := 4 // self, control link, file name, line
	if classNameTag != "" {
		b.La(riscv.ArgScratch2, "class_nameTab")
		b.Instr("slli", string(riscv.DispatchScratch), string(classNameTag), "2")
		b.Add(riscv.ArgScratch2, riscv.ArgScratch2, riscv.DispatchScratch)
		b.Lw(riscv.ArgScratch2, riscv.Mem(0, riscv.ArgScratch2))
		g.pushReg(riscv.ArgScratch2)
		slots++
	}

	b.Jal(symbol)
	g.popLocals(slots)
}

func (g *Generator) emitNew(newType int) {
	b := g.text
	if newType != typedast.SelfType {
		name := g.table.Name(newType)
		b.La(riscv.ResultReg, protoLabel(name))
		g.pushControlLink()
		b.Jal("Object.copy")
		g.popControlLink()
		g.pushControlLink()
		b.Jal(initLabel(name))
		g.popControlLink()
		return
	}

	b.Lw(riscv.DispatchScratch, riscv.Mem(0, riscv.SelfReg))
	b.La(riscv.ArgScratch, "class_objTab")
	b.Instr("slli", string(riscv.DispatchScratch), string(riscv.DispatchScratch), "3")
	b.Add(riscv.DispatchScratch, riscv.ArgScratch, riscv.DispatchScratch)
	b.Lw(riscv.ArgScratch2, riscv.Mem(4, riscv.DispatchScratch)) // init routine
	slot := g.pushScratch(riscv.ArgScratch2)
	b.Lw(riscv.ResultReg, riscv.Mem(0, riscv.DispatchScratch)) // prototype
	g.pushControlLink()
	b.Jal("Object.copy")
	g.popControlLink()
	g.popInto(riscv.ArgScratch2, slot)
	g.pushControlLink()
	b.Jalr(riscv.ArgScratch2)
	g.popControlLink()
}

func (g *Generator) emitBinOp(n *typedast.BinOp) {
	b := g.text
	g.emitExpr(n.Left)
	slot := g.pushScratch(riscv.ResultReg)
	g.emitExpr(n.Right)
	g.unboxInt(riscv.ArgScratch2, riscv.ResultReg)
	g.popInto(riscv.ArgScratch, slot)
	g.unboxInt(riscv.ArgScratch, riscv.ArgScratch)

	switch n.Op {
	case typedast.Add:
		b.Add(riscv.ResultReg, riscv.ArgScratch, riscv.ArgScratch2)
	case typedast.Sub:
		b.Sub(riscv.ResultReg, riscv.ArgScratch, riscv.ArgScratch2)
	case typedast.Mul:
		b.Mul(riscv.ResultReg, riscv.ArgScratch, riscv.ArgScratch2)
	case typedast.Div:
		b.Div(riscv.ResultReg, riscv.ArgScratch, riscv.ArgScratch2)
	}
	g.boxInt(riscv.ResultReg)
}

func (g *Generator) emitCompare(n *typedast.Compare) {
	b := g.text
	g.emitExpr(n.Left)
	slot := g.pushScratch(riscv.ResultReg)
	g.emitExpr(n.Right)
	g.unboxInt(riscv.ArgScratch2, riscv.ResultReg)
	g.popInto(riscv.ArgScratch, slot)
	g.unboxInt(riscv.ArgScratch, riscv.ArgScratch)

	switch n.Op {
	case typedast.Less:
		b.Slt(riscv.ResultReg, riscv.ArgScratch, riscv.ArgScratch2)
	case typedast.LessEqual:
		// a <= b is !(b < a); RV32I has no set-less-or-equal instruction.
		b.Slt(riscv.ResultReg, riscv.ArgScratch2, riscv.ArgScratch)
		b.Xori(riscv.ResultReg, riscv.ResultReg, 1)
	}
	g.boxBool(riscv.ResultReg)
}

// emitEq emits `=`. n.Kind (computed by the type checker) only drives
// the static "illegal comparison with a basic type" diagnostic; it is
// never consulted here. A basic value can reach an equality test
// boxed under a wider static type (an Int held in an Object-typed
// binding, say), so every comparison dispatches on the *runtime* tag:
// pointer equality first, then void handling, then a tag load that
// picks the Int/Bool value compare, the String byte-compare loop, or
// falls back to reference identity (already resolved false by the
// pointer check above).
func (g *Generator) emitEq(n *typedast.Eq) {
	b := g.text
	g.emitExpr(n.Left)
	slot := g.pushScratch(riscv.ResultReg)
	g.emitExpr(n.Right)
	b.Mv(riscv.ArgScratch2, riscv.ResultReg)
	g.popInto(riscv.ArgScratch, slot)

	lhs, rhs := riscv.ArgScratch, riscv.ArgScratch2
	tagL, tagR := riscv.Reg("t2"), riscv.Reg("t3")
	scratch := riscv.Reg("t4")

	trueLabel := g.labels.Next("eq_true")
	falseLabel := g.labels.Next("eq_false")
	endLabel := g.labels.Next("eq_end")
	lhsVoidLabel := g.labels.Next("eq_lhs_void")
	afterVoidLabel := g.labels.Next("eq_after_void")
	checkValueLabel := g.labels.Next("eq_check_value")
	checkStringLabel := g.labels.Next("eq_check_string")
	strLoopLabel := g.labels.Next("eq_str_loop")

	b.Sub(scratch, lhs, rhs)
	b.Seqz(scratch, scratch)
	b.Bnez(scratch, trueLabel)

	b.Beqz(lhs, lhsVoidLabel)
	b.Beqz(rhs, falseLabel)
	b.J(afterVoidLabel)
	b.Label(lhsVoidLabel)
	b.Beqz(rhs, trueLabel)
	b.J(falseLabel)
	b.Label(afterVoidLabel)

	b.Lw(tagL, riscv.Mem(0, lhs))
	b.Lw(tagR, riscv.Mem(0, rhs))
	b.Sub(scratch, tagL, tagR)
	b.Bnez(scratch, falseLabel)

	b.Li(scratch, int32(g.tag("Int")))
	b.Sub(scratch, tagL, scratch)
	b.Beqz(scratch, checkValueLabel)
	b.Li(scratch, int32(g.tag("Bool")))
	b.Sub(scratch, tagL, scratch)
	b.Beqz(scratch, checkValueLabel)
	b.Li(scratch, int32(g.tag("String")))
	b.Sub(scratch, tagL, scratch)
	b.Beqz(scratch, checkStringLabel)
	b.J(falseLabel) // same tag, distinct pointers, not a basic type: unequal references

	b.Label(checkValueLabel)
	b.Lw(scratch, riscv.Mem(attrByteOffset(0), lhs))
	b.Lw(tagR, riscv.Mem(attrByteOffset(0), rhs))
	b.Bne(scratch, tagR, falseLabel)
	b.J(trueLabel)

	b.Label(checkStringLabel)
	b.Lw(scratch, riscv.Mem(attrByteOffset(0), lhs)) // length-object pointer
	b.Lw(tagR, riscv.Mem(attrByteOffset(0), rhs))
	b.Lw(scratch, riscv.Mem(attrByteOffset(0), scratch)) // unboxed length
	b.Lw(tagR, riscv.Mem(attrByteOffset(0), tagR))
	b.Bne(scratch, tagR, falseLabel)

	lhsChar, rhsChar := riscv.Reg("t5"), riscv.DispatchScratch
	b.Addi(lhsChar, lhs, int32(attrByteOffset(1)))
	b.Addi(rhsChar, rhs, int32(attrByteOffset(1)))
	b.Label(strLoopLabel)
	b.Beqz(scratch, trueLabel) // length counted down to zero: every byte matched
	b.Lb(tagL, riscv.Mem(0, lhsChar))
	b.Lb(tagR, riscv.Mem(0, rhsChar))
	b.Bne(tagL, tagR, falseLabel)
	b.Addi(lhsChar, lhsChar, 1)
	b.Addi(rhsChar, rhsChar, 1)
	b.Addi(scratch, scratch, -1)
	b.J(strLoopLabel)

	b.Label(trueLabel)
	b.La(riscv.ResultReg, "bool_const1")
	b.J(endLabel)
	b.Label(falseLabel)
	b.La(riscv.ResultReg, "bool_const0")
	b.Label(endLabel)
}

// emitArgsAndTarget evaluates the call's arguments right-to-left
// (each pushed as it's computed) and then the target, leaving the
// target's value in a0 ready for a call, and returns the argument
// count so the caller can clean the stack up afterward.
func (g *Generator) emitArgsAndTarget(target typedast.Expr, args []typedast.Expr) int {
	for i := len(args) - 1; i >= 0; i-- {
		g.emitExpr(args[i])
		g.pushLocalAnon()
	}
	if target != nil {
		g.emitExpr(target)
	} else {
		g.text.Mv(riscv.ResultReg, riscv.SelfReg)
	}
	return len(args)
}

// pushLocalAnon reserves a stack slot for an evaluated argument
// without registering a name in scope; only the depth accounting
// matters, since arguments are addressed by the callee via fixed
// formal offsets, not by a name lookup in the caller.
func (g *Generator) pushLocalAnon() {
	g.pushReg(riscv.ResultReg)
}

// pushReg pushes an arbitrary register's current value as an anonymous
// stack slot, used for runtime-call arguments that don't flow through
// ResultReg (e.g. the case-abort calls' file-name and line operands).
func (g *Generator) pushReg(r riscv.Reg) {
	b := g.text
	b.Addi(riscv.StackPointer, riscv.StackPointer, -riscv.FrameSlotBytes)
	g.depth++
	b.Sw(r, riscv.Mem(0, riscv.StackPointer))
}

func (g *Generator) emitCall(n *typedast.Call) {
	b := g.text
	argc := g.emitArgsAndTarget(nil, n.Args)
	// Implicit-self calls never need a void check: self is always a
	// live object for the duration of the enclosing method.
	b.Lw(riscv.DispatchScratch, riscv.Mem(8, riscv.ResultReg))
	slot := methodSlot(g.table.AllMethods(n.StaticClass), n.Name)
	b.Lw(riscv.DispatchScratch, riscv.Mem(slot*riscv.FrameSlotBytes, riscv.DispatchScratch))
	g.pushControlLink()
	b.Jalr(riscv.DispatchScratch)
	g.popControlLink()
	g.popLocals(argc)
}

func (g *Generator) emitDispatch(n *typedast.Dispatch) {
	b := g.text
	argc := g.emitArgsAndTarget(n.Target, n.Args)
	g.emitVoidCheck("dispatch_ok")

	b.Lw(riscv.DispatchScratch, riscv.Mem(8, riscv.ResultReg))
	slot := methodSlot(g.table.AllMethods(n.TargetStaticType), n.Name)
	b.Lw(riscv.DispatchScratch, riscv.Mem(slot*riscv.FrameSlotBytes, riscv.DispatchScratch))
	g.pushControlLink()
	b.Jalr(riscv.DispatchScratch)
	g.popControlLink()
	g.popLocals(argc)
}

func (g *Generator) emitStaticDispatch(n *typedast.StaticDispatch) {
	b := g.text
	argc := g.emitArgsAndTarget(n.Target, n.Args)
	g.emitVoidCheck("static_dispatch_ok")

	name := g.table.Name(n.DispatchClass)
	b.La(riscv.DispatchScratch, dispTabLabel(name))
	slot := methodSlot(g.table.AllMethods(n.DispatchClass), n.Name)
	b.Lw(riscv.DispatchScratch, riscv.Mem(slot*riscv.FrameSlotBytes, riscv.DispatchScratch))
	g.pushControlLink()
	b.Jalr(riscv.DispatchScratch)
	g.popControlLink()
	g.popLocals(argc)
}

// emitVoidCheck aborts if ResultReg (the dispatch target) is void,
// falling through to the caller's code otherwise.
func (g *Generator) emitVoidCheck(labelKind string) {
	b := g.text
	okLabel := g.labels.Next(labelKind)
	b.Bnez(riscv.ResultReg, okLabel)
	b.J(abortDispatchVoid)
	b.Label(okLabel)
}

// methodSlot finds name's dispatch-table slot in a class's flattened
// method layout. The type checker guarantees the name resolves, since
// it would have rejected the call otherwise.
func methodSlot(flat []classtable.FlatMethod, name string) int {
	for _, m := range flat {
		if m.Name == name {
			return m.Slot
		}
	}
	panic("methodSlot: method not found after type checking: " + name)
}
