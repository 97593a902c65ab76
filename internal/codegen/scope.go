package codegen

import "github.com/coolc/coolc/internal/riscv"

// locKind identifies where a named binding lives.
type locKind int

const (
	locLocal locKind = iota // a let/case binding, addressed relative to the live stack depth
	locFormal               // a method parameter, pushed by the caller before the call
	locAttr                 // an instance attribute, addressed relative to self
)

// location is the storage binding for one in-scope name.
type location struct {
	kind  locKind
	index int // slot index for locLocal/locFormal; attribute slot for locAttr
}

// scope is a lexical chain of name->location maps. New blocks (lets,
// case arms, method bodies) push a child frame; leaving the block
// pops it. Lookups walk outward, matching COOL's normal nested-scope
// shadowing rule.
type scope struct {
	frames []map[string]location
}

func newScope() *scope {
	return &scope{frames: []map[string]location{make(map[string]location)}}
}

func (s *scope) push() { s.frames = append(s.frames, make(map[string]location)) }

func (s *scope) pop() { s.frames = s.frames[:len(s.frames)-1] }

func (s *scope) define(name string, loc location) {
	s.frames[len(s.frames)-1][name] = loc
}

func (s *scope) lookup(name string) (location, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if loc, ok := s.frames[i][name]; ok {
			return loc, true
		}
	}
	return location{}, false
}

// addr computes the operand string (e.g. "12(sp)") for loc given the
// method's current live-stack depth (words pushed since the
// post-prologue baseline) and the attribute-offset base register.
//
// Activation record, anchored at the frame pointer (the control-link
// slot's own address, captured by the callee on entry):
//
//	4*(i+1)(fp)   formal i (i=0 is the first declared parameter),
//	              the control link itself lives at 0(fp)
//	-4(fp)        saved ra
//	-8(fp)        saved self (old s0)
//	(locals pushed below -8(fp), each addi sp,sp,-4 as it comes into scope)
//
// Formals are addressed directly off the frame pointer, fixed for the
// whole activation regardless of how many locals are later pushed;
// only locLocal needs the live-depth term, since its slot's distance
// from the (moving) stack pointer shrinks as outer bindings go out of
// scope.
func (loc location) addr(now int) string {
	switch loc.kind {
	case locFormal:
		return riscv.Mem(riscv.FrameSlotBytes*(loc.index+1), riscv.ControlLink)
	case locLocal:
		return riscv.Mem(4*(now-loc.index-1), riscv.StackPointer)
	case locAttr:
		return riscv.Mem(attrByteOffset(loc.index), riscv.SelfReg)
	}
	panic("unreachable location kind")
}

// frameHeaderBytes is the fixed prologue reservation below the frame
// pointer: saved self (old s0) and saved ra, one word each.
const frameHeaderBytes = 8

// attrByteOffset returns an attribute's byte offset from an object's
// base address: the three-word header (tag, size, dispatch table)
// precedes every attribute.
func attrByteOffset(slot int) int { return (3 + slot) * 4 }
