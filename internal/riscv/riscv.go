// Package riscv provides low-level RISC-V 32-bit assembly emission
// primitives: register naming, directive helpers, and a per-compile
// label counter. It knows nothing about COOL; internal/codegen builds
// the object model and expression translation on top of it.
package riscv

import (
	"fmt"
	"strconv"
	"strings"
)

// Reg names a RISC-V register by its ABI name.
type Reg string

// Registers the code generator relies on by fixed role, matching the
// reference compiler's register-discipline notes: the result of every
// expression is left in ResultReg, self lives in SelfReg for the
// whole activation, and DispatchScratch is never live across a call
// so the dispatch sequence can clobber it freely.
const (
	ResultReg       Reg = "a0" // every expression's value on exit
	SelfReg         Reg = "s0" // self, stable across the whole method body
	DispatchScratch Reg = "t6" // dispatch-table / prototype scratch, caller-saved
	StackPointer    Reg = "sp"
	ReturnAddr      Reg = "ra"
	ControlLink     Reg = "s1" // frame pointer; every call pushes the caller's value before jal/jalr
	ArgScratch      Reg = "t0" // general expression-evaluation scratch
	ArgScratch2     Reg = "t1"
)

// FrameSlotBytes is the width of one stack slot.
const FrameSlotBytes = 4

// Builder accumulates assembly text. Every method on it appends to an
// internal strings.Builder; String() returns the finished listing.
type Builder struct {
	sb strings.Builder
}

// NewBuilder returns an empty assembly builder.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) String() string { return b.sb.String() }

// Raw appends s verbatim followed by a newline; used for the rare
// line that doesn't fit the helpers below.
func (b *Builder) Raw(s string) { b.sb.WriteString(s); b.sb.WriteByte('\n') }

// Comment appends a `# text` line.
func (b *Builder) Comment(format string, args ...interface{}) {
	b.sb.WriteString("\t# ")
	fmt.Fprintf(&b.sb, format, args...)
	b.sb.WriteByte('\n')
}

// Section emits a `.text` / `.data` style directive.
func (b *Builder) Section(name string) {
	fmt.Fprintf(&b.sb, "\t.%s\n", name)
}

// Global emits `.globl name`.
func (b *Builder) Global(name string) {
	fmt.Fprintf(&b.sb, "\t.globl\t%s\n", name)
}

// Align emits a `.p2align n` directive (word alignment before a
// prototype object or table, matching the reference compiler's object
// layout requirement that every object begins word-aligned).
func (b *Builder) Align(p2 int) {
	fmt.Fprintf(&b.sb, "\t.p2align\t%d\n", p2)
}

// Label emits a bare `name:` line.
func (b *Builder) Label(name string) {
	fmt.Fprintf(&b.sb, "%s:\n", name)
}

// Word emits a `.word` directive with an integer literal.
func (b *Builder) Word(v int32) {
	fmt.Fprintf(&b.sb, "\t.word\t%d\n", v)
}

// WordLabel emits a `.word` directive referencing a label (used for
// dispatch-table pointers, class-name pointers, and the tag/size
// header of a prototype object cannot use this — those are plain
// ints; this is for pointer-valued words).
func (b *Builder) WordLabel(label string) {
	fmt.Fprintf(&b.sb, "\t.word\t%s\n", label)
}

// Byte emits a `.byte` directive.
func (b *Builder) Byte(v int) {
	fmt.Fprintf(&b.sb, "\t.byte\t%d\n", v)
}

// AsciiZ emits a NUL-terminated string literal via `.string`, with Go
// string-literal quoting so embedded quotes/backslashes survive.
func (b *Builder) AsciiZ(s string) {
	fmt.Fprintf(&b.sb, "\t.string\t%s\n", strconv.Quote(s))
}

// Instr emits a single instruction with its operands comma-joined.
func (b *Builder) Instr(op string, operands ...string) {
	if len(operands) == 0 {
		fmt.Fprintf(&b.sb, "\t%s\n", op)
		return
	}
	fmt.Fprintf(&b.sb, "\t%s\t%s\n", op, strings.Join(operands, ", "))
}

// Mem formats an offset(base) operand, e.g. Mem(-4, SelfReg) -> "-4(s0)".
func Mem(offset int, base Reg) string {
	return fmt.Sprintf("%d(%s)", offset, base)
}

// --- Instruction shorthands -------------------------------------------------

func (b *Builder) Li(dst Reg, imm int32)   { b.Instr("li", string(dst), strconv.Itoa(int(imm))) }
func (b *Builder) Mv(dst, src Reg)         { b.Instr("mv", string(dst), string(src)) }
func (b *Builder) Lw(dst Reg, mem string)  { b.Instr("lw", string(dst), mem) }
func (b *Builder) Lb(dst Reg, mem string)  { b.Instr("lb", string(dst), mem) }
func (b *Builder) Sw(src Reg, mem string)  { b.Instr("sw", string(src), mem) }
func (b *Builder) La(dst Reg, label string) { b.Instr("la", string(dst), label) }
func (b *Builder) Addi(dst, src Reg, imm int32) {
	b.Instr("addi", string(dst), string(src), strconv.Itoa(int(imm)))
}
func (b *Builder) Add(dst, a, c Reg) { b.Instr("add", string(dst), string(a), string(c)) }
func (b *Builder) Sub(dst, a, c Reg) { b.Instr("sub", string(dst), string(a), string(c)) }
func (b *Builder) Mul(dst, a, c Reg) { b.Instr("mul", string(dst), string(a), string(c)) }
func (b *Builder) Div(dst, a, c Reg) { b.Instr("div", string(dst), string(a), string(c)) }
func (b *Builder) Neg(dst, src Reg)  { b.Instr("neg", string(dst), string(src)) }
func (b *Builder) Xori(dst, src Reg, imm int32) {
	b.Instr("xori", string(dst), string(src), strconv.Itoa(int(imm)))
}
func (b *Builder) Slt(dst, a, c Reg)  { b.Instr("slt", string(dst), string(a), string(c)) }
func (b *Builder) Sle(dst, a, c Reg)  { b.Instr("sle", string(dst), string(a), string(c)) }
func (b *Builder) Seqz(dst, src Reg)  { b.Instr("seqz", string(dst), string(src)) }
func (b *Builder) Beqz(src Reg, label string) { b.Instr("beqz", string(src), label) }
func (b *Builder) Bnez(src Reg, label string) { b.Instr("bnez", string(src), label) }
func (b *Builder) Blt(a, c Reg, label string) {
	b.Instr("blt", string(a), string(c), label)
}
func (b *Builder) Bge(a, c Reg, label string) {
	b.Instr("bge", string(a), string(c), label)
}
func (b *Builder) Bne(a, c Reg, label string) {
	b.Instr("bne", string(a), string(c), label)
}
func (b *Builder) J(label string)    { b.Instr("j", label) }
func (b *Builder) Jal(label string)  { b.Instr("jal", label) }
func (b *Builder) Jalr(target Reg)   { b.Instr("jalr", string(target)) }
func (b *Builder) Ret()              { b.Instr("ret") }

// LabelCounter hands out unique labels of the form "<prefix>_<n>" per
// prefix, e.g. "if_else_3", "while_top_3", "case_next_3", so every
// control-flow construct's labels are distinct even across nested and
// repeated constructs within one method.
type LabelCounter struct {
	counts map[string]int
}

// NewLabelCounter returns an empty counter.
func NewLabelCounter() *LabelCounter { return &LabelCounter{counts: make(map[string]int)} }

// Next returns the next unique label for kind.
func (c *LabelCounter) Next(kind string) string {
	n := c.counts[kind]
	c.counts[kind] = n + 1
	return fmt.Sprintf("%s_%d", kind, n)
}
