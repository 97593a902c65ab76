package riscv

import (
	"strings"
	"testing"
)

func TestBuilderEmitsDirectivesAndInstructions(t *testing.T) {
	b := NewBuilder()
	b.Section("data")
	b.Global("Main_protObj")
	b.Align(2)
	b.Label("Main_protObj")
	b.Word(5)
	b.WordLabel("Main_dispTab")
	b.Byte(0)
	b.AsciiZ(`say "hi"`)
	b.Li(ResultReg, 42)
	b.Mv(SelfReg, ResultReg)
	b.Sw(ResultReg, Mem(-4, SelfReg))
	b.Lw(ResultReg, Mem(0, StackPointer))
	b.Addi(StackPointer, StackPointer, -8)
	b.Jal("Object.copy")
	b.Ret()

	out := b.String()
	for _, want := range []string{
		"\t.data\n",
		"\t.globl\tMain_protObj\n",
		"\t.p2align\t2\n",
		"Main_protObj:\n",
		"\t.word\t5\n",
		"\t.word\tMain_dispTab\n",
		"\t.byte\t0\n",
		`say \"hi\"`,
		"li\ta0, 42\n",
		"mv\ts0, a0\n",
		"sw\ta0, -4(s0)\n",
		"lw\ta0, 0(sp)\n",
		"addi\tsp, sp, -8\n",
		"jal\tObject.copy\n",
		"\tret\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q; got:\n%s", want, out)
		}
	}
}

func TestMemFormatsOffsetBase(t *testing.T) {
	if got, want := Mem(-4, SelfReg), "-4(s0)"; got != want {
		t.Errorf("Mem(-4, SelfReg) = %q, want %q", got, want)
	}
	if got, want := Mem(0, StackPointer), "0(sp)"; got != want {
		t.Errorf("Mem(0, StackPointer) = %q, want %q", got, want)
	}
}

func TestLabelCounterUniquePerKind(t *testing.T) {
	c := NewLabelCounter()
	if got, want := c.Next("if_else"), "if_else_0"; got != want {
		t.Errorf("first if_else label = %q, want %q", got, want)
	}
	if got, want := c.Next("if_else"), "if_else_1"; got != want {
		t.Errorf("second if_else label = %q, want %q", got, want)
	}
	if got, want := c.Next("while_body"), "while_body_0"; got != want {
		t.Errorf("first while_body label = %q, want %q", got, want)
	}
}
