package codegen

import "github.com/coolc/coolc/internal/riscv"

// abortDispatchVoid is a local fallback for dispatch on a void
// receiver. Unlike the two case-abort conditions (spec.md §6 names
// `_case_abort_on_void`/`_case_abort_no_match` as runtime entry
// points with a documented argument convention), dispatch-on-void has
// no such documented external symbol, so it exits with a distinct
// status code directly rather than calling into unspecified runtime
// support.
const abortDispatchVoid = "_abort_dispatch_void"

func (g *Generator) emitRuntimeAborts() {
	g.emitAbort(abortDispatchVoid, 1)
}

func (g *Generator) emitAbort(label string, code int32) {
	b := g.text
	b.Label(label)
	b.Li(riscv.Reg("a7"), 93)
	b.Li(riscv.ResultReg, code)
	b.Instr("ecall")
}
