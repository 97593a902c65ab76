// Package codegen translates a finalised class table and its typed
// method bodies into RISC-V 32-bit assembly text: the object model
// (prototypes, dispatch tables, name/object tables), per-class init
// routines, and per-method activation records and expression code.
package codegen

import (
	"github.com/coolc/coolc/internal/builtins"
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/constpool"
	"github.com/coolc/coolc/internal/riscv"
	"github.com/coolc/coolc/internal/typedast"
)

// Generator holds the state threaded through one compilation unit's
// code generation: the finalised class table, the constant pool
// accumulated while walking method bodies, and the two assembly
// sections being built up.
type Generator struct {
	table    *classtable.Table
	pool     *constpool.Pool
	filename string

	data *riscv.Builder
	text *riscv.Builder

	labels *riscv.LabelCounter
	scope  *scope
	depth  int

	selfClass int // enclosing class of the method currently being emitted
}

// New creates a Generator over a finalised class table, walking every
// attribute initializer and method body once up front to intern their
// literal constants so the constant pool's layout is known before any
// code is emitted (constants must precede their first reference in
// the listing, matching cw4's two-pass StaticConstants discipline).
func New(table *classtable.Table, pool *constpool.Pool, filename string) *Generator {
	g := &Generator{
		table:    table,
		pool:     pool,
		filename: filename,
		data:     riscv.NewBuilder(),
		text:     riscv.NewBuilder(),
		labels:   riscv.NewLabelCounter(),
	}
	g.internAllConstants()
	return g
}

func (g *Generator) internAllConstants() {
	for i := 0; i < g.table.NumClasses(); i++ {
		rec := g.table.Record(i)
		for _, a := range rec.Attributes {
			if a.Init != nil {
				internConstants(g.pool, a.Init)
			}
		}
		for _, m := range rec.Methods {
			if m.Body != nil {
				internConstants(g.pool, m.Body)
			}
		}
	}
}

// Generate emits the full assembly listing: the data section (tables,
// prototypes, constants) followed by the text section (init routines
// and method bodies, plus the program entry point).
func (g *Generator) Generate() string {
	g.data.Section("data")
	g.emitFileNameLabel()
	g.emitClassNameTable()
	g.emitClassObjectTable()
	for _, idx := range g.table.EmissionOrder() {
		g.emitDispatchTable(idx)
	}
	for _, idx := range g.table.EmissionOrder() {
		g.emitPrototype(idx)
	}
	g.emitConstants()

	g.text.Section("text")
	g.emitEntryPoint()
	g.emitRuntimeAborts()
	for _, idx := range g.table.EmissionOrder() {
		g.emitInit(idx)
	}
	for _, idx := range g.table.EmissionOrder() {
		if builtins.IsBuiltin(g.table.Name(idx)) {
			continue
		}
		rec := g.table.Record(idx)
		for _, m := range rec.Methods {
			g.emitMethod(idx, m)
		}
	}

	return g.data.String() + g.text.String()
}

// emitEntryPoint emits `main`, the process entry point: allocate a
// Main object by copying its prototype with Object.copy, run its
// _init, then call main() on it directly —
// the static type is known so no dispatch-table lookup is needed.
func (g *Generator) emitEntryPoint() {
	b := g.text
	b.Global("main")
	b.Label("main")
	if _, ok := g.table.Index("Main"); !ok {
		b.Comment("no Main class; nothing to run")
		b.Li(riscv.ResultReg, 0)
		b.Ret()
		return
	}
	b.La(riscv.ResultReg, protoLabel("Main"))
	g.depth = 0
	g.pushControlLink()
	b.Jal("Object.copy")
	g.popControlLink()
	g.pushControlLink()
	b.Jal(initLabel("Main"))
	g.popControlLink()
	g.pushControlLink()
	b.Jal(methodLabel("Main", "main"))
	g.popControlLink()
	b.Li(riscv.Reg("a7"), 93) // program exit, RISC-V Linux syscall convention
	b.Instr("ecall")
}

// internConstants walks a typed expression tree recording every
// literal it contains into pool, so the constant pool's emission
// order (and therefore every label) is fixed before any method is
// generated.
func internConstants(pool *constpool.Pool, e typedast.Expr) {
	walkConstants(pool, e)
}
