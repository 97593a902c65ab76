package codegen

import (
	"github.com/coolc/coolc/internal/constpool"
)

// Object header layout, three words preceding every object's
// attributes: tag, total size in words (including the header), and a
// pointer to the class's dispatch table. Int, Bool, and String add
// their own built-in slots after the header; every user class's
// attributes follow in AllAttributes order.
const headerWords = 3

const fileNameLabel = "_filename"

// emitFileNameLabel writes the source file's name as a bare
// NUL-terminated string, not a boxed COOL String object: the case-
// abort runtime calls (`_case_abort_on_void`/`_case_abort_no_match`,
// see emitCase) load its address directly as a diagnostic argument,
// matching cw4's get_file_name_label/emit_load_address convention.
func (g *Generator) emitFileNameLabel() {
	b := g.data
	b.Align(2)
	b.Label(fileNameLabel)
	b.AsciiZ(g.filename)
}

func protoLabel(class string) string { return class + "_protObj" }
func dispTabLabel(class string) string { return class + "_dispTab" }
func initLabel(class string) string  { return class + "_init" }
func methodLabel(class, name string) string { return class + "." + name }

// emitConstants writes the static constant pool: every interned int,
// string, and bool object, each laid out with the same three-word
// header as any other object (cw4's StaticConstants emits these as
// ordinary objects of the matching built-in class).
func (g *Generator) emitConstants() {
	b := g.data

	for i, v := range g.pool.Ints() {
		b.Align(2)
		b.Label(constpool.IntLabel(i))
		b.Word(int32(g.tag("Int")))
		b.Word(4)
		b.WordLabel(dispTabLabel("Int"))
		b.Word(v)
	}

	for _, val := range [2]bool{false, true} {
		if (val && !g.pool.BoolTrueUsed()) || (!val && !g.pool.BoolFalseUsed()) {
			continue
		}
		b.Align(2)
		b.Label(constpool.BoolLabel(val))
		b.Word(int32(g.tag("Bool")))
		b.Word(4)
		b.WordLabel(dispTabLabel("Bool"))
		if val {
			b.Word(1)
		} else {
			b.Word(0)
		}
	}

	for i, s := range g.pool.Strings() {
		g.emitStringConstant(i, s)
	}
}

// emitStringConstant lays out one String object: header, a pointer to
// the interned Int constant holding its length, then the raw bytes
// themselves NUL-terminated and word-padded in place (cw4's
// StaticConstants stores the character data inline rather than via a
// second indirection).
func (g *Generator) emitStringConstant(idx int, s string) {
	b := g.data
	lengthIdx := g.pool.IntIndex(int32(len(s)))
	dataWords := (len(s) + 1 + 3) / 4 // +1 for the NUL terminator, rounded up to words
	if dataWords == 0 {
		dataWords = 1
	}

	b.Align(2)
	b.Label(constpool.StringLabel(idx))
	b.Word(int32(g.tag("String")))
	b.Word(int32(headerWords + 1 + dataWords))
	b.WordLabel(dispTabLabel("String"))
	b.WordLabel(constpool.IntLabel(lengthIdx))
	b.AsciiZ(s)
	pad := dataWords*4 - (len(s) + 1)
	for i := 0; i < pad; i++ {
		b.Byte(0)
	}
}

// emitClassNameTable writes the class_nameTab: one pointer per class,
// in tag order, to that class's dedicated `_className` String
// object — the runtime type_name() built-in and case-expression error
// messages both index into this table by tag. Each class's name is
// its own pair of objects, not a shared literal from the general
// constant pool (cw4's emit_name_table/emit_className_attributes):
// class names are a fixed, compile-time-known set disjoint from the
// literals a program's source can intern, so they get a dedicated
// emission pass instead of flowing through constpool.
func (g *Generator) emitClassNameTable() {
	b := g.data
	order := g.table.EmissionOrder()

	b.Align(2)
	b.Global("class_nameTab")
	b.Label("class_nameTab")
	for i := 0; i < g.table.NumClasses(); i++ {
		b.WordLabel(classNameLabel(g.table.Name(i)))
	}

	for _, idx := range order {
		g.emitClassNameAttributes(g.table.Name(idx))
	}
}

func classNameLengthLabel(class string) string { return class + "_classNameLength" }
func classNameLabel(class string) string       { return class + "_className" }

// emitClassNameAttributes writes one class's name pair: a
// `_classNameLength` Int object followed by a `_className` String
// object whose length field points at it, mirroring
// CoolCodegen::emit_length_attribute / emit_className exactly (rather
// than constpool's shared int-interning scheme, which these
// deliberately bypass).
func (g *Generator) emitClassNameAttributes(class string) {
	b := g.data

	b.Align(2)
	b.Label(classNameLengthLabel(class))
	b.Word(int32(g.tag("Int")))
	b.Word(4)
	b.WordLabel(dispTabLabel("Int"))
	b.Word(int32(len(class)))

	strLen := len(class) + 1
	dataWords := (strLen + 3) / 4

	b.Align(2)
	b.Label(classNameLabel(class))
	b.Word(int32(g.tag("String")))
	b.Word(int32(headerWords + 1 + dataWords))
	b.WordLabel(dispTabLabel("String"))
	b.WordLabel(classNameLengthLabel(class))
	b.AsciiZ(class)
	pad := dataWords*4 - strLen
	for i := 0; i < pad; i++ {
		b.Byte(0)
	}
}

// emitClassObjectTable writes class_objTab: for every class in tag
// order, a pair of words (prototype pointer, init routine pointer),
// consumed by `new` when the static type is a type parameter
// resolved only at run time (SELF_TYPE) — cw4's emit_prototype_table.
func (g *Generator) emitClassObjectTable() {
	b := g.data
	b.Align(2)
	b.Label("class_objTab")
	for i := 0; i < g.table.NumClasses(); i++ {
		name := g.table.Name(i)
		b.WordLabel(protoLabel(name))
		b.WordLabel(initLabel(name))
	}
}

// emitDispatchTable writes one class's dispatch table: one label per
// visible method, in stable slot order (AllMethods), pointing at
// whichever class currently supplies the implementation.
func (g *Generator) emitDispatchTable(idx int) {
	b := g.data
	rec := g.table.Record(idx)
	b.Align(2)
	b.Label(dispTabLabel(rec.Name))
	for _, m := range g.table.AllMethods(idx) {
		b.WordLabel(methodLabel(g.table.Name(m.OwnerIndex), m.Name))
	}
}

// emitPrototype writes one class's prototype object: the template
// every `new` copies word-for-word before running _init. Built-ins
// get their fixed extra slots; user classes get one word per
// attribute, default-initialized to void/0/false (the real value is
// filled in by _init).
func (g *Generator) emitPrototype(idx int) {
	b := g.data
	rec := g.table.Record(idx)
	attrs := g.table.AllAttributes(idx)

	b.Align(2)
	b.Label(protoLabel(rec.Name))
	b.Comment("%s", rec.Name)
	b.Word(int32(idx))

	switch rec.Name {
	case "Int", "Bool":
		b.Word(4)
		b.WordLabel(dispTabLabel(rec.Name))
		b.Word(0)
		return
	case "String":
		b.Word(5)
		b.WordLabel(dispTabLabel(rec.Name))
		b.WordLabel(constpool.IntLabel(g.pool.IntIndex(0)))
		b.Word(0)
		return
	}

	b.Word(int32(headerWords + len(attrs)))
	b.WordLabel(dispTabLabel(rec.Name))
	for range attrs {
		b.Word(0)
	}
}

// tag is a convenience wrapper for looking up a known-valid built-in
// class's tag.
func (g *Generator) tag(name string) int {
	idx, _ := g.table.Index(name)
	return idx
}
