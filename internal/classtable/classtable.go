// Package classtable implements the definitive post-semantics class
// store: topologically-normalised class tags, transitive attribute and
// method layout, and the sub-hierarchy tag ranges that make
// isinstance-style checks a range comparison.
package classtable

import (
	"sort"

	"github.com/coolc/coolc/internal/builtins"
	"github.com/coolc/coolc/internal/typedast"
)

// SelfType and Poison re-export typedast's sentinel static types so
// callers working only with classtable needn't import typedast too.
const (
	SelfType = typedast.SelfType
	Poison   = typedast.Poison
)

// Attr is one attribute in a class's own (non-inherited) layout.
type Attr struct {
	Name     string
	DeclType int // class index, never SelfType/Poison (own attrs are always concrete)
	Init     typedast.Expr // nil if no initializer
	Line     int
}

// Formal is a method's formal parameter, resolved to a class index.
type Formal struct {
	Name     string
	DeclType int
}

// Method is one method in a class's own (non-inherited) layout.
type Method struct {
	Name    string
	RetType int // class index, or SelfType
	Formals []Formal
	Body    typedast.Expr // nil for built-in methods (defined by the runtime)
	Line    int
	Builtin bool
}

// Record is a single class's finalised record.
type Record struct {
	Name        string
	ParentIndex int // -1 only for Object
	Attributes  []Attr // own attributes only, source order
	Methods     []Method // own methods only (new or overriding), source order
	Line        int
	Index       int // stable tag, assigned by Finalize's pre-order walk
	SubtreeSize int
}

// FlatAttr is one entry of a class's flattened attribute layout:
// ancestor attributes first (in ancestor order), then the class's own,
// each assigned a stable storage slot.
type FlatAttr struct {
	Attr
	OwnerIndex int // class that declared this attribute
	Slot       int // 0-based; byte offset in an instance is (3+Slot)*4
}

// FlatMethod is one entry of a class's flattened dispatch layout: for
// every method name visible on the class, the deepest class that
// currently supplies its implementation.
type FlatMethod struct {
	Method
	OwnerIndex int // class supplying the current (possibly overriding) implementation
	Slot       int // 0-based dispatch-table index, stable across overrides
}

// Table is the read-only, finalised class store consumed by code
// generation.
type Table struct {
	records       []*Record // indexed by tag after Finalize
	byName        map[string]int
	flatAttrs     [][]FlatAttr
	flatMethods   [][]FlatMethod
}

// Builder accumulates class records prior to finalisation (the class
// collector's and feature collector's output).
type Builder struct {
	byName   map[string]*Record
	order    []string // source-appearance order of user classes only
	children map[string][]string
}

// NewBuilder creates a Builder pre-registering the five built-in
// classes in their fixed shape (spec §4.1).
func NewBuilder() *Builder {
	b := &Builder{byName: make(map[string]*Record), children: make(map[string][]string)}
	for _, bc := range builtins.Classes {
		r := &Record{Name: bc.Name, ParentIndex: -1}
		b.byName[bc.Name] = r
	}
	// Built-in parent wiring is deferred to AddChild calls made by the
	// caller once all records exist (Object has no parent).
	return b
}

// HasClass reports whether name has already been registered.
func (b *Builder) HasClass(name string) bool {
	_, ok := b.byName[name]
	return ok
}

// Add registers a new user class record. Callers must not call Add
// for a name already present (including built-ins); the class
// collector checks this first and reports a diagnostic instead.
func (b *Builder) Add(name, parent string, line int) *Record {
	r := &Record{Name: name, Line: line}
	b.byName[name] = r
	b.order = append(b.order, name)
	return r
}

// Get returns the record for name, or nil.
func (b *Builder) Get(name string) *Record { return b.byName[name] }

// SetParent links child's parent by name; link order is recorded for
// Finalize's deterministic pre-order walk (spec §5: class
// source-appearance order).
func (b *Builder) SetParent(child, parent string) {
	b.children[parent] = append(b.children[parent], child)
}

// Names returns every registered class name: built-ins first in fixed
// order, then user classes in source-appearance order.
func (b *Builder) Names() []string {
	names := make([]string, 0, len(b.byName))
	names = append(names, builtins.Names...)
	names = append(names, b.order...)
	return names
}

// Finalize performs the pre-order tag assignment of spec §4.4: classes
// are numbered so every class's sub-hierarchy occupies a contiguous
// tag range. The walk starts at Object and visits children in the
// order they were linked by SetParent, which callers must do in
// builtins-first, then source-appearance order (spec §5).
//
// Finalize assigns tags and parent links only. Callers populate each
// Record's Attributes and Methods afterwards (the feature collector
// needs tags assigned first, to resolve formal/return type names
// against the table) and then call FinalizeLayouts once every
// record's own features are filled in.
func (b *Builder) Finalize() *Table {
	t := &Table{byName: make(map[string]int)}

	nextTag := 0
	var visit func(name string) int
	visit = func(name string) int {
		rec := b.byName[name]
		tag := nextTag
		nextTag++
		rec.Index = tag
		t.records = append(t.records, rec)
		t.byName[name] = tag

		size := 1
		for _, child := range b.children[name] {
			size += visit(child)
		}
		rec.SubtreeSize = size
		return size
	}
	visit("Object")

	for _, rec := range t.records {
		if rec.Name != "Object" {
			parentName := b.parentOf(rec.Name)
			rec.ParentIndex = t.byName[parentName]
		}
	}

	return t
}

// FinalizeLayouts computes every class's flattened attribute and
// dispatch layout. Call once after every Record's own Attributes and
// Methods have been populated.
func (t *Table) FinalizeLayouts() {
	t.computeFlatLayouts()
}

func (b *Builder) parentOf(name string) string {
	for parent, kids := range b.children {
		for _, k := range kids {
			if k == name {
				return parent
			}
		}
	}
	return ""
}

// NumClasses returns the number of classes in the table.
func (t *Table) NumClasses() int { return len(t.records) }

// Index returns the tag for name, and whether it was found.
func (t *Table) Index(name string) (int, bool) {
	idx, ok := t.byName[name]
	return idx, ok
}

// Record returns the finalised record at tag idx.
func (t *Table) Record(idx int) *Record { return t.records[idx] }

// Name returns the class name at tag idx.
func (t *Table) Name(idx int) string { return t.records[idx].Name }

// TagRange returns [min,max] inclusive for class idx's sub-hierarchy.
func (t *Table) TagRange(idx int) (int, int) {
	r := t.records[idx]
	return r.Index, r.Index + r.SubtreeSize - 1
}

// IsSubclassOf reports whether a is b or a descendant of b:
// tag(b) <= tag(a) <= tag(b)+size(b)-1 (spec §3, §8).
func (t *Table) IsSubclassOf(a, b int) bool {
	lo, hi := t.TagRange(b)
	tagA := t.records[a].Index
	return lo <= tagA && tagA <= hi
}

// LUB returns the deepest common ancestor of a and b along the parent
// chain (spec §4.3).
func (t *Table) LUB(a, b int) int {
	ancestors := make(map[int]bool)
	for cur := a; ; {
		ancestors[cur] = true
		if cur == 0 {
			break
		}
		cur = t.records[cur].ParentIndex
	}
	for cur := b; ; {
		if ancestors[cur] {
			return cur
		}
		if cur == 0 {
			break
		}
		cur = t.records[cur].ParentIndex
	}
	return 0 // Object
}

// AllAttributes returns the flattened attribute layout for class idx:
// ancestor attributes (in ancestor order) followed by idx's own,
// spec invariant (iii).
func (t *Table) AllAttributes(idx int) []FlatAttr { return t.flatAttrs[idx] }

// AllMethods returns the flattened dispatch layout for class idx,
// spec invariant (iv): overrides replace the ancestor's entry in
// place, preserving its dispatch slot.
func (t *Table) AllMethods(idx int) []FlatMethod { return t.flatMethods[idx] }

// EmissionOrder returns class tags in the order the code generator
// emits per-class tables: built-ins first (Object, IO, Int, Bool,
// String), then user classes in tag order (which is itself a
// pre-order, source-appearance-stable walk), matching the reference
// CoolCodegen::emit_tables partition.
func (t *Table) EmissionOrder() []int {
	order := make([]int, 0, len(t.records))
	for _, name := range builtins.Names {
		order = append(order, t.byName[name])
	}
	rest := make([]int, 0, len(t.records)-len(builtins.Names))
	for _, r := range t.records {
		if !builtins.IsBuiltin(r.Name) {
			rest = append(rest, r.Index)
		}
	}
	sort.Ints(rest)
	order = append(order, rest...)
	return order
}

func (t *Table) computeFlatLayouts() {
	n := len(t.records)
	t.flatAttrs = make([][]FlatAttr, n)
	t.flatMethods = make([][]FlatMethod, n)

	var buildAttrs func(idx int) []FlatAttr
	buildAttrs = func(idx int) []FlatAttr {
		if t.flatAttrs[idx] != nil {
			return t.flatAttrs[idx]
		}
		rec := t.records[idx]
		var parentAttrs []FlatAttr
		if idx != 0 {
			parentAttrs = buildAttrs(rec.ParentIndex)
		}
		flat := make([]FlatAttr, 0, len(parentAttrs)+len(rec.Attributes))
		flat = append(flat, parentAttrs...)
		for _, a := range rec.Attributes {
			flat = append(flat, FlatAttr{Attr: a, OwnerIndex: idx, Slot: len(flat)})
		}
		t.flatAttrs[idx] = flat
		return flat
	}

	var buildMethods func(idx int) []FlatMethod
	buildMethods = func(idx int) []FlatMethod {
		if t.flatMethods[idx] != nil {
			return t.flatMethods[idx]
		}
		rec := t.records[idx]
		var parentMethods []FlatMethod
		if idx != 0 {
			parentMethods = buildMethods(rec.ParentIndex)
		}
		flat := make([]FlatMethod, len(parentMethods))
		copy(flat, parentMethods)

		byName := make(map[string]int, len(flat))
		for i, m := range flat {
			byName[m.Name] = i
		}
		for _, m := range rec.Methods {
			if slot, ok := byName[m.Name]; ok {
				flat[slot] = FlatMethod{Method: m, OwnerIndex: idx, Slot: slot}
			} else {
				flat = append(flat, FlatMethod{Method: m, OwnerIndex: idx, Slot: len(flat)})
				byName[m.Name] = len(flat) - 1
			}
		}
		t.flatMethods[idx] = flat
		return flat
	}

	for i := range t.records {
		buildAttrs(i)
		buildMethods(i)
	}
}
