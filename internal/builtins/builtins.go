// Package builtins describes the fixed shape of COOL's five built-in
// classes (Object, IO, Int, Bool, String): their parent, their method
// signatures, and the fixed tag order the code generator relies on.
// Their bodies live in the external runtime (spec's "external
// collaborators"); this package only records the signatures the
// semantic analyzer needs to type-check calls against them.
package builtins

// Param is a formal-parameter signature (name, declared type).
type Param struct {
	Name string
	Type string
}

// Method is a built-in method's signature.
type Method struct {
	Name    string
	RetType string
	Formals []Param
}

// Class is a built-in class's fixed shape.
type Class struct {
	Name    string
	Parent  string
	Methods []Method
}

// Names lists the five built-ins in the fixed emission order the code
// generator relies on (spec §4.5, §6): Object, IO, Int, Bool, String.
// Object=0 and IO=1 always; tags are pre-order over the hierarchy, so
// Int=2, Bool=3, String=4 hold only when no user class inherits IO
// (IO's subclasses take the tags right after IO, shifting these three).
var Names = []string{"Object", "IO", "Int", "Bool", "String"}

// IsBuiltin reports whether name is one of the five built-in classes.
func IsBuiltin(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Classes describes each built-in's parent and method signatures, in
// Names order.
var Classes = []Class{
	{
		Name: "Object",
		Methods: []Method{
			{Name: "abort", RetType: "Object"},
			{Name: "type_name", RetType: "String"},
			{Name: "copy", RetType: "SELF_TYPE"},
		},
	},
	{
		Name:   "IO",
		Parent: "Object",
		Methods: []Method{
			{Name: "out_string", RetType: "SELF_TYPE", Formals: []Param{{Name: "x", Type: "String"}}},
			{Name: "out_int", RetType: "SELF_TYPE", Formals: []Param{{Name: "x", Type: "Int"}}},
			{Name: "in_string", RetType: "String"},
			{Name: "in_int", RetType: "Int"},
		},
	},
	{
		Name:   "Int",
		Parent: "Object",
	},
	{
		Name:   "Bool",
		Parent: "Object",
	},
	{
		Name:   "String",
		Parent: "Object",
		Methods: []Method{
			{Name: "length", RetType: "Int"},
			{Name: "concat", RetType: "String", Formals: []Param{{Name: "s", Type: "String"}}},
			{Name: "substr", RetType: "String", Formals: []Param{{Name: "i", Type: "Int"}, {Name: "l", Type: "Int"}}},
		},
	},
}

// ForbiddenParents are the built-ins a user class may never inherit
// from (spec §4.1).
var ForbiddenParents = map[string]bool{"Int": true, "Bool": true, "String": true}
