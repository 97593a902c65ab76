package semantic

import (
	"fmt"

	"github.com/coolc/coolc/internal/ast"
	"github.com/coolc/coolc/internal/builtins"
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/errors"
)

// collectFeatures populates every user class's own Attributes and
// Methods on the finalised table: resolving every declared type name
// to a class tag (or SELF_TYPE), rejecting duplicate attributes,
// duplicate methods, an attribute named self, attributes that shadow
// an inherited one, and method overrides whose signature doesn't
// match the ancestor they override. Built-in classes are pre-
// populated from the builtins package and never revisited here.
func collectFeatures(table *classtable.Table, decls map[string]*ast.Class, file string) []*errors.CompilerError {
	var errs []*errors.CompilerError
	installBuiltinMethods(table)

	// Tag order is a pre-order walk, so every class's ancestors have
	// their own features in place before the class itself is checked.
	for idx := 0; idx < table.NumClasses(); idx++ {
		rec := table.Record(idx)
		decl, ok := decls[rec.Name]
		if !ok {
			continue
		}

		seenAttr := make(map[string]bool)
		seenMethod := make(map[string]bool)

		for _, f := range decl.Features {
			switch feat := f.(type) {
			case *ast.Attribute:
				collectAttribute(table, rec, feat, seenAttr, file, &errs)
			case *ast.Method:
				collectMethod(table, rec, feat, seenMethod, file, &errs)
			}
		}
	}

	return errs
}

func collectAttribute(table *classtable.Table, rec *classtable.Record, feat *ast.Attribute, seen map[string]bool, file string, errs *[]*errors.CompilerError) {
	if feat.Name == "self" {
		*errs = append(*errs, errors.NewFeatureError(feat.Pos, "'self' cannot be the name of an attribute.", "", file))
		return
	}
	if seen[feat.Name] {
		*errs = append(*errs, errors.NewFeatureError(feat.Pos, fmt.Sprintf("Attribute %s is multiply defined in class.", feat.Name), "", file))
		return
	}
	seen[feat.Name] = true
	if findInheritedAttr(table, rec.ParentIndex, feat.Name) {
		*errs = append(*errs, errors.NewFeatureError(feat.Pos, fmt.Sprintf("Attribute %s is an attribute of an inherited class.", feat.Name), "", file))
		return
	}
	declType, ok := resolveTypeName(table, feat.Type, true, feat.Pos, file, errs)
	if !ok {
		return
	}
	rec.Attributes = append(rec.Attributes, classtable.Attr{Name: feat.Name, DeclType: declType, Line: feat.Pos.Line})
}

func collectMethod(table *classtable.Table, rec *classtable.Record, feat *ast.Method, seen map[string]bool, file string, errs *[]*errors.CompilerError) {
	if seen[feat.Name] {
		*errs = append(*errs, errors.NewFeatureError(feat.Pos, fmt.Sprintf("Method %s is multiply defined.", feat.Name), "", file))
		return
	}
	seen[feat.Name] = true

	formals := make([]classtable.Formal, 0, len(feat.Formals))
	formalNames := make(map[string]bool, len(feat.Formals))
	ok := true
	for _, f := range feat.Formals {
		if f.Name == "self" {
			*errs = append(*errs, errors.NewFeatureError(f.Pos, "'self' cannot be the name of a formal parameter.", "", file))
			ok = false
			continue
		}
		if formalNames[f.Name] {
			*errs = append(*errs, errors.NewFeatureError(f.Pos, fmt.Sprintf("Formal parameter %s is multiply defined.", f.Name), "", file))
			ok = false
			continue
		}
		formalNames[f.Name] = true
		ft, valid := resolveTypeName(table, f.Type, false, f.Pos, file, errs)
		if !valid {
			ok = false
			continue
		}
		formals = append(formals, classtable.Formal{Name: f.Name, DeclType: ft})
	}
	retType, retOK := resolveTypeName(table, feat.RetType, true, feat.Pos, file, errs)
	if !ok || !retOK {
		return
	}

	if !checkOverride(table, rec.ParentIndex, feat, formals, retType, file, errs) {
		return
	}

	rec.Methods = append(rec.Methods, classtable.Method{
		Name: feat.Name, RetType: retType, Formals: formals, Line: feat.Pos.Line,
	})
}

// installBuiltinMethods fills in the five built-in classes' method
// signatures directly from the builtins package; their bodies live in
// the linked runtime support library, never in generated assembly.
func installBuiltinMethods(table *classtable.Table) {
	for _, bc := range builtins.Classes {
		idx, ok := table.Index(bc.Name)
		if !ok {
			continue
		}
		rec := table.Record(idx)
		for _, m := range bc.Methods {
			formals := make([]classtable.Formal, len(m.Formals))
			for i, p := range m.Formals {
				formals[i] = classtable.Formal{Name: p.Name, DeclType: resolveKnownType(table, p.Type)}
			}
			rec.Methods = append(rec.Methods, classtable.Method{
				Name: m.Name, RetType: resolveKnownType(table, m.RetType), Formals: formals, Builtin: true,
			})
		}
	}
}

func resolveKnownType(table *classtable.Table, name string) int {
	if name == "SELF_TYPE" {
		return classtable.SelfType
	}
	idx, _ := table.Index(name)
	return idx
}
