// Package semantic implements the compiler's middle end: building the
// class hierarchy, collecting every class's own attributes and
// methods, and type-checking every attribute initializer and method
// body into the typed-AST form code generation consumes.
package semantic

import (
	"github.com/coolc/coolc/internal/ast"
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/errors"
)

// Analyze runs the full semantic pipeline on a parsed program and
// returns the finalised class table (with every attribute initializer
// and method body replaced by its typed-AST equivalent) and the
// accumulated diagnostics.
//
// Each stage is a barrier: hierarchy errors stop before feature
// collection runs, because FinalizeLayouts's ancestor walk assumes an
// acyclic, fully-linked class graph, and feature errors stop before
// type checking runs, for the same reason applied to method overrides
// and attribute shadowing. A program that fails an earlier stage is
// never partially type-checked; spurious cascades from a broken
// hierarchy would outnumber the diagnostics that actually matter.
func Analyze(prog *ast.Program, file string) (*classtable.Table, []*errors.CompilerError) {
	builder, decls, errs := collectClasses(prog, file)
	if len(errs) > 0 {
		return nil, errs
	}

	table := builder.Finalize()

	featureErrs := collectFeatures(table, decls, file)
	if len(featureErrs) > 0 {
		return nil, featureErrs
	}

	table.FinalizeLayouts()

	var typeErrs []*errors.CompilerError
	for name, decl := range decls {
		classIdx, _ := table.Index(name)
		typeCheckClass(table, decl, classIdx, file, &typeErrs)
	}

	if len(typeErrs) > 0 {
		return nil, typeErrs
	}
	return table, nil
}

// typeCheckClass type-checks one user class's own attribute
// initializers and method bodies in place, writing the resulting
// typed-AST node back into the matching classtable.Record entry.
func typeCheckClass(table *classtable.Table, decl *ast.Class, classIdx int, file string, errs *[]*errors.CompilerError) {
	rec := table.Record(classIdx)

	attrByName := make(map[string]*classtable.Attr, len(rec.Attributes))
	for i := range rec.Attributes {
		attrByName[rec.Attributes[i].Name] = &rec.Attributes[i]
	}
	methodByName := make(map[string]*classtable.Method, len(rec.Methods))
	for i := range rec.Methods {
		methodByName[rec.Methods[i].Name] = &rec.Methods[i]
	}

	for _, f := range decl.Features {
		switch feat := f.(type) {
		case *ast.Attribute:
			attr := attrByName[feat.Name]
			if attr == nil || feat.Init == nil {
				continue
			}
			attr.Init = checkAttrInit(table, file, errs, classIdx, attr.DeclType, feat.Init, feat.Pos)
		case *ast.Method:
			m := methodByName[feat.Name]
			if m == nil || m.Builtin || feat.Body == nil {
				continue
			}
			m.Body = checkMethodBody(table, file, errs, classIdx, m, feat)
		}
	}
}
