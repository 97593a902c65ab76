package semantic

import (
	"fmt"

	"github.com/coolc/coolc/internal/ast"
	"github.com/coolc/coolc/internal/builtins"
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/errors"
	"github.com/coolc/coolc/internal/token"
)

// collectClasses registers every user class, rejecting redefinitions
// of a built-in or of another user class, then links every class to
// its parent once all names are known and checks the resulting graph
// for inheritance cycles. It returns a Builder ready for Finalize, a
// name->declaration map the feature collector uses to walk each
// class's own feature list, and any hierarchy-tier diagnostics.
func collectClasses(prog *ast.Program, file string) (*classtable.Builder, map[string]*ast.Class, []*errors.CompilerError) {
	var errs []*errors.CompilerError
	b := classtable.NewBuilder()
	decls := make(map[string]*ast.Class)

	for _, c := range prog.Classes {
		if c.Name == "SELF_TYPE" || builtins.IsBuiltin(c.Name) {
			errs = append(errs, errors.NewHierarchyError(c.Pos, fmt.Sprintf("Redefinition of basic class %s.", c.Name), "", file))
			continue
		}
		if _, dup := decls[c.Name]; dup {
			errs = append(errs, errors.NewHierarchyError(c.Pos, fmt.Sprintf("Class %s was previously defined.", c.Name), "", file))
			continue
		}
		decls[c.Name] = c
		b.Add(c.Name, c.Parent, c.Pos.Line)
	}

	for _, bc := range builtins.Classes {
		if bc.Parent != "" {
			b.SetParent(bc.Name, bc.Parent)
		}
	}

	for _, c := range prog.Classes {
		if _, ok := decls[c.Name]; !ok {
			continue
		}
		parent := c.Parent
		if builtins.ForbiddenParents[parent] {
			errs = append(errs, errors.NewHierarchyError(c.Pos, fmt.Sprintf("Class %s cannot inherit class %s.", c.Name, parent), "", file))
			continue
		}
		if !builtins.IsBuiltin(parent) {
			if _, ok := decls[parent]; !ok {
				errs = append(errs, errors.NewHierarchyError(c.Pos, fmt.Sprintf("Class %s inherits from an undefined class %s.", c.Name, parent), "", file))
				continue
			}
		}
		b.SetParent(c.Name, parent)
	}

	errs = append(errs, detectCycles(decls, file)...)

	if _, ok := decls["Main"]; !ok {
		errs = append(errs, errors.NewHierarchyError(token.Position{Line: 0}, "Class Main is not defined.", "", file))
	}

	return b, decls, errs
}

// detectCycles walks every user class's parent chain, reporting every
// class whose ancestry eventually loops back on itself. Built-in
// classes never participate: their fixed parent chain always
// terminates at Object.
func detectCycles(decls map[string]*ast.Class, file string) []*errors.CompilerError {
	const (white = iota
		gray
		black
	)
	color := make(map[string]int, len(decls))
	reported := make(map[string]bool, len(decls))
	var errs []*errors.CompilerError

	var visit func(name string) bool
	visit = func(name string) bool {
		c, ok := decls[name]
		if !ok {
			return false
		}
		switch color[name] {
		case black:
			return false
		case gray:
			return true
		}
		color[name] = gray
		cyclic := visit(c.Parent)
		if cyclic && !reported[name] {
			reported[name] = true
			errs = append(errs, errors.NewHierarchyError(c.Pos,
				fmt.Sprintf("Class %s, or an ancestor of %s, is involved in an inheritance cycle.", name, name), "", file))
		}
		color[name] = black
		return cyclic
	}

	for name := range decls {
		visit(name)
	}
	return errs
}
