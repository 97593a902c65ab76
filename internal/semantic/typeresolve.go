package semantic

import (
	"fmt"

	"github.com/coolc/coolc/internal/ast"
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/errors"
	"github.com/coolc/coolc/internal/token"
)

// resolveTypeName resolves a declared type name against the class
// table. allowSelfType distinguishes the two legal contexts (formal
// parameters may never be SELF_TYPE; attributes and return types may)
// per the data model. An unknown name is reported once and resolved
// to Poison so callers can keep checking the rest of the class
// without a second, confusing error about the same bad name.
func resolveTypeName(table *classtable.Table, name string, allowSelfType bool, pos token.Position, file string, errs *[]*errors.CompilerError) (int, bool) {
	if name == "SELF_TYPE" {
		if allowSelfType {
			return classtable.SelfType, true
		}
		*errs = append(*errs, errors.NewFeatureError(pos, "Formal parameters cannot have type SELF_TYPE.", "", file))
		return classtable.Poison, false
	}
	idx, ok := table.Index(name)
	if !ok {
		*errs = append(*errs, errors.NewFeatureError(pos, fmt.Sprintf("Class %s of formal/attribute is undefined.", name), "", file))
		return classtable.Poison, false
	}
	return idx, true
}

// findInheritedAttr reports whether any ancestor of a class (starting
// at parentIdx, the class currently being populated's own parent)
// already declares an attribute named name.
func findInheritedAttr(table *classtable.Table, parentIdx int, name string) bool {
	for idx := parentIdx; idx >= 0; idx = table.Record(idx).ParentIndex {
		for _, a := range table.Record(idx).Attributes {
			if a.Name == name {
				return true
			}
		}
	}
	return false
}

// checkOverride validates a method redefinition against the nearest
// ancestor that already declares a method of the same name: the
// formal count, each formal's declared type, and the return type must
// match exactly (COOL forbids covariant/contravariant overriding).
func checkOverride(table *classtable.Table, parentIdx int, feat *ast.Method, formals []classtable.Formal, retType int, file string, errs *[]*errors.CompilerError) bool {
	var ancestor *classtable.Method
	for idx := parentIdx; idx >= 0 && ancestor == nil; idx = table.Record(idx).ParentIndex {
		for _, m := range table.Record(idx).Methods {
			if m.Name == feat.Name {
				mCopy := m
				ancestor = &mCopy
				break
			}
		}
	}
	if ancestor == nil {
		return true
	}

	if len(ancestor.Formals) != len(formals) {
		*errs = append(*errs, errors.NewFeatureError(feat.Pos,
			fmt.Sprintf("Incompatible number of formal parameters in redefined method %s.", feat.Name), "", file))
		return false
	}
	for i, f := range formals {
		if f.DeclType != ancestor.Formals[i].DeclType {
			*errs = append(*errs, errors.NewFeatureError(feat.Pos,
				fmt.Sprintf("In redefined method %s, parameter type %s is different from original type %s.",
					feat.Name, table.Name(f.DeclType), table.Name(ancestor.Formals[i].DeclType)), "", file))
			return false
		}
	}
	if retType != ancestor.RetType {
		*errs = append(*errs, errors.NewFeatureError(feat.Pos,
			fmt.Sprintf("In redefined method %s, return type %s is different from original return type %s.",
				feat.Name, typeNameOf(table, retType), typeNameOf(table, ancestor.RetType)), "", file))
		return false
	}
	return true
}

func typeNameOf(table *classtable.Table, idx int) string {
	if idx == classtable.SelfType {
		return "SELF_TYPE"
	}
	return table.Name(idx)
}
