package semantic

import (
	"testing"

	"github.com/coolc/coolc/internal/ast"
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/errors"
	"github.com/coolc/coolc/internal/lexer"
	"github.com/coolc/coolc/internal/parser"
	"github.com/coolc/coolc/internal/typedast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	return prog
}

func analyzeSrc(t *testing.T, src string) (*classtable.Table, []*errors.CompilerError) {
	t.Helper()
	return Analyze(parseOK(t, src), "test.cl")
}

func TestEmptyMainClassAnalyzesCleanly(t *testing.T) {
	table, errs := analyzeSrc(t, `class Main { main() : Object { 0 }; };`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if table == nil {
		t.Fatal("expected a finalised table")
	}
	idx, ok := table.Index("Main")
	if !ok {
		t.Fatal("Main not registered in table")
	}
	if got := len(table.AllMethods(idx)); got == 0 {
		t.Errorf("Main should inherit Object's methods, got %d methods", got)
	}
}

func TestMissingMainIsHierarchyError(t *testing.T) {
	_, errs := analyzeSrc(t, `class Foo { x : Int; };`)
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Tier != errors.Hierarchy {
		t.Errorf("expected Hierarchy tier, got %v", errs[0].Tier)
	}
	if errs[0].Message != "Class Main is not defined." {
		t.Errorf("got message %q", errs[0].Message)
	}
}

func TestInheritanceCycleMessageFormat(t *testing.T) {
	_, errs := analyzeSrc(t, `
		class Main { main() : Object { 0 }; };
		class A inherits B { };
		class B inherits A { };
	`)
	if len(errs) == 0 {
		t.Fatal("expected cycle errors")
	}
	found := false
	for _, e := range errs {
		if e.Tier != errors.Hierarchy {
			continue
		}
		if e.Message == "Class A, or an ancestor of A, is involved in an inheritance cycle." ||
			e.Message == "Class B, or an ancestor of B, is involved in an inheritance cycle." {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a cycle message naming A or B, got %v", errs)
	}
}

func TestOverrideMismatchReportsFeatureError(t *testing.T) {
	_, errs := analyzeSrc(t, `
		class Main { main() : Object { 0 }; };
		class A { foo(x : Int) : Int { x }; };
		class B inherits A { foo(x : Int) : String { "bad" }; };
	`)
	if len(errs) == 0 {
		t.Fatal("expected an override-mismatch error")
	}
	if errs[0].Tier != errors.Feature {
		t.Errorf("expected Feature tier, got %v: %s", errs[0].Tier, errs[0].Message)
	}
}

func TestSelfTypeDispatchPreservesTargetType(t *testing.T) {
	table, errs := analyzeSrc(t, `
		class Main inherits IO {
			main() : Main { self.out_string("hi") };
		};
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	mainIdx, _ := table.Index("Main")
	rec := table.Record(mainIdx)
	var body interface{ ExprType() int }
	for _, m := range rec.Methods {
		if m.Name == "main" {
			body = m.Body
		}
	}
	if body == nil {
		t.Fatal("main's body was not type-checked")
	}
	if body.ExprType() != classtable.SelfType {
		t.Errorf("dispatch on self returning SELF_TYPE should stay SELF_TYPE, got type %d", body.ExprType())
	}
}

func TestDuplicateCaseBranchIsTypeError(t *testing.T) {
	_, errs := analyzeSrc(t, `
		class Main {
			main() : Object {
				case 0 of
					x : Int => x;
					y : Int => y;
				esac
			};
		};
	`)
	if len(errs) == 0 {
		t.Fatal("expected a duplicate-branch error")
	}
}

func TestStringEqualityUsesStringKind(t *testing.T) {
	table, errs := analyzeSrc(t, `
		class Main {
			main() : Object {
				if "a" = "b" then 1 else 0 fi
			};
		};
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	mainIdx, _ := table.Index("Main")
	for _, m := range table.Record(mainIdx).Methods {
		if m.Name != "main" {
			continue
		}
		ifExpr, ok := m.Body.(*typedast.If)
		if !ok {
			t.Fatalf("expected an If body, got %T", m.Body)
		}
		eq, ok := ifExpr.Cond.(*typedast.Eq)
		if !ok {
			t.Fatalf("expected an Eq condition, got %T", ifExpr.Cond)
		}
		if eq.Kind != typedast.EqStr {
			t.Errorf("string = string should have kind EqStr, got %d", eq.Kind)
		}
	}
}

func TestIllegalComparisonWithBasicType(t *testing.T) {
	_, errs := analyzeSrc(t, `
		class Main {
			main() : Object {
				if 1 = "a" then 1 else 0 fi
			};
		};
	`)
	if len(errs) == 0 {
		t.Fatal("expected an illegal-comparison error")
	}
}

func TestUndeclaredIdentifierIsTypeError(t *testing.T) {
	_, errs := analyzeSrc(t, `
		class Main {
			main() : Object { x };
		};
	`)
	if len(errs) != 1 || errs[0].Tier != errors.Type {
		t.Fatalf("expected exactly 1 Type error, got %v", errs)
	}
}
