package codegen

import (
	"strings"
	"testing"

	"github.com/coolc/coolc/internal/constpool"
	"github.com/coolc/coolc/internal/lexer"
	"github.com/coolc/coolc/internal/parser"
	"github.com/coolc/coolc/internal/semantic"
	"github.com/gkampitakis/go-snaps/snaps"
)

// generate runs the full pipeline (lexer -> parser -> semantic
// analysis -> code generation) on src and fails the test if any stage
// reports a diagnostic, mirroring the teacher's fixture harness in
// internal/interp/fixture_test.go.
func generate(t *testing.T, src string) string {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	table, errs := semantic.Analyze(prog, "test.cl")
	if len(errs) != 0 {
		t.Fatalf("unexpected semantic errors: %v", errs)
	}
	gen := New(table, constpool.New(), "test.cl")
	return gen.Generate()
}

func TestGenerateEmptyMainClass(t *testing.T) {
	asm := generate(t, `class Main { main() : Object { 0 }; };`)
	snaps.MatchSnapshot(t, "empty_main", asm)
}

func TestGenerateEmitsPrototypesForAllClasses(t *testing.T) {
	asm := generate(t, `
		class Animal { name : String; speak() : String { name }; };
		class Dog inherits Animal { };
		class Main { main() : Object { (new Dog).speak() }; };
	`)

	for _, want := range []string{
		"Object_protObj", "IO_protObj", "Int_protObj", "Bool_protObj", "String_protObj",
		"Animal_protObj", "Dog_protObj", "Main_protObj",
		"Animal_dispTab", "Dog_dispTab", "Main_dispTab",
		"Animal_init", "Dog_init", "Main_init",
		"Main.main",
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("generated assembly missing %q", want)
		}
	}
}

func TestGenerateEntryPointAllocatesAndCallsMain(t *testing.T) {
	asm := generate(t, `class Main { main() : Object { 0 }; };`)
	if !strings.Contains(asm, "Main_protObj") || !strings.Contains(asm, "Main.main") {
		t.Fatalf("entry point must reference Main's prototype and main method:\n%s", asm)
	}
	if !strings.Contains(asm, "Object.copy") {
		t.Errorf("entry point should allocate Main via Object.copy")
	}
}

func TestGenerateCaseExpressionOrdersArmsNarrowestFirst(t *testing.T) {
	asm := generate(t, `
		class A { };
		class B inherits A { };
		class Main {
			main() : Object {
				case (new B) of
					x : A => 1;
					y : B => 2;
				esac
			};
		};
	`)
	snaps.MatchSnapshot(t, "case_ordering", asm)
}

func TestGenerateStringEqualityDispatchesToStringCompare(t *testing.T) {
	asm := generate(t, `
		class Main {
			main() : Object {
				if "a" = "b" then 1 else 0 fi
			};
		};
	`)
	if strings.Contains(asm, "String.equals") {
		t.Fatalf("string equality must not call an undefined runtime symbol:\n%s", asm)
	}
	if !strings.Contains(asm, "lb\t") {
		t.Fatalf("string equality must emit a byte-by-byte compare loop:\n%s", asm)
	}
	if !strings.Contains(asm, "bne\t") {
		t.Fatalf("string equality's byte-compare loop must branch on mismatch:\n%s", asm)
	}
	snaps.MatchSnapshot(t, "string_equality", asm)
}

func TestGenerateEqualityComparesByDynamicTagNotStaticType(t *testing.T) {
	// "let x:Object <- 5, y:Object <- 1+4 in x = y" is dynamically
	// 5 = 5 even though both bindings carry the static type Object; the
	// generated comparison must not degrade to a bare pointer compare.
	asm := generate(t, `
		class Main {
			main() : Object {
				let x : Object <- 5, y : Object <- 1 + 4 in x = y
			};
		};
	`)
	if !strings.Contains(asm, "eq_check_value") {
		t.Fatalf("equality on Object-typed operands must still dispatch on the runtime tag:\n%s", asm)
	}
}
