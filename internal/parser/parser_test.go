package parser

import (
	"testing"

	"github.com/coolc/coolc/internal/ast"
	"github.com/coolc/coolc/internal/lexer"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	return prog
}

func TestParseEmptyMainClass(t *testing.T) {
	prog := parse(t, `class Main { main() : Object { 0 }; };`)
	if len(prog.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(prog.Classes))
	}
	main := prog.Classes[0]
	if main.Name != "Main" || main.Parent != "Object" || main.HasParent {
		t.Errorf("got %+v", main)
	}
	if len(main.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(main.Features))
	}
	m, ok := main.Features[0].(*ast.Method)
	if !ok {
		t.Fatalf("expected *ast.Method, got %T", main.Features[0])
	}
	if m.Name != "main" || m.RetType != "Object" {
		t.Errorf("got %+v", m)
	}
	if _, ok := m.Body.(*ast.IntConst); !ok {
		t.Errorf("expected IntConst body, got %T", m.Body)
	}
}

func TestParseInheritsAndAttribute(t *testing.T) {
	prog := parse(t, `class A inherits B { x : Int <- 5; };`)
	a := prog.Classes[0]
	if a.Parent != "B" || !a.HasParent {
		t.Errorf("got parent %q hasParent %v", a.Parent, a.HasParent)
	}
	attr := a.Features[0].(*ast.Attribute)
	if attr.Name != "x" || attr.Type != "Int" {
		t.Errorf("got %+v", attr)
	}
	if _, ok := attr.Init.(*ast.IntConst); !ok {
		t.Errorf("expected init IntConst, got %T", attr.Init)
	}
}

func TestParseDispatchChainAndStaticDispatch(t *testing.T) {
	prog := parse(t, `class Main { main() : Object { self.out_string("x")@IO.copy() }; };`)
	m := prog.Classes[0].Features[0].(*ast.Method)
	sd, ok := m.Body.(*ast.StaticDispatch)
	if !ok {
		t.Fatalf("expected StaticDispatch, got %T", m.Body)
	}
	if sd.StaticType != "IO" || sd.Name != "copy" {
		t.Errorf("got %+v", sd)
	}
	if _, ok := sd.Target.(*ast.Dispatch); !ok {
		t.Errorf("expected Dispatch target, got %T", sd.Target)
	}
}

func TestParseCaseOrderingPreserved(t *testing.T) {
	prog := parse(t, `class Main { main() : Object {
		case self of
			x : A => 1;
			y : C => 2;
		esac
	}; };`)
	m := prog.Classes[0].Features[0].(*ast.Method)
	c := m.Body.(*ast.Case)
	if len(c.Arms) != 2 || c.Arms[0].Type != "A" || c.Arms[1].Type != "C" {
		t.Errorf("got %+v", c.Arms)
	}
}

func TestParseLetSequentialBindings(t *testing.T) {
	prog := parse(t, `class Main { main() : Object {
		let a : Int <- 1, b : Int <- a + 1 in b
	}; };`)
	m := prog.Classes[0].Features[0].(*ast.Method)
	let := m.Body.(*ast.Let)
	if len(let.Bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(let.Bindings))
	}
	if let.Bindings[1].Name != "b" {
		t.Errorf("got %+v", let.Bindings[1])
	}
}

func TestParsePrecedenceArithmeticBeforeCompare(t *testing.T) {
	prog := parse(t, `class Main { main() : Object { 1 + 2 < 3 * 4 }; };`)
	m := prog.Classes[0].Features[0].(*ast.Method)
	cmp, ok := m.Body.(*ast.Compare)
	if !ok {
		t.Fatalf("expected Compare at top, got %T", m.Body)
	}
	if _, ok := cmp.Left.(*ast.BinOp); !ok {
		t.Errorf("expected BinOp left, got %T", cmp.Left)
	}
	if _, ok := cmp.Right.(*ast.BinOp); !ok {
		t.Errorf("expected BinOp right, got %T", cmp.Right)
	}
}
