package errors

import (
	"strings"
	"testing"

	"github.com/coolc/coolc/internal/token"
)

func TestCompilerErrorLine(t *testing.T) {
	tests := []struct {
		name string
		err  *CompilerError
		want string
	}{
		{
			name: "with file",
			err:  NewHierarchyError(token.Position{Line: 3, Column: 1}, "undefined class Foo", "", "a.cl"),
			want: `"a.cl", line 3: undefined class Foo`,
		},
		{
			name: "without file",
			err:  NewTypeError(token.Position{Line: 7, Column: 2}, "unbound identifier x", "", ""),
			want: "line 7: unbound identifier x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Line(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatIncludesCaret(t *testing.T) {
	err := NewFeatureError(token.Position{Line: 1, Column: 5}, "duplicate attribute x", "x : Int;", "a.cl")
	out := err.Format(false)
	if !strings.Contains(out, "x : Int;") {
		t.Errorf("Format() missing source line: %s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("Format() missing caret: %s", out)
	}
}

func TestFormatErrorsMultiple(t *testing.T) {
	errs := []*CompilerError{
		NewHierarchyError(token.Position{Line: 1, Column: 1}, "first", "", ""),
		NewHierarchyError(token.Position{Line: 2, Column: 1}, "second", "", ""),
	}
	out := FormatErrors(errs, false)
	if !strings.Contains(out, "2 error(s)") {
		t.Errorf("FormatErrors() missing count: %s", out)
	}
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("FormatErrors() missing messages: %s", out)
	}
}

func TestLines(t *testing.T) {
	errs := []*CompilerError{
		NewTypeError(token.Position{Line: 4, Column: 1}, "bad type", "", "b.cl"),
	}
	got := Lines(errs)
	if len(got) != 1 || got[0] != `"b.cl", line 4: bad type` {
		t.Errorf("Lines() = %v", got)
	}
}
