package lexer

import (
	"testing"

	"github.com/coolc/coolc/internal/token"
)

func collect(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestNextTokenPunctuationAndKeywords(t *testing.T) {
	input := `class Main inherits IO { main():Object { 0 }; };`
	want := []token.Kind{
		token.CLASS, token.TYPEID, token.INHERITS, token.TYPEID, token.LBRACE,
		token.OBJECTID, token.LPAREN, token.RPAREN, token.COLON, token.TYPEID,
		token.LBRACE, token.INTEGER, token.RBRACE, token.SEMI, token.RBRACE,
		token.SEMI, token.EOF,
	}

	toks := collect(input)
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got kind %v, want %v (%q)", i, toks[i].Kind, k, toks[i].Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `<- <= < = => ~`
	want := []token.Kind{token.ASSIGN, token.LE, token.LT, token.EQ, token.ARROW, token.TILDE, token.EOF}
	toks := collect(input)
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(`"a\nb\tc\\d"`)
	if toks[0].Kind != token.STRING {
		t.Fatalf("expected STRING, got %v", toks[0].Kind)
	}
	if toks[0].Literal != "a\nb\tc\\d" {
		t.Errorf("got %q", toks[0].Literal)
	}
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	l := New("\"abc")
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Error("expected a lexical error for unterminated string")
	}
}

func TestLineComment(t *testing.T) {
	toks := collect("-- comment\n0")
	if toks[0].Kind != token.INTEGER || toks[0].Literal != "0" {
		t.Errorf("got %v", toks[0])
	}
}

func TestNestedBlockComment(t *testing.T) {
	toks := collect("(* outer (* inner *) still *) 42")
	if toks[0].Kind != token.INTEGER || toks[0].Literal != "42" {
		t.Errorf("got %v", toks[0])
	}
}

func TestTrueFalseCaseRule(t *testing.T) {
	toks := collect("true false True False")
	if toks[0].Kind != token.TRUE || toks[1].Kind != token.FALSE {
		t.Fatalf("got %v %v", toks[0].Kind, toks[1].Kind)
	}
	// True/False with an uppercase first letter are TYPEIDs, not booleans.
	if toks[2].Kind != token.TYPEID || toks[3].Kind != token.TYPEID {
		t.Errorf("got %v %v", toks[2].Kind, toks[3].Kind)
	}
}
