// Package parser implements a recursive-descent / precedence-climbing
// parser that turns a COOL token stream into the internal/ast parse
// tree.
package parser

import (
	"fmt"
	"strconv"

	"github.com/coolc/coolc/internal/ast"
	"github.com/coolc/coolc/internal/lexer"
	"github.com/coolc/coolc/internal/token"
)

// ParseError is a single syntax diagnostic.
type ParseError struct {
	Message string
	Pos     token.Position
}

// Parser consumes a lexer.Lexer and produces an *ast.Program.
type Parser struct {
	l       *lexer.Lexer
	errors  []ParseError
	cur     token.Token
	peek    token.Token
}

// New creates a Parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns syntax diagnostics accumulated while parsing.
func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) addError(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, ParseError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (p *Parser) expect(k token.Kind) token.Token {
	tok := p.cur
	if p.cur.Kind != k {
		p.addError(p.cur.Pos, "syntax error at or near %q", p.cur.Literal)
	} else {
		p.next()
	}
	return tok
}

// ParseProgram parses `class+`, each terminated by `;`, until EOF.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.cur.Kind != token.EOF {
		if p.cur.Kind != token.CLASS {
			p.addError(p.cur.Pos, "expected class definition, got %q", p.cur.Literal)
			p.next()
			continue
		}
		cls := p.parseClass()
		if cls != nil {
			prog.Classes = append(prog.Classes, cls)
		}
		p.expect(token.SEMI)
	}
	return prog
}

func (p *Parser) parseClass() *ast.Class {
	pos := p.cur.Pos
	p.expect(token.CLASS)
	name := p.expect(token.TYPEID).Literal

	cls := &ast.Class{Name: name, Pos: pos, Parent: "Object"}
	if p.cur.Kind == token.INHERITS {
		p.next()
		cls.Parent = p.expect(token.TYPEID).Literal
		cls.HasParent = true
	}

	p.expect(token.LBRACE)
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		feat := p.parseFeature()
		if feat != nil {
			cls.Features = append(cls.Features, feat)
		}
		p.expect(token.SEMI)
	}
	p.expect(token.RBRACE)
	return cls
}

func (p *Parser) parseFeature() ast.Feature {
	pos := p.cur.Pos
	name := p.expect(token.OBJECTID).Literal

	if p.cur.Kind == token.LPAREN {
		p.next()
		var formals []*ast.Formal
		for p.cur.Kind != token.RPAREN {
			formals = append(formals, p.parseFormal())
			if p.cur.Kind == token.COMMA {
				p.next()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		p.expect(token.COLON)
		retType := p.expect(token.TYPEID).Literal
		p.expect(token.LBRACE)
		body := p.parseExpr(lowest)
		p.expect(token.RBRACE)
		return &ast.Method{Name: name, Formals: formals, RetType: retType, Body: body, Pos: pos}
	}

	p.expect(token.COLON)
	typ := p.expect(token.TYPEID).Literal
	var init ast.Expr
	if p.cur.Kind == token.ASSIGN {
		p.next()
		init = p.parseExpr(lowest)
	}
	return &ast.Attribute{Name: name, Type: typ, Init: init, Pos: pos}
}

func (p *Parser) parseFormal() *ast.Formal {
	pos := p.cur.Pos
	name := p.expect(token.OBJECTID).Literal
	p.expect(token.COLON)
	typ := p.expect(token.TYPEID).Literal
	return &ast.Formal{Name: name, Type: typ, Pos: pos}
}

// Precedence levels, lowest to highest, per the COOL operator table.
const (
	lowest int = iota
	precAssign
	precNot
	precCompare
	precAdd
	precMul
	precIsvoid
	precUnary
	precStatic
	precDispatch
)

func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parsePrefix()
	for {
		prec, ok := infixPrecedence(p.cur.Kind)
		if !ok || prec <= minPrec {
			return left
		}
		left = p.parseInfix(left)
	}
}

func infixPrecedence(k token.Kind) (int, bool) {
	switch k {
	case token.DOT:
		return precDispatch, true
	case token.AT:
		return precStatic, true
	case token.STAR, token.SLASH:
		return precMul, true
	case token.PLUS, token.MINUS:
		return precAdd, true
	case token.LT, token.LE, token.EQ:
		return precCompare, true
	}
	return 0, false
}

func (p *Parser) parsePrefix() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.OBJECTID:
		name := p.cur.Literal
		if p.peek.Kind == token.ASSIGN {
			p.next()
			p.next()
			val := p.parseExpr(precAssign - 1)
			return &ast.Assign{Base: ast.NewExprBase(pos), Name: name, Value: val}
		}
		p.next()
		if p.cur.Kind == token.LPAREN {
			return p.finishCall(pos, name)
		}
		return &ast.ObjectRef{Base: ast.NewExprBase(pos), Name: name}
	case token.INTEGER:
		lit := p.cur.Literal
		p.next()
		v, _ := strconv.ParseInt(lit, 10, 32)
		return &ast.IntConst{Base: ast.NewExprBase(pos), Value: int32(v)}
	case token.STRING:
		lit := p.cur.Literal
		p.next()
		return &ast.StringConst{Base: ast.NewExprBase(pos), Value: lit}
	case token.TRUE:
		p.next()
		return &ast.BoolConst{Base: ast.NewExprBase(pos), Value: true}
	case token.FALSE:
		p.next()
		return &ast.BoolConst{Base: ast.NewExprBase(pos), Value: false}
	case token.LPAREN:
		p.next()
		inner := p.parseExpr(lowest)
		p.expect(token.RPAREN)
		return &ast.Paren{Base: ast.NewExprBase(pos), Inner: inner}
	case token.LBRACE:
		p.next()
		var exprs []ast.Expr
		for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
			exprs = append(exprs, p.parseExpr(lowest))
			p.expect(token.SEMI)
		}
		p.expect(token.RBRACE)
		return &ast.Block{Base: ast.NewExprBase(pos), Exprs: exprs}
	case token.IF:
		p.next()
		cond := p.parseExpr(lowest)
		p.expect(token.THEN)
		then := p.parseExpr(lowest)
		p.expect(token.ELSE)
		els := p.parseExpr(lowest)
		p.expect(token.FI)
		return &ast.If{Base: ast.NewExprBase(pos), Cond: cond, Then: then, Else: els}
	case token.WHILE:
		p.next()
		cond := p.parseExpr(lowest)
		p.expect(token.LOOP)
		body := p.parseExpr(lowest)
		p.expect(token.POOL)
		return &ast.While{Base: ast.NewExprBase(pos), Cond: cond, Body: body}
	case token.LET:
		return p.parseLet(pos)
	case token.CASE:
		p.next()
		subject := p.parseExpr(lowest)
		p.expect(token.OF)
		var arms []*ast.CaseArm
		for p.cur.Kind != token.ESAC && p.cur.Kind != token.EOF {
			arms = append(arms, p.parseCaseArm())
		}
		p.expect(token.ESAC)
		return &ast.Case{Base: ast.NewExprBase(pos), Subject: subject, Arms: arms}
	case token.NEW:
		p.next()
		typ := p.expect(token.TYPEID).Literal
		return &ast.New{Base: ast.NewExprBase(pos), Type: typ}
	case token.ISVOID:
		p.next()
		return &ast.IsVoid{Base: ast.NewExprBase(pos), Expr: p.parseExpr(precIsvoid)}
	case token.TILDE:
		p.next()
		return &ast.Neg{Base: ast.NewExprBase(pos), Expr: p.parseExpr(precUnary)}
	case token.NOT:
		p.next()
		return &ast.Not{Base: ast.NewExprBase(pos), Expr: p.parseExpr(precNot)}
	default:
		p.addError(pos, "syntax error at or near %q", p.cur.Literal)
		p.next()
		return &ast.IntConst{Base: ast.NewExprBase(pos), Value: 0}
	}
}

func (p *Parser) parseLet(pos token.Position) ast.Expr {
	p.expect(token.LET)
	var bindings []*ast.LetBinding
	for {
		bpos := p.cur.Pos
		name := p.expect(token.OBJECTID).Literal
		p.expect(token.COLON)
		typ := p.expect(token.TYPEID).Literal
		var init ast.Expr
		if p.cur.Kind == token.ASSIGN {
			p.next()
			init = p.parseExpr(precAssign)
		}
		bindings = append(bindings, &ast.LetBinding{Name: name, Type: typ, Init: init, Pos: bpos})
		if p.cur.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(token.IN)
	body := p.parseExpr(precAssign - 1)
	return &ast.Let{Base: ast.NewExprBase(pos), Bindings: bindings, Body: body}
}

func (p *Parser) parseCaseArm() *ast.CaseArm {
	pos := p.cur.Pos
	name := p.expect(token.OBJECTID).Literal
	p.expect(token.COLON)
	typ := p.expect(token.TYPEID).Literal
	p.expect(token.ARROW)
	body := p.parseExpr(lowest)
	p.expect(token.SEMI)
	return &ast.CaseArm{Name: name, Type: typ, Body: body, Pos: pos}
}

func (p *Parser) finishCall(pos token.Position, name string) ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for p.cur.Kind != token.RPAREN {
		args = append(args, p.parseExpr(precAssign))
		if p.cur.Kind == token.COMMA {
			p.next()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return &ast.Call{Base: ast.NewExprBase(pos), Name: name, Args: args}
}

func (p *Parser) parseInfix(left ast.Expr) ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.DOT:
		p.next()
		name := p.expect(token.OBJECTID).Literal
		p.expect(token.LPAREN)
		var args []ast.Expr
		for p.cur.Kind != token.RPAREN {
			args = append(args, p.parseExpr(precAssign))
			if p.cur.Kind == token.COMMA {
				p.next()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		return &ast.Dispatch{Base: ast.NewExprBase(pos), Target: left, Name: name, Args: args}
	case token.AT:
		p.next()
		staticType := p.expect(token.TYPEID).Literal
		p.expect(token.DOT)
		name := p.expect(token.OBJECTID).Literal
		p.expect(token.LPAREN)
		var args []ast.Expr
		for p.cur.Kind != token.RPAREN {
			args = append(args, p.parseExpr(precAssign))
			if p.cur.Kind == token.COMMA {
				p.next()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		return &ast.StaticDispatch{Base: ast.NewExprBase(pos), Target: left, StaticType: staticType, Name: name, Args: args}
	case token.STAR:
		p.next()
		return &ast.BinOp{Base: ast.NewExprBase(pos), Left: left, Right: p.parseExpr(precMul), Op: ast.Mul}
	case token.SLASH:
		p.next()
		return &ast.BinOp{Base: ast.NewExprBase(pos), Left: left, Right: p.parseExpr(precMul), Op: ast.Div}
	case token.PLUS:
		p.next()
		return &ast.BinOp{Base: ast.NewExprBase(pos), Left: left, Right: p.parseExpr(precAdd), Op: ast.Add}
	case token.MINUS:
		p.next()
		return &ast.BinOp{Base: ast.NewExprBase(pos), Left: left, Right: p.parseExpr(precAdd), Op: ast.Sub}
	case token.LT:
		p.next()
		return &ast.Compare{Base: ast.NewExprBase(pos), Left: left, Right: p.parseExpr(precCompare), Op: ast.Less}
	case token.LE:
		p.next()
		return &ast.Compare{Base: ast.NewExprBase(pos), Left: left, Right: p.parseExpr(precCompare), Op: ast.LessEqual}
	case token.EQ:
		p.next()
		return &ast.Eq{Base: ast.NewExprBase(pos), Left: left, Right: p.parseExpr(precCompare)}
	default:
		return left
	}
}
