// Package ast defines the parse-tree node types produced by the COOL
// parser: the contract the semantic analyzer consumes. Every node
// carries the source line it originated from, per the language
// specification's data model.
package ast

import "github.com/coolc/coolc/internal/token"

// Program is the root of a parse tree: an ordered list of class
// declarations in source-appearance order.
type Program struct {
	Classes []*Class
}

// Class is a single `class NAME [inherits PARENT] { features }` form.
// HasParent distinguishes "no inherits clause" (parent defaults to
// Object) from an explicit `inherits Object`; both are legal, and the
// class collector reads only Parent, so it treats them alike.
type Class struct {
	Name      string
	Parent    string
	Features  []Feature
	Pos       token.Position
	HasParent bool
}

// Feature is either an Attribute or a Method declaration.
type Feature interface {
	featureNode()
	FeaturePos() token.Position
}

// Attribute is `name : Type [<- init];`.
type Attribute struct {
	Init Expr
	Name string
	Type string
	Pos  token.Position
}

func (a *Attribute) featureNode()                  {}
func (a *Attribute) FeaturePos() token.Position { return a.Pos }

// Formal is a single method parameter, `name : Type`.
type Formal struct {
	Name string
	Type string
	Pos  token.Position
}

// Method is `name(formals) : ReturnType { body };`.
type Method struct {
	Body     Expr
	Name     string
	RetType  string
	Formals  []*Formal
	Pos      token.Position
}

func (m *Method) featureNode()               {}
func (m *Method) FeaturePos() token.Position { return m.Pos }

// Expr is the untyped expression sum produced by the parser. Every
// concrete variant below corresponds 1:1 to a construct in the
// specification's data model.
type Expr interface {
	exprNode()
	ExprPos() token.Position
}

type Base struct {
	Pos token.Position
}

func (b Base) ExprPos() token.Position { return b.Pos }

// IntConst is an integer literal.
type IntConst struct {
	Base
	Value int32
}

// BoolConst is a boolean literal.
type BoolConst struct {
	Base
	Value bool
}

// StringConst is a string literal; Value holds the already-unescaped
// raw bytes (escape translation happens in the lexer).
type StringConst struct {
	Base
	Value string
}

// ObjectRef is a bare identifier reference, including `self`.
type ObjectRef struct {
	Base
	Name string
}

// Assign is `name <- value`.
type Assign struct {
	Base
	Name  string
	Value Expr
}

// Block is `{ e1; e2; ...; en; }`, a sequence whose value is en's.
type Block struct {
	Base
	Exprs []Expr
}

// If is `if cond then then else els fi`.
type If struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

// While is `while cond loop body pool`.
type While struct {
	Base
	Cond Expr
	Body Expr
}

// LetBinding is one `name : Type [<- init]` clause of a let.
type LetBinding struct {
	Init Expr
	Name string
	Type string
	Pos  token.Position
}

// Let is `let b1, b2, ... in body`, one node holding every binding in
// source order; each binding is visible to the bindings after it and
// to the body.
type Let struct {
	Base
	Bindings []*LetBinding
	Body     Expr
}

// CaseArm is one `name : Type => body` branch of a case expression.
type CaseArm struct {
	Body Expr
	Name string
	Type string
	Pos  token.Position
}

// Case is `case subject of arm+ esac`.
type Case struct {
	Base
	Subject Expr
	Arms    []*CaseArm
}

// New is `new Type`.
type New struct {
	Base
	Type string
}

// IsVoid is `isvoid e`.
type IsVoid struct {
	Base
	Expr Expr
}

// Neg is `~e`, integer negation.
type Neg struct {
	Base
	Expr Expr
}

// Not is `not e`, boolean negation.
type Not struct {
	Base
	Expr Expr
}

// ArithOp identifies an arithmetic operator.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
)

// BinOp is an arithmetic expression `e1 op e2`.
type BinOp struct {
	Base
	Left  Expr
	Right Expr
	Op    ArithOp
}

// CompareOp identifies an integer comparison operator.
type CompareOp int

const (
	Less CompareOp = iota
	LessEqual
)

// Compare is `e1 < e2` or `e1 <= e2`.
type Compare struct {
	Base
	Left  Expr
	Right Expr
	Op    CompareOp
}

// Eq is `e1 = e2`.
type Eq struct {
	Base
	Left  Expr
	Right Expr
}

// Call is an implicit-self method invocation `name(args)`.
type Call struct {
	Base
	Name string
	Args []Expr
}

// Dispatch is `target.name(args)`.
type Dispatch struct {
	Base
	Target Expr
	Name   string
	Args   []Expr
}

// StaticDispatch is `target@Type.name(args)`.
type StaticDispatch struct {
	Base
	Target     Expr
	Name       string
	StaticType string
	Args       []Expr
}

// Paren is a parenthesized expression, kept as its own node in the
// parse tree; type checking unwraps it, so the typed tree has no
// Paren node.
type Paren struct {
	Base
	Inner Expr
}

func (*IntConst) exprNode()       {}
func (*BoolConst) exprNode()      {}
func (*StringConst) exprNode()    {}
func (*ObjectRef) exprNode()      {}
func (*Assign) exprNode()         {}
func (*Block) exprNode()          {}
func (*If) exprNode()             {}
func (*While) exprNode()          {}
func (*Let) exprNode()            {}
func (*Case) exprNode()           {}
func (*New) exprNode()            {}
func (*IsVoid) exprNode()         {}
func (*Neg) exprNode()            {}
func (*Not) exprNode()            {}
func (*BinOp) exprNode()          {}
func (*Compare) exprNode()        {}
func (*Eq) exprNode()             {}
func (*Call) exprNode()           {}
func (*Dispatch) exprNode()       {}
func (*StaticDispatch) exprNode() {}
func (*Paren) exprNode()          {}

// NewExprBase constructs the shared Base{} for a node at pos. Used by
// the parser when assembling node literals.
func NewExprBase(pos token.Position) Base { return Base{Pos: pos} }
