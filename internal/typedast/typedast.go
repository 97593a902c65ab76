// Package typedast defines the typed expression tree produced by the
// type checker and consumed by code generation: every node of the
// parser's untyped ast.Expr gains a resolved static type, stored as a
// class tag (or one of the two sentinels below).
package typedast

import "github.com/coolc/coolc/internal/token"

// SelfType and Poison are sentinel static types alongside ordinary
// class tags. SelfType marks SELF_TYPE, resolved against the
// enclosing class at dispatch time rather than statically. Poison
// marks an expression whose type could not be determined because of
// an earlier reported error; it is compatible with every other type
// so a single mistake does not cascade into unrelated diagnostics.
const (
	SelfType = -1
	Poison   = -2
)

// Expr is the typed expression sum. Every concrete variant embeds
// Base, which carries the two fields every node needs: its resolved
// static type and its source position.
type Expr interface {
	exprNode()
	ExprPos() token.Position
	ExprType() int
}

// Base is embedded by every typed node.
type Base struct {
	Pos  token.Position
	Type int
}

func (b Base) ExprPos() token.Position { return b.Pos }
func (b Base) ExprType() int           { return b.Type }

// IntConst is a typed integer literal; always typed Int.
type IntConst struct {
	Base
	Value int32
}

// BoolConst is a typed boolean literal; always typed Bool.
type BoolConst struct {
	Base
	Value bool
}

// StringConst is a typed string literal; always typed String.
type StringConst struct {
	Base
	Value string
}

// ObjectRef is a typed identifier reference, resolved to a storage
// location by the code generator (self, a formal, a let-binding, or
// an attribute) rather than here.
type ObjectRef struct {
	Base
	Name string
}

// Assign is a typed `name <- value`; Type is Value's type.
type Assign struct {
	Base
	Name  string
	Value Expr
}

// Block is a typed sequence; Type is the last expression's type.
type Block struct {
	Base
	Exprs []Expr
}

// If is a typed conditional; Type is the LUB of Then and Else.
type If struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

// While is always typed Object regardless of Body's type.
type While struct {
	Base
	Cond Expr
	Body Expr
}

// LetBinding is one typed binding of a let expression.
type LetBinding struct {
	Init Expr
	Name string
	Type int
	Pos  token.Position
}

// Let is a typed `let` expression; Type is Body's type.
type Let struct {
	Base
	Bindings []*LetBinding
	Body     Expr
}

// CaseArm is one typed branch of a case expression. BranchType is the
// arm's declared class (never SelfType); the arm is only taken when
// the scrutinee's runtime tag falls in BranchType's sub-hierarchy.
type CaseArm struct {
	Body       Expr
	Name       string
	BranchType int
	Pos        token.Position
}

// Case is a typed case expression. Arms is sorted narrowest-type-first
// by the type checker so the code generator can emit a linear dynamic
// type test without re-sorting (spec: subtype-before-supertype
// ordering).
type Case struct {
	Base
	Subject Expr
	Arms    []*CaseArm
}

// New is `new Type`; Type is the resolved class (or SelfType for
// `new SELF_TYPE`).
type New struct {
	Base
	NewType int
}

// IsVoid is always typed Bool.
type IsVoid struct {
	Base
	Expr Expr
}

// Neg is integer negation, always typed Int.
type Neg struct {
	Base
	Expr Expr
}

// Not is boolean negation, always typed Bool.
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

// BinOp is a typed arithmetic expression, always typed Int.
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

// Compare is a typed `<`/`<=` comparison, always typed Bool.
type Compare struct {
	Base
	Left  Expr
	Right Expr
	Op    CompareOp
}

// Eq is a typed `=` comparison, always typed Bool. Kind (EqStr/EqInt/
// EqBool) records the basic type both operands statically share, or
// EqRef otherwise; the code generator does not read it and compares
// by the operands' runtime tags instead.
type EqKind int

const (
	EqRef EqKind = iota
	EqInt
	EqBool
	EqStr
)

type Eq struct {
	Base
	Left  Expr
	Right Expr
	Kind  EqKind
}

// Call is a typed implicit-self dispatch. StaticClass is the
// enclosing class used to resolve the method at compile time for
// signature checking; Type carries the instantiated result type.
type Call struct {
	Base
	Name        string
	Args        []Expr
	StaticClass int
}

// Dispatch is a typed dynamic dispatch `target.name(args)`.
// TargetStaticType is Target's static type (SelfType resolved to the
// enclosing class), used to look up the method's formal/return
// signature; the actual dispatch-table lookup at runtime uses
// Target's dynamic tag.
type Dispatch struct {
	Base
	Target           Expr
	Name             string
	Args             []Expr
	TargetStaticType int
}

// StaticDispatch is a typed `target@Type.name(args)`; DispatchClass is
// the resolved `Type`, whose own method table (not Target's dynamic
// type) supplies the implementation.
type StaticDispatch struct {
	Base
	Target        Expr
	Name          string
	Args          []Expr
	DispatchClass int
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
