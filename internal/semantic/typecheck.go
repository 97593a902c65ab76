package semantic

import (
	"fmt"
	"sort"

	"github.com/coolc/coolc/internal/ast"
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/errors"
	"github.com/coolc/coolc/internal/token"
	"github.com/coolc/coolc/internal/typedast"
)

// checker threads the state needed to type an expression tree: the
// finalised class table, the identifier environment (a stack of
// scopes, innermost last), which class SELF_TYPE currently resolves
// to, and the running diagnostics list.
type checker struct {
	table *classtable.Table
	file  string
	errs  *[]*errors.CompilerError

	env   []map[string]int
	class int
}

func newChecker(table *classtable.Table, file string, errs *[]*errors.CompilerError, class int) *checker {
	return &checker{table: table, file: file, errs: errs, class: class, env: []map[string]int{make(map[string]int)}}
}

func (c *checker) pushScope() { c.env = append(c.env, make(map[string]int)) }
func (c *checker) popScope()  { c.env = c.env[:len(c.env)-1] }

func (c *checker) define(name string, t int) { c.env[len(c.env)-1][name] = t }

func (c *checker) lookup(name string) (int, bool) {
	for i := len(c.env) - 1; i >= 0; i-- {
		if t, ok := c.env[i][name]; ok {
			return t, true
		}
	}
	return 0, false
}

func (c *checker) errf(pos token.Position, format string, args ...interface{}) {
	*c.errs = append(*c.errs, errors.NewTypeError(pos, fmt.Sprintf(format, args...), "", c.file))
}

// conforms reports whether sub is assignable where sup is expected,
// substituting SELF_TYPE with the checker's enclosing class. Poison
// conforms to (and accepts) everything, so one bad expression never
// cascades into unrelated diagnostics.
func (c *checker) conforms(sub, sup int) bool {
	if sub == classtable.Poison || sup == classtable.Poison {
		return true
	}
	if sup == classtable.SelfType {
		return sub == classtable.SelfType
	}
	if sub == classtable.SelfType {
		sub = c.class
	}
	return c.table.IsSubclassOf(sub, sup)
}

func (c *checker) lub(a, b int) int {
	if a == classtable.Poison {
		return b
	}
	if b == classtable.Poison {
		return a
	}
	if a == classtable.SelfType && b == classtable.SelfType {
		return classtable.SelfType
	}
	if a == classtable.SelfType {
		a = c.class
	}
	if b == classtable.SelfType {
		b = c.class
	}
	return c.table.LUB(a, b)
}

func (c *checker) typeName(idx int) string { return typeNameOf(c.table, idx) }

// checkAttrInit type-checks one attribute's initializer in the
// context of its declaring class, with every visible attribute (its
// own and inherited) already bound in scope.
func checkAttrInit(table *classtable.Table, file string, errs *[]*errors.CompilerError, classIdx int, declType int, init ast.Expr, pos token.Position) typedast.Expr {
	c := newChecker(table, file, errs, classIdx)
	bindSelfAndAttrs(c, classIdx)
	typed := c.infer(init)
	if !c.conforms(typed.ExprType(), declType) {
		c.errf(pos, "Inferred type %s of initialization of attribute does not conform to declared type %s.",
			c.typeName(typed.ExprType()), c.typeName(declType))
	}
	return typed
}

// checkMethodBody type-checks one method's body in the context of its
// declaring class, with self, every visible attribute, and the
// method's own formals bound in scope.
func checkMethodBody(table *classtable.Table, file string, errs *[]*errors.CompilerError, classIdx int, m *classtable.Method, astMethod *ast.Method) typedast.Expr {
	c := newChecker(table, file, errs, classIdx)
	bindSelfAndAttrs(c, classIdx)
	for _, f := range m.Formals {
		c.define(f.Name, f.DeclType)
	}
	typed := c.infer(astMethod.Body)
	if !c.conforms(typed.ExprType(), m.RetType) {
		c.errf(astMethod.Pos, "Inferred return type %s of method %s does not conform to declared return type %s.",
			c.typeName(typed.ExprType()), m.Name, c.typeName(m.RetType))
	}
	return typed
}

func bindSelfAndAttrs(c *checker, classIdx int) {
	c.define("self", classtable.SelfType)
	for _, a := range c.table.AllAttributes(classIdx) {
		c.define(a.Name, a.DeclType)
	}
}

func base(pos token.Position, t int) typedast.Base { return typedast.Base{Pos: pos, Type: t} }

// infer type-checks e and returns its typed-AST equivalent.
func (c *checker) infer(e ast.Expr) typedast.Expr {
	switch n := e.(type) {
	case *ast.IntConst:
		return &typedast.IntConst{Base: base(n.Pos, c.tag("Int")), Value: n.Value}
	case *ast.BoolConst:
		return &typedast.BoolConst{Base: base(n.Pos, c.tag("Bool")), Value: n.Value}
	case *ast.StringConst:
		return &typedast.StringConst{Base: base(n.Pos, c.tag("String")), Value: n.Value}
	case *ast.ObjectRef:
		return c.inferObjectRef(n)
	case *ast.Assign:
		return c.inferAssign(n)
	case *ast.Block:
		return c.inferBlock(n)
	case *ast.If:
		return c.inferIf(n)
	case *ast.While:
		return c.inferWhile(n)
	case *ast.Let:
		return c.inferLet(n)
	case *ast.Case:
		return c.inferCase(n)
	case *ast.New:
		return c.inferNew(n)
	case *ast.IsVoid:
		inner := c.infer(n.Expr)
		return &typedast.IsVoid{Base: base(n.Pos, c.tag("Bool")), Expr: inner}
	case *ast.Neg:
		inner := c.infer(n.Expr)
		if !c.conforms(inner.ExprType(), c.tag("Int")) {
			c.errf(n.Pos, "Argument of '~' has type %s instead of Int.", c.typeName(inner.ExprType()))
		}
		return &typedast.Neg{Base: base(n.Pos, c.tag("Int")), Expr: inner}
	case *ast.Not:
		inner := c.infer(n.Expr)
		if !c.conforms(inner.ExprType(), c.tag("Bool")) {
			c.errf(n.Pos, "Argument of 'not' has type %s instead of Bool.", c.typeName(inner.ExprType()))
		}
		return &typedast.Not{Base: base(n.Pos, c.tag("Bool")), Expr: inner}
	case *ast.BinOp:
		return c.inferBinOp(n)
	case *ast.Compare:
		return c.inferCompare(n)
	case *ast.Eq:
		return c.inferEq(n)
	case *ast.Call:
		return c.inferCall(n)
	case *ast.Dispatch:
		return c.inferDispatch(n)
	case *ast.StaticDispatch:
		return c.inferStaticDispatch(n)
	case *ast.Paren:
		return c.infer(n.Inner)
	default:
		c.errf(n.ExprPos(), "internal: unhandled expression node during type checking")
		return &typedast.IntConst{Base: base(n.ExprPos(), classtable.Poison), Value: 0}
	}
}

func (c *checker) tag(name string) int {
	idx, _ := c.table.Index(name)
	return idx
}

func (c *checker) inferObjectRef(n *ast.ObjectRef) typedast.Expr {
	t, ok := c.lookup(n.Name)
	if !ok {
		c.errf(n.Pos, "Undeclared identifier %s.", n.Name)
		t = classtable.Poison
	}
	return &typedast.ObjectRef{Base: base(n.Pos, t), Name: n.Name}
}

func (c *checker) inferAssign(n *ast.Assign) typedast.Expr {
	if n.Name == "self" {
		c.errf(n.Pos, "Cannot assign to 'self'.")
	}
	declType, ok := c.lookup(n.Name)
	if !ok {
		c.errf(n.Pos, "Undeclared identifier %s in assignment.", n.Name)
		declType = classtable.Poison
	}
	value := c.infer(n.Value)
	if !c.conforms(value.ExprType(), declType) {
		c.errf(n.Pos, "Type %s of assigned expression does not conform to declared type %s of identifier %s.",
			c.typeName(value.ExprType()), c.typeName(declType), n.Name)
	}
	return &typedast.Assign{Base: base(n.Pos, value.ExprType()), Name: n.Name, Value: value}
}

func (c *checker) inferBlock(n *ast.Block) typedast.Expr {
	exprs := make([]typedast.Expr, len(n.Exprs))
	var last int
	for i, sub := range n.Exprs {
		exprs[i] = c.infer(sub)
		last = exprs[i].ExprType()
	}
	return &typedast.Block{Base: base(n.Pos, last), Exprs: exprs}
}

func (c *checker) inferIf(n *ast.If) typedast.Expr {
	cond := c.infer(n.Cond)
	if !c.conforms(cond.ExprType(), c.tag("Bool")) {
		c.errf(n.Pos, "If condition does not have type Bool.")
	}
	then := c.infer(n.Then)
	els := c.infer(n.Else)
	return &typedast.If{Base: base(n.Pos, c.lub(then.ExprType(), els.ExprType())), Cond: cond, Then: then, Else: els}
}

func (c *checker) inferWhile(n *ast.While) typedast.Expr {
	cond := c.infer(n.Cond)
	if !c.conforms(cond.ExprType(), c.tag("Bool")) {
		c.errf(n.Pos, "Loop condition does not have type Bool.")
	}
	body := c.infer(n.Body)
	return &typedast.While{Base: base(n.Pos, c.tag("Object")), Cond: cond, Body: body}
}

func (c *checker) inferLet(n *ast.Let) typedast.Expr {
	c.pushScope()
	defer c.popScope()

	bindings := make([]*typedast.LetBinding, len(n.Bindings))
	for i, bind := range n.Bindings {
		if bind.Name == "self" {
			c.errf(bind.Pos, "'self' cannot be bound in a let expression.")
		}
		declType, ok := resolveTypeName(c.table, bind.Type, true, bind.Pos, c.file, c.errs)
		if !ok {
			declType = classtable.Poison
		}
		var init typedast.Expr
		if bind.Init != nil {
			init = c.infer(bind.Init)
			if !c.conforms(init.ExprType(), declType) {
				c.errf(bind.Pos, "Inferred type %s of initialization of %s does not conform to identifier's declared type %s.",
					c.typeName(init.ExprType()), bind.Name, c.typeName(declType))
			}
		}
		bindings[i] = &typedast.LetBinding{Init: init, Name: bind.Name, Type: declType, Pos: bind.Pos}
		c.define(bind.Name, declType)
	}
	body := c.infer(n.Body)
	return &typedast.Let{Base: base(n.Pos, body.ExprType()), Bindings: bindings, Body: body}
}

func (c *checker) inferCase(n *ast.Case) typedast.Expr {
	subject := c.infer(n.Subject)

	seenTypes := make(map[string]bool)
	arms := make([]*typedast.CaseArm, 0, len(n.Arms))
	resultType := classtable.Poison
	for _, arm := range n.Arms {
		if seenTypes[arm.Type] {
			c.errf(arm.Pos, "Duplicate branch %s in case statement.", arm.Type)
		}
		seenTypes[arm.Type] = true

		branchType, ok := resolveTypeName(c.table, arm.Type, false, arm.Pos, c.file, c.errs)
		if !ok {
			branchType = classtable.Poison
		}
		c.pushScope()
		c.define(arm.Name, branchType)
		body := c.infer(arm.Body)
		c.popScope()

		arms = append(arms, &typedast.CaseArm{Body: body, Name: arm.Name, BranchType: branchType, Pos: arm.Pos})
		resultType = c.lub(resultType, body.ExprType())
	}

	sort.SliceStable(arms, func(i, j int) bool {
		return c.subtreeSize(arms[i].BranchType) < c.subtreeSize(arms[j].BranchType)
	})

	return &typedast.Case{Base: base(n.Pos, resultType), Subject: subject, Arms: arms}
}

func (c *checker) subtreeSize(idx int) int {
	if idx < 0 || idx >= c.table.NumClasses() {
		return c.table.NumClasses() + 1 // Poison sorts last, never taken at runtime
	}
	lo, hi := c.table.TagRange(idx)
	return hi - lo + 1
}

func (c *checker) inferNew(n *ast.New) typedast.Expr {
	t, ok := resolveTypeName(c.table, n.Type, true, n.Pos, c.file, c.errs)
	if !ok {
		t = classtable.Poison
	}
	return &typedast.New{Base: base(n.Pos, t), NewType: t}
}

func (c *checker) inferBinOp(n *ast.BinOp) typedast.Expr {
	left := c.infer(n.Left)
	right := c.infer(n.Right)
	if !c.conforms(left.ExprType(), c.tag("Int")) || !c.conforms(right.ExprType(), c.tag("Int")) {
		c.errf(n.Pos, "non-Int arguments: %s %s", c.typeName(left.ExprType()), c.typeName(right.ExprType()))
	}
	return &typedast.BinOp{Base: base(n.Pos, c.tag("Int")), Left: left, Right: right, Op: typedast.ArithOp(n.Op)}
}

func (c *checker) inferCompare(n *ast.Compare) typedast.Expr {
	left := c.infer(n.Left)
	right := c.infer(n.Right)
	if !c.conforms(left.ExprType(), c.tag("Int")) || !c.conforms(right.ExprType(), c.tag("Int")) {
		c.errf(n.Pos, "non-Int arguments: %s %s", c.typeName(left.ExprType()), c.typeName(right.ExprType()))
	}
	return &typedast.Compare{Base: base(n.Pos, c.tag("Bool")), Left: left, Right: right, Op: typedast.CompareOp(n.Op)}
}

func (c *checker) inferEq(n *ast.Eq) typedast.Expr {
	left := c.infer(n.Left)
	right := c.infer(n.Right)

	lt, rt := resolveSelf(c, left.ExprType()), resolveSelf(c, right.ExprType())
	kind := typedast.EqRef
	basicL, basicR := isBasic(c, lt), isBasic(c, rt)
	switch {
	case lt == c.tag("Int") && rt == c.tag("Int"):
		kind = typedast.EqInt
	case lt == c.tag("Bool") && rt == c.tag("Bool"):
		kind = typedast.EqBool
	case lt == c.tag("String") && rt == c.tag("String"):
		kind = typedast.EqStr
	case basicL || basicR:
		c.errf(n.Pos, "Illegal comparison with a basic type.")
	}
	return &typedast.Eq{Base: base(n.Pos, c.tag("Bool")), Left: left, Right: right, Kind: kind}
}

func resolveSelf(c *checker, t int) int {
	if t == classtable.SelfType {
		return c.class
	}
	return t
}

func isBasic(c *checker, t int) bool {
	return t == c.tag("Int") || t == c.tag("Bool") || t == c.tag("String")
}

func (c *checker) inferCall(n *ast.Call) typedast.Expr {
	m, ok := c.lookupMethod(c.class, n.Name)
	if !ok {
		c.errf(n.Pos, "Dispatch to undefined method %s.", n.Name)
	}
	args := c.inferArgs(n.Args, m, ok, n.Pos, n.Name)
	if !ok {
		return &typedast.Call{Base: base(n.Pos, classtable.Poison), Name: n.Name, Args: args, StaticClass: c.class}
	}
	return &typedast.Call{Base: base(n.Pos, m.RetType), Name: n.Name, Args: args, StaticClass: c.class}
}

func (c *checker) inferDispatch(n *ast.Dispatch) typedast.Expr {
	target := c.infer(n.Target)
	lookupClass := resolveSelf(c, target.ExprType())
	m, ok := c.lookupMethod(lookupClass, n.Name)
	if !ok {
		c.errf(n.Pos, "Dispatch to undefined method %s.", n.Name)
	}
	args := c.inferArgs(n.Args, m, ok, n.Pos, n.Name)
	if !ok {
		return &typedast.Dispatch{Base: base(n.Pos, classtable.Poison), Target: target, Name: n.Name, Args: args, TargetStaticType: lookupClass}
	}
	resultType := m.RetType
	if resultType == classtable.SelfType {
		resultType = target.ExprType()
	}
	return &typedast.Dispatch{Base: base(n.Pos, resultType), Target: target, Name: n.Name, Args: args, TargetStaticType: lookupClass}
}

func (c *checker) inferStaticDispatch(n *ast.StaticDispatch) typedast.Expr {
	target := c.infer(n.Target)
	staticType, ok := resolveTypeName(c.table, n.StaticType, false, n.Pos, c.file, c.errs)
	if !ok {
		staticType = classtable.Poison
	} else if !c.conforms(target.ExprType(), staticType) {
		c.errf(n.Pos, "Expression type %s does not conform to declared static dispatch type %s.",
			c.typeName(target.ExprType()), c.typeName(staticType))
	}

	m, mOK := c.lookupMethod(staticType, n.Name)
	if !mOK {
		c.errf(n.Pos, "Dispatch to undefined method %s.", n.Name)
	}
	args := c.inferArgs(n.Args, m, mOK, n.Pos, n.Name)
	if !mOK {
		return &typedast.StaticDispatch{Base: base(n.Pos, classtable.Poison), Target: target, Name: n.Name, Args: args, DispatchClass: staticType}
	}
	resultType := m.RetType
	if resultType == classtable.SelfType {
		resultType = target.ExprType()
	}
	return &typedast.StaticDispatch{Base: base(n.Pos, resultType), Target: target, Name: n.Name, Args: args, DispatchClass: staticType}
}

// lookupMethod finds name in classIdx's flattened dispatch layout.
func (c *checker) lookupMethod(classIdx int, name string) (classtable.FlatMethod, bool) {
	if classIdx < 0 || classIdx >= c.table.NumClasses() {
		return classtable.FlatMethod{}, false
	}
	for _, m := range c.table.AllMethods(classIdx) {
		if m.Name == name {
			return m, true
		}
	}
	return classtable.FlatMethod{}, false
}

// inferArgs type-checks a call's argument list and, when the method
// was found (found is true), checks arity and per-argument
// conformance against its formals. When the method lookup itself
// failed, the caller has already reported that; checking arity here
// too would just be a second, confusing diagnostic about nothing.
func (c *checker) inferArgs(astArgs []ast.Expr, m classtable.FlatMethod, found bool, pos token.Position, name string) []typedast.Expr {
	args := make([]typedast.Expr, len(astArgs))
	for i, a := range astArgs {
		args[i] = c.infer(a)
	}
	if !found {
		return args
	}
	if len(args) != len(m.Formals) {
		c.errf(pos, "Method %s called with wrong number of arguments.", name)
		return args
	}
	for i, f := range m.Formals {
		if !c.conforms(args[i].ExprType(), f.DeclType) {
			c.errf(pos, "In call to method %s, type %s of parameter %s does not conform to declared type %s.",
				name, c.typeName(args[i].ExprType()), f.Name, c.typeName(f.DeclType))
		}
	}
	return args
}
