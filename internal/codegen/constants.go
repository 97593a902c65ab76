package codegen

import (
	"github.com/coolc/coolc/internal/constpool"
	"github.com/coolc/coolc/internal/typedast"
)

// walkConstants recurses through a typed expression tree, interning
// every literal it finds. It must visit every construct that can
// contain a sub-expression; missing one here would leave a constant
// referenced by emitted code but never defined in the listing.
func walkConstants(pool *constpool.Pool, e typedast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *typedast.IntConst:
		pool.InternInt(n.Value)
	case *typedast.BoolConst:
		pool.UseBool(n.Value)
	case *typedast.StringConst:
		pool.InternString(n.Value)
		pool.InternInt(int32(len(n.Value))) // the string object's length field points at this
	case *typedast.ObjectRef:
	case *typedast.Assign:
		walkConstants(pool, n.Value)
	case *typedast.Block:
		for _, sub := range n.Exprs {
			walkConstants(pool, sub)
		}
	case *typedast.If:
		walkConstants(pool, n.Cond)
		walkConstants(pool, n.Then)
		walkConstants(pool, n.Else)
	case *typedast.While:
		walkConstants(pool, n.Cond)
		walkConstants(pool, n.Body)
	case *typedast.Let:
		for _, bind := range n.Bindings {
			walkConstants(pool, bind.Init)
		}
		walkConstants(pool, n.Body)
	case *typedast.Case:
		pool.InternInt(int32(n.Pos.Line)) // the case-abort runtime calls push this as a literal
		walkConstants(pool, n.Subject)
		for _, arm := range n.Arms {
			walkConstants(pool, arm.Body)
		}
	case *typedast.New:
	case *typedast.IsVoid:
		pool.UseBool(true) // the result is boxed as bool_const0/bool_const1
		walkConstants(pool, n.Expr)
	case *typedast.Neg:
		walkConstants(pool, n.Expr)
	case *typedast.Not:
		pool.UseBool(true)
		walkConstants(pool, n.Expr)
	case *typedast.BinOp:
		walkConstants(pool, n.Left)
		walkConstants(pool, n.Right)
	case *typedast.Compare:
		pool.UseBool(true)
		walkConstants(pool, n.Left)
		walkConstants(pool, n.Right)
	case *typedast.Eq:
		pool.UseBool(true)
		walkConstants(pool, n.Left)
		walkConstants(pool, n.Right)
	case *typedast.Call:
		for _, a := range n.Args {
			walkConstants(pool, a)
		}
	case *typedast.Dispatch:
		walkConstants(pool, n.Target)
		for _, a := range n.Args {
			walkConstants(pool, a)
		}
	case *typedast.StaticDispatch:
		walkConstants(pool, n.Target)
		for _, a := range n.Args {
			walkConstants(pool, a)
		}
	default:
		panic("walkConstants: unhandled typed expression")
	}
}
