package cfg

import "github.com/l3aro/cxxflow/pkg/ast"

// NoReturnPredicate reports whether a call never returns to its caller.
type NoReturnPredicate func(call *ast.Call) bool

// DefaultNoReturnNames are matched by name when a call has no binding.
var DefaultNoReturnNames = []string{"exit"}

// NoReturnByName trusts a call's binding when there is one and otherwise matches
// the callee name against names.
func NoReturnByName(names ...string) NoReturnPredicate {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(call *ast.Call) bool {
		if call == nil {
			return false
		}
		if call.Binding != nil {
			return call.Binding.NoReturn
		}
		return set[call.CalleeName()]
	}
}

// terminatingExpr reports whether evaluating e as a statement leaves the function:
// a throw, or a call to a function that never returns.
func terminatingExpr(e ast.Expr, noReturn NoReturnPredicate) bool {
	switch x := ast.Unparen(e).(type) {
	case *ast.Throw:
		return true
	case *ast.Call:
		return noReturn != nil && noReturn(x)
	case *ast.Cast:
		// (void)exit(1) is still a call to exit.
		return terminatingExpr(x.X, noReturn)
	}
	return false
}
