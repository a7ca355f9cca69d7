package cfg

import "github.com/l3aro/cxxflow/pkg/ast"

// Evaluator folds an expression to an integer constant. ok is false when the
// expression is not a compile-time constant.
type Evaluator interface {
	Evaluate(e ast.Expr) (value int64, ok bool)
}

// ConstEvaluator folds integer, character, boolean and null literals combined with
// the arithmetic, bitwise, logical, relational, conditional and comma operators.
// Identifiers are never constant.
type ConstEvaluator struct{}

func (ConstEvaluator) Evaluate(e ast.Expr) (int64, bool) {
	return evalConst(e)
}

func evalConst(e ast.Expr) (int64, bool) {
	switch x := e.(type) {
	case nil:
		return 0, false
	case *ast.IntLit:
		return x.Value, true
	case *ast.Paren:
		return evalConst(x.X)
	case *ast.Cast:
		return evalConst(x.X)
	case *ast.Unary:
		v, ok := evalConst(x.X)
		if !ok {
			return 0, false
		}
		switch x.Op {
		case "-":
			return -v, true
		case "+":
			return v, true
		case "!":
			return boolInt(v == 0), true
		case "~":
			return ^v, true
		}
		return 0, false
	case *ast.Binary:
		return evalBinary(x)
	case *ast.Conditional:
		c, ok := evalConst(x.Cond)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return evalConst(x.Then)
		}
		return evalConst(x.Else)
	}
	return 0, false
}

func evalBinary(x *ast.Binary) (int64, bool) {
	l, ok := evalConst(x.X)
	if !ok {
		return 0, false
	}
	// Short-circuit operators only need the left side when it decides the result.
	switch x.Op {
	case "&&":
		if l == 0 {
			return 0, true
		}
	case "||":
		if l != 0 {
			return 1, true
		}
	}
	r, ok := evalConst(x.Y)
	if !ok {
		return 0, false
	}
	switch x.Op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case "%":
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case "<<":
		if r < 0 || r > 63 {
			return 0, false
		}
		return l << uint(r), true
	case ">>":
		if r < 0 || r > 63 {
			return 0, false
		}
		return l >> uint(r), true
	case "&":
		return l & r, true
	case "|":
		return l | r, true
	case "^":
		return l ^ r, true
	case "&&", "||":
		return boolInt(r != 0), true
	case "==":
		return boolInt(l == r), true
	case "!=":
		return boolInt(l != r), true
	case "<":
		return boolInt(l < r), true
	case "<=":
		return boolInt(l <= r), true
	case ">":
		return boolInt(l > r), true
	case ">=":
		return boolInt(l >= r), true
	case ",":
		return r, true
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
