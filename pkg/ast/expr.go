package ast

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

type (
	// IntLit is an integer, character, boolean or null-pointer literal whose value
	// the front end could decode.
	IntLit struct {
		Base
		Value int64
	}

	// Ident is a plain or qualified name.
	Ident struct {
		Base
		Name string
	}

	Paren struct {
		Base
		X Expr
	}

	// Unary is a prefix or postfix operator application.
	Unary struct {
		Base
		Op string
		X  Expr
	}

	Binary struct {
		Base
		Op string
		X  Expr
		Y  Expr
	}

	// Conditional is "c ? a : b".
	Conditional struct {
		Base
		Cond Expr
		Then Expr
		Else Expr
	}

	// Cast is "(T)x" or a functional/named C++ cast.
	Cast struct {
		Base
		Type string
		X    Expr
	}

	// Call is a function call. Binding is set when the callee resolved to a known
	// declaration.
	Call struct {
		Base
		Fun     Expr
		Args    []Expr
		Binding *FuncDecl
	}

	// Throw is a C++ throw expression. X is nil for a rethrow.
	Throw struct {
		Base
		X Expr
	}

	// Other is any expression not modeled above.
	Other struct {
		Base
		Tag string
	}
)

func (*IntLit) exprNode()      {}
func (*Ident) exprNode()       {}
func (*Paren) exprNode()       {}
func (*Unary) exprNode()       {}
func (*Binary) exprNode()      {}
func (*Conditional) exprNode() {}
func (*Cast) exprNode()        {}
func (*Call) exprNode()        {}
func (*Throw) exprNode()       {}
func (*Other) exprNode()       {}

// CalleeName returns the callee's name when it is a plain identifier, or "".
func (c *Call) CalleeName() string {
	fun := c.Fun
	for {
		p, ok := fun.(*Paren)
		if !ok {
			break
		}
		fun = p.X
	}
	if id, ok := fun.(*Ident); ok {
		return id.Name
	}
	return ""
}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok || p.X == nil {
			return e
		}
		e = p.X
	}
}
