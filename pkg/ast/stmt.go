package ast

// Stmt is a statement node.
type Stmt interface {
	Node
	Kind() Kind
}

type (
	// Compound is a brace-enclosed statement list.
	Compound struct {
		Base
		List []Stmt
	}

	// ExprStmt is an expression evaluated for its effect.
	ExprStmt struct {
		Base
		X Expr
	}

	// DeclStmt is a local declaration. Its initializers are not modeled.
	DeclStmt struct {
		Base
	}

	// NullStmt is the empty statement ";".
	NullStmt struct {
		Base
	}

	// If is if/else. Else may be nil.
	If struct {
		Base
		Cond Expr
		Then Stmt
		Else Stmt
	}

	While struct {
		Base
		Cond Expr
		Body Stmt
	}

	Do struct {
		Base
		Body Stmt
		Cond Expr
	}

	// For is the three-clause loop. Any clause may be nil; a nil Cond loops forever.
	For struct {
		Base
		Init Stmt
		Cond Expr
		Post Expr
		Body Stmt
	}

	// RangeFor is the C++11 range-based loop.
	RangeFor struct {
		Base
		Decl  Stmt
		Range Expr
		Body  Stmt
	}

	Break struct {
		Base
	}

	Continue struct {
		Base
	}

	// Return carries an optional result.
	Return struct {
		Base
		Result Expr
	}

	// Switch holds its body verbatim; case and default labels appear as
	// statements inside the body's list.
	Switch struct {
		Base
		Tag  Expr
		Body Stmt
	}

	Case struct {
		Base
		Value Expr
	}

	Default struct {
		Base
	}

	// Label is "name: stmt". Stmt may be nil when the label ends a block.
	Label struct {
		Base
		Name string
		Stmt Stmt
	}

	Goto struct {
		Base
		Label string
	}

	// Try is a C++ try block with its handlers.
	Try struct {
		Base
		Body     Stmt
		Handlers []*Catch
	}

	// Problem is a statement the front end could not parse.
	Problem struct {
		Base
	}

	// Unknown is any statement outside the closed kind set. The builder skips it.
	Unknown struct {
		Base
		Tag string
	}
)

// Catch is one handler of a Try. An empty Param means catch (...).
type Catch struct {
	Base
	Param string
	Body  Stmt
}

func (*Compound) Kind() Kind { return KindCompound }
func (*ExprStmt) Kind() Kind { return KindExpr }
func (*DeclStmt) Kind() Kind { return KindDecl }
func (*NullStmt) Kind() Kind { return KindNull }
func (*If) Kind() Kind       { return KindIf }
func (*While) Kind() Kind    { return KindWhile }
func (*Do) Kind() Kind       { return KindDo }
func (*For) Kind() Kind      { return KindFor }
func (*RangeFor) Kind() Kind { return KindRangeFor }
func (*Break) Kind() Kind    { return KindBreak }
func (*Continue) Kind() Kind { return KindContinue }
func (*Return) Kind() Kind   { return KindReturn }
func (*Switch) Kind() Kind   { return KindSwitch }
func (*Case) Kind() Kind     { return KindCase }
func (*Default) Kind() Kind  { return KindDefault }
func (*Label) Kind() Kind    { return KindLabel }
func (*Goto) Kind() Kind     { return KindGoto }
func (*Try) Kind() Kind      { return KindTry }
func (*Problem) Kind() Kind  { return KindProblem }

func (u *Unknown) Kind() Kind { return Kind(u.Tag) }
