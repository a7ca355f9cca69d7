// Package ast defines the statement and expression tree consumed by the CFG builder.
// It models only the subset of C/C++ needed to thread control flow: statements are a
// closed set of kinds, expressions carry just enough structure for constant folding
// and call-target lookup.
package ast

// Position is a 1-based line/column location in source.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span is the source range covered by a node.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Node is implemented by every statement and expression.
type Node interface {
	Span() Span
	// Source returns the original source text of the node, if known.
	Source() string
}

// Base holds the location and text shared by all nodes. Front ends fill it in;
// hand-built trees may leave it zero.
type Base struct {
	Loc  Span
	Text string
}

func (b Base) Span() Span     { return b.Loc }
func (b Base) Source() string { return b.Text }

// Kind tags a statement.
type Kind string

const (
	KindCompound Kind = "compound"
	KindExpr     Kind = "expression"
	KindDecl     Kind = "declaration"
	KindNull     Kind = "null"
	KindIf       Kind = "if"
	KindWhile    Kind = "while"
	KindDo       Kind = "do"
	KindFor      Kind = "for"
	KindRangeFor Kind = "range_for"
	KindBreak    Kind = "break"
	KindContinue Kind = "continue"
	KindReturn   Kind = "return"
	KindSwitch   Kind = "switch"
	KindCase     Kind = "case"
	KindDefault  Kind = "default"
	KindLabel    Kind = "label"
	KindGoto     Kind = "goto"
	KindTry      Kind = "try"
	KindProblem  Kind = "problem"
)

// Function is a function definition together with its body.
type Function struct {
	Base
	Name     string
	Body     *Compound
	NoReturn bool
}

// FuncDecl describes a function known in the translation unit. Calls resolved to a
// declaration carry it as their Binding.
type FuncDecl struct {
	Name     string
	Line     int
	NoReturn bool
}

// File is a parsed translation unit.
type File struct {
	Path      string
	Language  string
	Functions []*Function
	Decls     map[string]*FuncDecl
}

// Lookup returns the function definition with the given name. Qualified C++ names
// also match on their last component.
func (f *File) Lookup(name string) *Function {
	for _, fn := range f.Functions {
		if fn.Name == name {
			return fn
		}
	}
	for _, fn := range f.Functions {
		if unqualified(fn.Name) == name {
			return fn
		}
	}
	return nil
}

func unqualified(name string) string {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == ':' && name[i-1] == ':' {
			return name[i+1:]
		}
	}
	return name
}
