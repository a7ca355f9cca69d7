package cparse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/cxxflow/pkg/ast"
)

var declKinds = map[string]bool{
	"declaration":                true,
	"type_definition":            true,
	"alias_declaration":          true,
	"using_declaration":          true,
	"namespace_alias_definition": true,
	"static_assert_declaration":  true,
	"struct_specifier":           true,
	"union_specifier":            true,
	"enum_specifier":             true,
	"class_specifier":            true,
	"function_definition":        true,
	"template_declaration":       true,
}

// stmts converts the children of a block-like node. case labels are flattened so
// that the label and the statements it governs become siblings.
func (cv *converter) stmts(n *sitter.Node) []ast.Stmt {
	var out []ast.Stmt
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "comment":
			continue
		case "case_statement":
			out = append(out, cv.caseStmts(child)...)
			continue
		}
		if s := cv.stmt(child); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (cv *converter) stmt(n *sitter.Node) ast.Stmt {
	if n == nil {
		return nil
	}
	b := cv.base(n)
	if declKinds[n.Type()] {
		return &ast.DeclStmt{Base: b}
	}

	switch n.Type() {
	case "compound_statement":
		return &ast.Compound{Base: b, List: cv.stmts(n)}
	case "expression_statement":
		if n.NamedChildCount() == 0 {
			return &ast.NullStmt{Base: b}
		}
		return &ast.ExprStmt{Base: b, X: cv.expr(n.NamedChild(0))}
	case "if_statement":
		return &ast.If{
			Base: b,
			Cond: cv.cond(n.ChildByFieldName("condition")),
			Then: cv.stmt(n.ChildByFieldName("consequence")),
			Else: cv.elseStmt(n.ChildByFieldName("alternative")),
		}
	case "while_statement":
		return &ast.While{
			Base: b,
			Cond: cv.cond(n.ChildByFieldName("condition")),
			Body: cv.stmt(n.ChildByFieldName("body")),
		}
	case "do_statement":
		return &ast.Do{
			Base: b,
			Body: cv.stmt(n.ChildByFieldName("body")),
			Cond: cv.cond(n.ChildByFieldName("condition")),
		}
	case "for_statement":
		return cv.forStmt(n)
	case "for_range_loop":
		return cv.rangeFor(n)
	case "return_statement", "co_return_statement":
		r := &ast.Return{Base: b}
		if n.NamedChildCount() > 0 {
			r.Result = cv.expr(n.NamedChild(0))
		}
		return r
	case "break_statement":
		return &ast.Break{Base: b}
	case "continue_statement":
		return &ast.Continue{Base: b}
	case "goto_statement":
		return &ast.Goto{Base: b, Label: cv.text(n.ChildByFieldName("label"))}
	case "labeled_statement":
		l := &ast.Label{Base: b, Name: cv.text(n.ChildByFieldName("label"))}
		if last := lastNamed(n); last != nil && last.Type() != "statement_identifier" {
			l.Stmt = cv.stmt(last)
		}
		return l
	case "switch_statement":
		return &ast.Switch{
			Base: b,
			Tag:  cv.cond(n.ChildByFieldName("condition")),
			Body: cv.stmt(n.ChildByFieldName("body")),
		}
	case "case_statement":
		// Only reached for a case label used as the direct body of a switch.
		return &ast.Compound{Base: b, List: cv.caseStmts(n)}
	case "try_statement":
		return cv.tryStmt(n)
	case "throw_statement":
		t := &ast.Throw{Base: b}
		if n.NamedChildCount() > 0 {
			t.X = cv.expr(n.NamedChild(0))
		}
		return &ast.ExprStmt{Base: b, X: t}
	case "attributed_statement":
		return cv.stmt(lastNamed(n))
	case "ERROR":
		return &ast.Problem{Base: b}
	case "comment":
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return &ast.Problem{Base: b}
	}
	return &ast.Unknown{Base: b, Tag: n.Type()}
}

func (cv *converter) elseStmt(n *sitter.Node) ast.Stmt {
	if n == nil {
		return nil
	}
	if n.Type() == "else_clause" {
		return cv.stmt(lastNamed(n))
	}
	return cv.stmt(n)
}

func (cv *converter) forStmt(n *sitter.Node) ast.Stmt {
	f := &ast.For{Base: cv.base(n)}
	init := n.ChildByFieldName("initializer")
	cond := n.ChildByFieldName("condition")
	post := n.ChildByFieldName("update")
	body := n.ChildByFieldName("body")
	if body == nil {
		body = lastNamed(n)
	}

	if init != nil {
		if declKinds[init.Type()] {
			f.Init = &ast.DeclStmt{Base: cv.base(init)}
		} else {
			f.Init = &ast.ExprStmt{Base: cv.base(init), X: cv.expr(init)}
		}
	}
	if cond != nil {
		f.Cond = cv.cond(cond)
	}
	if post != nil {
		f.Post = cv.expr(post)
	}
	if body != nil && !sameNode(body, init) && !sameNode(body, cond) && !sameNode(body, post) {
		f.Body = cv.stmt(body)
	}
	return f
}

func (cv *converter) rangeFor(n *sitter.Node) ast.Stmt {
	r := &ast.RangeFor{Base: cv.base(n)}
	if decl := n.ChildByFieldName("declarator"); decl != nil {
		// The declaration spans from after "(" to its declarator, so qualifiers
		// ahead of the type are kept.
		start := decl.StartByte()
		if typ := n.ChildByFieldName("type"); typ != nil {
			start = typ.StartByte()
		}
		for i := 0; i+1 < int(n.ChildCount()); i++ {
			if n.Child(i).Type() == "(" {
				start = n.Child(i + 1).StartByte()
				break
			}
		}
		b := cv.base(decl)
		b.Text = string(cv.content[start:decl.EndByte()])
		r.Decl = &ast.DeclStmt{Base: b}
	}
	r.Range = cv.expr(n.ChildByFieldName("right"))
	r.Body = cv.stmt(n.ChildByFieldName("body"))
	return r
}

// caseStmts splits "case v: a; b;" into the label followed by a and b.
func (cv *converter) caseStmts(n *sitter.Node) []ast.Stmt {
	value := n.ChildByFieldName("value")
	b := cv.base(n)
	b.Text = cv.labelText(n)

	var label ast.Stmt
	if value != nil {
		label = &ast.Case{Base: b, Value: cv.expr(value)}
	} else {
		label = &ast.Default{Base: b}
	}
	out := []ast.Stmt{label}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if value != nil && sameNode(child, value) {
			continue
		}
		switch child.Type() {
		case "comment":
			continue
		case "case_statement":
			out = append(out, cv.caseStmts(child)...)
			continue
		}
		if s := cv.stmt(child); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// labelText is "case v:" or "default:" without the statements that follow.
func (cv *converter) labelText(n *sitter.Node) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		if ch := n.Child(i); ch.Type() == ":" {
			return strings.TrimSpace(string(cv.content[n.StartByte():ch.EndByte()]))
		}
	}
	return cv.text(n)
}

func (cv *converter) tryStmt(n *sitter.Node) ast.Stmt {
	t := &ast.Try{
		Base: cv.base(n),
		Body: cv.stmt(n.ChildByFieldName("body")),
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "catch_clause" {
			continue
		}
		h := &ast.Catch{
			Base: cv.base(child),
			Body: cv.stmt(child.ChildByFieldName("body")),
		}
		if params := child.ChildByFieldName("parameters"); params != nil {
			p := strings.TrimSpace(cv.text(params))
			p = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(p, "("), ")"))
			if p != "..." {
				h.Param = p
			}
		}
		t.Handlers = append(t.Handlers, h)
	}
	return t
}

func lastNamed(n *sitter.Node) *sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(int(n.NamedChildCount()) - 1)
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
