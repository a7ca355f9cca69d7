package cparse

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/cxxflow/pkg/ast"
)

// cond unwraps the parentheses and C++ condition clause around a controlling
// expression. A declaration used as a condition becomes an opaque expression.
func (cv *converter) cond(n *sitter.Node) ast.Expr {
	for n != nil {
		switch n.Type() {
		case "parenthesized_expression", "condition_clause":
			if v := n.ChildByFieldName("value"); v != nil {
				n = v
				continue
			}
			if n.NamedChildCount() == 0 {
				return nil
			}
			n = lastNamed(n)
		default:
			return cv.expr(n)
		}
	}
	return nil
}

func (cv *converter) expr(n *sitter.Node) ast.Expr {
	if n == nil {
		return nil
	}
	b := cv.base(n)
	switch n.Type() {
	case "number_literal":
		if v, ok := parseInt(b.Text); ok {
			return &ast.IntLit{Base: b, Value: v}
		}
	case "char_literal":
		if v, ok := parseChar(b.Text); ok {
			return &ast.IntLit{Base: b, Value: v}
		}
	case "true":
		return &ast.IntLit{Base: b, Value: 1}
	case "false", "null", "nullptr":
		return &ast.IntLit{Base: b, Value: 0}
	case "identifier", "qualified_identifier", "field_identifier", "namespace_identifier":
		return &ast.Ident{Base: b, Name: b.Text}
	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return &ast.Paren{Base: b, X: cv.expr(n.NamedChild(0))}
		}
	case "unary_expression", "pointer_expression":
		return &ast.Unary{
			Base: b,
			Op:   cv.text(n.ChildByFieldName("operator")),
			X:    cv.expr(n.ChildByFieldName("argument")),
		}
	case "binary_expression":
		return &ast.Binary{
			Base: b,
			Op:   cv.text(n.ChildByFieldName("operator")),
			X:    cv.expr(n.ChildByFieldName("left")),
			Y:    cv.expr(n.ChildByFieldName("right")),
		}
	case "comma_expression":
		return &ast.Binary{
			Base: b,
			Op:   ",",
			X:    cv.expr(n.ChildByFieldName("left")),
			Y:    cv.expr(n.ChildByFieldName("right")),
		}
	case "conditional_expression":
		return &ast.Conditional{
			Base: b,
			Cond: cv.expr(n.ChildByFieldName("condition")),
			Then: cv.expr(n.ChildByFieldName("consequence")),
			Else: cv.expr(n.ChildByFieldName("alternative")),
		}
	case "cast_expression":
		return &ast.Cast{
			Base: b,
			Type: cv.text(n.ChildByFieldName("type")),
			X:    cv.expr(n.ChildByFieldName("value")),
		}
	case "call_expression":
		return cv.call(n, b)
	case "throw_expression", "throw_statement":
		t := &ast.Throw{Base: b}
		if n.NamedChildCount() > 0 {
			t.X = cv.expr(n.NamedChild(0))
		}
		return t
	}
	return &ast.Other{Base: b, Tag: n.Type()}
}

func (cv *converter) call(n *sitter.Node, b ast.Base) ast.Expr {
	call := &ast.Call{Base: b, Fun: cv.expr(n.ChildByFieldName("function"))}
	if args := n.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg.Type() == "comment" {
				continue
			}
			call.Args = append(call.Args, cv.expr(arg))
		}
	}
	if name := call.CalleeName(); name != "" {
		call.Binding = cv.file.Decls[name]
		if call.Binding == nil {
			// std::exit and ::abort style calls resolve on their last component.
			if i := strings.LastIndex(name, "::"); i >= 0 {
				call.Binding = cv.file.Decls[name[i+2:]]
			}
		}
	}
	return call
}

// parseInt decodes a C integer literal with an optional radix prefix, digit
// separators and suffixes. Floating literals are rejected.
func parseInt(text string) (int64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(text), "'", "")
	lower := strings.ToLower(s)
	isHex := strings.HasPrefix(lower, "0x")
	if !isHex && strings.ContainsAny(lower, ".e") {
		return 0, false
	}
	if isHex && strings.ContainsAny(lower, ".p") {
		return 0, false
	}
	s = strings.TrimRight(s, "uUlLzZ")
	if s == "" {
		return 0, false
	}
	if strings.HasPrefix(strings.ToLower(s), "0b") {
		v, err := strconv.ParseUint(s[2:], 2, 64)
		return int64(v), err == nil
	}
	// Base 0 handles the 0x and leading-zero octal forms.
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return int64(v), true
}

// parseChar decodes a character literal, including simple, octal and hex escapes.
// Prefixed and multi-character literals are evaluated on their first character.
func parseChar(text string) (int64, bool) {
	s := text
	if i := strings.IndexByte(s, '\''); i >= 0 {
		s = s[i:]
	}
	if len(s) < 3 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return 0, false
	}
	body := s[1 : len(s)-1]
	if body == "" {
		return 0, false
	}
	if body[0] != '\\' {
		r := []rune(body)
		return int64(r[0]), true
	}
	if len(body) < 2 {
		return 0, false
	}
	switch body[1] {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'v':
		return '\v', true
	case '\\', '\'', '"', '?':
		return int64(body[1]), true
	case 'x':
		v, err := strconv.ParseUint(body[2:], 16, 32)
		return int64(v), err == nil
	}
	if body[1] >= '0' && body[1] <= '7' {
		v, err := strconv.ParseUint(body[1:], 8, 32)
		return int64(v), err == nil
	}
	return 0, false
}
