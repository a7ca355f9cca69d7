// Package cparse converts C and C++ source into the statement tree of package ast
// using tree-sitter. Only function bodies are converted; everything outside them is
// reduced to the declarations needed to resolve calls within the same file.
package cparse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/l3aro/cxxflow/pkg/ast"
)

// Language selects the grammar.
type Language string

const (
	LangAuto Language = "auto"
	LangC    Language = "c"
	LangCPP  Language = "cpp"
)

var (
	// ErrUnsupportedLanguage is returned for languages other than C and C++.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrFunctionNotFound is returned when a file has no definition of the
	// requested function.
	ErrFunctionNotFound = errors.New("function not found")
)

var extensions = map[string]Language{
	".c":   LangC,
	".h":   LangC,
	".cc":  LangCPP,
	".cpp": LangCPP,
	".cxx": LangCPP,
	".c++": LangCPP,
	".hh":  LangCPP,
	".hpp": LangCPP,
	".hxx": LangCPP,
	".ipp": LangCPP,
	".inl": LangCPP,
}

// DetectLanguage returns the language implied by a file extension.
func DetectLanguage(path string) (Language, bool) {
	ext := filepath.Ext(path)
	if ext == ".C" || ext == ".H" {
		return LangCPP, true
	}
	lang, ok := extensions[strings.ToLower(ext)]
	return lang, ok
}

// ParseLanguage validates a language name.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case "", LangAuto:
		return LangAuto, nil
	case LangC, LangCPP:
		return l, nil
	case "c++", "cxx":
		return LangCPP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
}

func grammar(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangC:
		return c.GetLanguage(), nil
	case LangCPP:
		return cpp.GetLanguage(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}

// ParseFile reads and parses a source file. LangAuto picks the grammar from the file
// extension.
func ParseFile(path string, lang Language) (*ast.File, error) {
	if lang == LangAuto || lang == "" {
		detected, ok := DetectLanguage(path)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filepath.Ext(path))
		}
		lang = detected
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	f, err := ParseBytes(content, lang)
	if err != nil {
		return nil, fmt.Errorf("parsing file %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// ParseBytes parses source in the given language.
func ParseBytes(content []byte, lang Language) (*ast.File, error) {
	g, err := grammar(lang)
	if err != nil {
		return nil, err
	}
	parser := sitter.NewParser()
	parser.SetLanguage(g)
	tree := parser.Parse(nil, content)
	if tree == nil {
		return nil, errors.New("tree-sitter returned no tree")
	}
	defer tree.Close()

	cv := &converter{
		content: content,
		file: &ast.File{
			Language: string(lang),
			Decls:    make(map[string]*ast.FuncDecl),
		},
	}
	root := tree.RootNode()
	var defs []*sitter.Node
	cv.collect(root, &defs)
	for _, def := range defs {
		cv.file.Functions = append(cv.file.Functions, cv.function(def))
	}
	return cv.file, nil
}

// FindFunction returns the definition of name in f.
func FindFunction(f *ast.File, name string) (*ast.Function, error) {
	if fn := f.Lookup(name); fn != nil {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrFunctionNotFound, name, f.Path)
}

type converter struct {
	content []byte
	file    *ast.File
}

var noReturnAttr = regexp.MustCompile(`\b(_Noreturn|noreturn|__noreturn__)\b`)

// collect records every function declaration and gathers the definitions. Two
// passes are needed because a call may precede the callee's definition.
func (cv *converter) collect(n *sitter.Node, defs *[]*sitter.Node) {
	switch n.Type() {
	case "function_definition":
		if name := cv.declaratorName(n.ChildByFieldName("declarator")); name != "" {
			cv.declare(name, n, cv.headerText(n))
			*defs = append(*defs, n)
		}
		return
	case "declaration", "field_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			d := n.NamedChild(i)
			if !isFunctionDeclarator(d) {
				continue
			}
			if name := cv.declaratorName(d); name != "" {
				cv.declare(name, n, cv.text(n))
			}
		}
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		cv.collect(n.NamedChild(i), defs)
	}
}

func (cv *converter) declare(name string, n *sitter.Node, header string) {
	d, ok := cv.file.Decls[name]
	if !ok {
		d = &ast.FuncDecl{Name: name, Line: int(n.StartPoint().Row) + 1}
		cv.file.Decls[name] = d
	}
	// The attribute may sit on any one of the redeclarations.
	if noReturnAttr.MatchString(header) {
		d.NoReturn = true
	}
}

func (cv *converter) function(def *sitter.Node) *ast.Function {
	name := cv.declaratorName(def.ChildByFieldName("declarator"))
	fn := &ast.Function{
		Base: cv.base(def),
		Name: name,
	}
	if d := cv.file.Decls[name]; d != nil {
		fn.NoReturn = d.NoReturn
	}
	if body := def.ChildByFieldName("body"); body != nil {
		if cs, ok := cv.stmt(body).(*ast.Compound); ok {
			fn.Body = cs
		}
	}
	return fn
}

// headerText is the text of a definition up to its body.
func (cv *converter) headerText(def *sitter.Node) string {
	end := def.EndByte()
	if body := def.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}
	return string(cv.content[def.StartByte():end])
}

func isFunctionDeclarator(n *sitter.Node) bool {
	for n != nil {
		switch n.Type() {
		case "function_declarator":
			return true
		case "pointer_declarator", "reference_declarator", "attributed_declarator":
			n = innerDeclarator(n)
		default:
			return false
		}
	}
	return false
}

func innerDeclarator(n *sitter.Node) *sitter.Node {
	if d := n.ChildByFieldName("declarator"); d != nil {
		return d
	}
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(int(n.NamedChildCount()) - 1)
}

// declaratorName digs the function name out of a (possibly pointer-returning)
// function declarator.
func (cv *converter) declaratorName(n *sitter.Node) string {
	for n != nil {
		switch n.Type() {
		case "function_declarator", "pointer_declarator", "reference_declarator",
			"attributed_declarator", "parenthesized_declarator":
			n = innerDeclarator(n)
		case "identifier", "field_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "template_function":
			return cv.text(n)
		default:
			return ""
		}
	}
	return ""
}

func (cv *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(cv.content)
}

func (cv *converter) base(n *sitter.Node) ast.Base {
	start, end := n.StartPoint(), n.EndPoint()
	return ast.Base{
		Loc: ast.Span{
			Start: ast.Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1},
			End:   ast.Position{Line: int(end.Row) + 1, Column: int(end.Column) + 1},
		},
		Text: cv.text(n),
	}
}
