package cfg

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/cxxflow/pkg/ast"
)

func edgesOfType(info *CFGInfo, typ EdgeType) []CFGEdge {
	var out []CFGEdge
	for _, e := range info.Edges {
		if e.EdgeType == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestInfo_IfElse(t *testing.T) {
	cond := &ast.Binary{Base: ast.Base{Loc: ast.Span{Start: ast.Position{Line: 2}, End: ast.Position{Line: 2}}}, Op: ">", X: ident("x"), Y: lit(0)}
	n := &ast.If{
		Base: ast.Base{Text: "if (x > 0) a; else b;", Loc: ast.Span{Start: ast.Position{Line: 2}, End: ast.Position{Line: 5}}},
		Cond: cond,
		Then: stmt("a;"),
		Else: stmt("b;"),
	}
	info := build(t, body(n)).Info("f")

	assert.Equal(t, "f", info.FunctionName)
	assert.Equal(t, "block_0", info.EntryBlockID)
	assert.Equal(t, 2, info.CyclomaticComplexity)
	assert.Len(t, info.ExitBlockIDs, 1)
	assert.Empty(t, info.DeadBlockIDs)
	assert.Len(t, edgesOfType(info, EdgeTypeTrue), 1)
	assert.Len(t, edgesOfType(info, EdgeTypeFalse), 1)
	assert.Len(t, edgesOfType(info, EdgeTypeJump), 2)
	assert.Empty(t, edgesOfType(info, EdgeTypeBackEdge))

	d, ok := info.Blocks["block_1"]
	require.True(t, ok)
	assert.Equal(t, KindDecision, d.Kind)
	assert.Equal(t, 2, d.StartLine)
	assert.Equal(t, 5, d.EndLine)
	assert.Equal(t, []string{"if (x > 0) a; else b;"}, d.Statements)
	assert.Equal(t, "block_2", d.MergeID)
	assert.Equal(t, []string{"block_0"}, d.Predecessors)
}

func TestInfo_LoopBackEdgeAndComplexity(t *testing.T) {
	loop := &ast.While{Cond: ident("x"), Body: body(
		&ast.If{Cond: ident("y"), Then: &ast.Break{}},
		stmt("a;"),
	)}
	info := build(t, body(loop)).Info("loop")

	assert.Len(t, edgesOfType(info, EdgeTypeBackEdge), 1)
	assert.Equal(t, 3, info.CyclomaticComplexity)
}

func TestInfo_SwitchAndTryEdges(t *testing.T) {
	fn := body(
		&ast.Switch{Tag: ident("x"), Body: body(&ast.Case{Value: lit(4)}, stmt("a;"))},
		&ast.Try{Body: stmt("b;"), Handlers: []*ast.Catch{{Param: "E e", Body: stmt("c;")}, {Body: stmt("d;")}}},
	)
	info := build(t, fn).Info("f")

	var conditions []string
	for _, e := range edgesOfType(info, EdgeTypeCase) {
		conditions = append(conditions, e.Condition)
	}
	assert.Equal(t, []string{"4", LabelDefault, LabelTryBody}, conditions)

	conditions = nil
	for _, e := range edgesOfType(info, EdgeTypeException) {
		conditions = append(conditions, e.Condition)
	}
	assert.Equal(t, []string{"E e", LabelCatchAny}, conditions)

	// switch adds one, try adds two.
	assert.Equal(t, 4, info.CyclomaticComplexity)
}

func TestInfo_CaseEdgesIgnoreLabelText(t *testing.T) {
	fn := body(&ast.Switch{Tag: ident("state"), Body: body(
		&ast.Case{Value: ident("then")},
		stmt("a;"),
		&ast.Case{Value: ident("else")},
		stmt("b;"),
	)})
	info := build(t, fn).Info("f")

	assert.Empty(t, edgesOfType(info, EdgeTypeTrue))
	assert.Empty(t, edgesOfType(info, EdgeTypeFalse))

	var conditions []string
	for _, e := range edgesOfType(info, EdgeTypeCase) {
		conditions = append(conditions, e.Condition)
	}
	assert.Equal(t, []string{"then", "else", LabelDefault}, conditions)
}

func TestInfo_DeadBlocks(t *testing.T) {
	g := build(t, body(&ast.Return{}, stmt("a;")))
	info := g.Info("f")

	a := plainOf(t, g, "a;")
	assert.Equal(t, []string{BlockName(a.ID())}, info.DeadBlockIDs)
	assert.True(t, info.Blocks[BlockName(a.ID())].Dead)
	assert.Len(t, info.ExitBlockIDs, 2)
}

func TestInfo_DeadDecisionNotCounted(t *testing.T) {
	info := build(t, body(&ast.Return{}, &ast.If{Cond: ident("x"), Then: stmt("a;")})).Info("f")
	assert.Equal(t, 1, info.CyclomaticComplexity)
}

func TestInfo_JSON(t *testing.T) {
	info := build(t, body(stmt("a;"))).Info("f")

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var decoded CFGInfo
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *info, decoded)
}

func TestWriteDot(t *testing.T) {
	g := build(t, body(
		&ast.While{Cond: ident("x"), Body: stmt("say(\"hi\");")},
		&ast.Return{},
		stmt("unreachable();"),
	))

	var buf bytes.Buffer
	require.NoError(t, g.WriteDot(&buf, "main"))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph \"main\" {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, "block_0 [shape=Mdiamond")
	assert.Contains(t, out, `label="say(\"hi\");"`)
	assert.Contains(t, out, "style=dashed")
	assert.Contains(t, out, `label="true"`)
	assert.Contains(t, out, `label="unreachable();", color=grey`)
}
