package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l3aro/cxxflow/pkg/ast"
)

// terminatingBodies all finish on every path, so every live block reaches an exit.
func terminatingBodies() map[string]ast.Stmt {
	return map[string]ast.Stmt{
		"straight line": body(stmt("a;"), stmt("b;")),
		"if else": body(
			&ast.If{Cond: ident("x"), Then: stmt("a;"), Else: body(stmt("b;"), &ast.Return{})},
			stmt("c;"),
		),
		"else if chain": body(&ast.If{
			Cond: ident("x"),
			Then: stmt("a;"),
			Else: &ast.If{Cond: ident("y"), Then: stmt("b;"), Else: stmt("c;")},
		}),
		"while with break and continue": body(&ast.While{Cond: ident("x"), Body: body(
			&ast.If{Cond: ident("a"), Then: &ast.Break{}},
			&ast.If{Cond: ident("b"), Then: &ast.Continue{}},
			stmt("c;"),
		)}),
		"do while": body(&ast.Do{Body: body(stmt("a;"), &ast.If{Cond: ident("b"), Then: &ast.Continue{}}), Cond: ident("x")}),
		"for": body(&ast.For{Init: stmt("i = 0"), Cond: ident("c"), Post: ident("i"), Body: stmt("a;")}),
		"range for": body(&ast.RangeFor{Decl: &ast.DeclStmt{}, Range: ident("v"), Body: body(stmt("a;"), &ast.Break{})}),
		"switch": body(&ast.Switch{Tag: ident("x"), Body: body(
			&ast.Case{Value: lit(1)},
			stmt("a;"),
			&ast.Case{Value: lit(2)},
			stmt("b;"),
			&ast.Break{},
			&ast.Case{Value: lit(3)},
			&ast.Return{},
			&ast.Default{},
			stmt("c;"),
		)}),
		"label before first case": body(&ast.Switch{Tag: ident("x"), Body: body(
			&ast.Label{Name: "L", Stmt: stmt("a;")},
			&ast.Case{Value: lit(1)},
			stmt("b;"),
		)}),
		"duplicate label": body(
			&ast.Label{Name: "x", Stmt: stmt("a;")},
			&ast.Label{Name: "x", Stmt: stmt("b;")},
		),
		"goto forward": body(
			&ast.If{Cond: ident("err"), Then: &ast.Goto{Label: "fail"}},
			&ast.Return{},
			&ast.Label{Name: "fail", Stmt: callStmt("cleanup")},
		),
		"try": body(&ast.Try{
			Body:     body(stmt("a;"), &ast.ExprStmt{X: &ast.Throw{}}),
			Handlers: []*ast.Catch{{Param: "int e", Body: stmt("b;")}, {Body: &ast.Return{}}},
		}),
		"exit call": body(&ast.If{Cond: ident("x"), Then: callStmt("exit")}, stmt("a;")),
		"dead tail": body(&ast.Return{}, stmt("a;"), &ast.If{Cond: ident("x"), Then: stmt("b;")}),
	}
}

func TestGraph_Properties(t *testing.T) {
	for name, fn := range terminatingBodies() {
		t.Run(name, func(t *testing.T) {
			g := build(t, fn)

			starts := blocksOf(g, KindStart)
			if assert.Len(t, starts, 1) {
				assert.Zero(t, starts[0].IncomingSize())
				assert.Equal(t, 1, starts[0].OutgoingSize())
			}
			assert.NotEmpty(t, g.Exits())

			reach := g.Reachable()
			for _, b := range g.Blocks() {
				if reach[b.ID()] {
					assert.True(t, g.ReachesExit(b.ID()), "%s cannot reach an exit", b)
					assert.False(t, g.IsDead(b.ID()), "%s is reachable but dead", b)
				}
				assertEdgesSymmetric(t, g, b)

				switch b.Kind() {
				case KindDecision:
					for _, s := range g.Succs(b.ID()) {
						assert.Equal(t, KindBranch, s.Kind(), "%s has a non-branch successor", b)
					}
					merge := g.Block(b.MergeNode())
					if assert.NotNil(t, merge) {
						assert.Equal(t, KindConnector, merge.Kind())
					}
				case KindJump:
					assert.Equal(t, 1, b.OutgoingSize(), "%s", b)
				case KindExit:
					assert.Zero(t, b.OutgoingSize(), "%s", b)
					assert.Equal(t, g.Start().ID(), b.StartNode())
				case KindPlain, KindBranch, KindConnector:
					if g.IsDead(b.ID()) {
						assert.LessOrEqual(t, b.OutgoingSize(), 1, "%s", b)
					} else {
						assert.Equal(t, 1, b.OutgoingSize(), "%s", b)
					}
				}
			}
		})
	}
}

func assertEdgesSymmetric(t *testing.T, g *Graph, b *Block) {
	t.Helper()
	for _, s := range b.Outgoing() {
		assert.Contains(t, g.Block(s).Incoming(), b.ID())
	}
	for _, p := range b.Incoming() {
		assert.Contains(t, g.Block(p).Outgoing(), b.ID())
	}
}

func TestGraph_DeadBlocksHaveNoLivePredecessor(t *testing.T) {
	for name, fn := range terminatingBodies() {
		t.Run(name, func(t *testing.T) {
			g := build(t, fn)
			reach := g.Reachable()
			for _, d := range g.Dead() {
				for _, p := range g.Preds(d.ID()) {
					assert.False(t, reach[p.ID()], "dead %s has live predecessor %s", d, p)
				}
			}
		})
	}
}

func TestGraph_Accessors(t *testing.T) {
	g := build(t, body(stmt("a;")))

	assert.Nil(t, g.Block(NoBlock))
	assert.Nil(t, g.Block(BlockID(g.Len())))
	assert.Nil(t, g.Succs(NoBlock))
	assert.Nil(t, g.Preds(NoBlock))

	a := plainOf(t, g, "a;")
	out := a.Outgoing()
	out[0] = NoBlock
	assert.NotEqual(t, NoBlock, a.Outgoing()[0], "Outgoing must return a copy")
	assert.Equal(t, NoBlock, a.MergeNode())
	assert.Equal(t, "plain#1", a.String())
}
