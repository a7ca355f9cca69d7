package cfg

import (
	"fmt"

	"github.com/l3aro/cxxflow/pkg/ast"
)

// BlockName returns the exported identifier of a block.
func BlockName(id BlockID) string {
	return fmt.Sprintf("block_%d", id)
}

// Info converts the graph to its exported form.
func (g *Graph) Info(funcName string) *CFGInfo {
	info := &CFGInfo{
		FunctionName: funcName,
		Blocks:       make(map[string]CFGBlock, len(g.blocks)),
		Edges:        make([]CFGEdge, 0),
		ExitBlockIDs: make([]string, 0, len(g.exits)),
		DeadBlockIDs: make([]string, 0),
	}
	if g.start != NoBlock {
		info.EntryBlockID = BlockName(g.start)
	}

	for _, b := range g.blocks {
		cb := CFGBlock{
			ID:           BlockName(b.id),
			Kind:         b.kind,
			Label:        b.label,
			Statements:   make([]string, 0, 1),
			Predecessors: make([]string, 0, len(b.in)),
			Dead:         g.deadSet[b.id],
		}
		if b.payload != nil {
			span := b.payload.Span()
			cb.StartLine = span.Start.Line
			cb.EndLine = span.End.Line
			if src := b.payload.Source(); src != "" {
				cb.Statements = append(cb.Statements, src)
			}
		}
		if b.merge != NoBlock {
			cb.MergeID = BlockName(b.merge)
		}
		for _, p := range b.in {
			cb.Predecessors = append(cb.Predecessors, BlockName(p))
		}
		info.Blocks[cb.ID] = cb

		for _, to := range b.out {
			info.Edges = append(info.Edges, g.edge(b, g.blocks[to]))
		}
	}

	for _, id := range g.exits {
		info.ExitBlockIDs = append(info.ExitBlockIDs, BlockName(id))
	}
	for _, b := range g.Dead() {
		info.DeadBlockIDs = append(info.DeadBlockIDs, BlockName(b.id))
	}
	info.CyclomaticComplexity = g.Complexity()
	return info
}

func (g *Graph) edge(from, to *Block) CFGEdge {
	e := CFGEdge{
		SourceID: BlockName(from.id),
		TargetID: BlockName(to.id),
		EdgeType: EdgeTypeUnconditional,
	}
	switch from.kind {
	case KindDecision:
		switch from.payload.(type) {
		case *ast.Switch:
			e.EdgeType = EdgeTypeCase
			e.Condition = to.label
		case *ast.Try:
			e.EdgeType = EdgeTypeCase
			if _, ok := to.payload.(*ast.Catch); ok {
				e.EdgeType = EdgeTypeException
			}
			e.Condition = to.label
		default:
			e.EdgeType = EdgeTypeTrue
			if to.label == LabelElse {
				e.EdgeType = EdgeTypeFalse
			}
		}
	case KindJump:
		e.EdgeType = EdgeTypeJump
		if from.backward {
			e.EdgeType = EdgeTypeBackEdge
		}
	}
	return e
}

// Complexity returns the cyclomatic complexity: one plus the extra ways out of
// every decision reachable from the start block.
func (g *Graph) Complexity() int {
	reach := g.Reachable()
	cc := 1
	for _, b := range g.blocks {
		if b.kind != KindDecision || !reach[b.id] {
			continue
		}
		if n := len(b.out); n > 1 {
			cc += n - 1
		}
	}
	return cc
}
