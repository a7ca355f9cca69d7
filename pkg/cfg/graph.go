package cfg

import "github.com/l3aro/cxxflow/pkg/ast"

// Graph is the control flow graph of one function body. It owns every block in an
// arena; edges refer to blocks by BlockID. A Graph is immutable once Build returns
// and may be read from several goroutines.
type Graph struct {
	blocks  []*Block
	start   BlockID
	exits   []BlockID
	dead    []BlockID
	deadSet map[BlockID]bool
}

func newGraph() *Graph {
	return &Graph{
		start:   NoBlock,
		deadSet: make(map[BlockID]bool),
	}
}

// Len returns the number of blocks.
func (g *Graph) Len() int { return len(g.blocks) }

// Block returns the block with the given ID, or nil.
func (g *Graph) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(g.blocks) {
		return nil
	}
	return g.blocks[id]
}

// Blocks returns every block in creation order.
func (g *Graph) Blocks() []*Block {
	return append([]*Block(nil), g.blocks...)
}

// Start returns the unique start block.
func (g *Graph) Start() *Block { return g.Block(g.start) }

// Exits returns the exit blocks in creation order.
func (g *Graph) Exits() []*Block { return g.resolve(g.exits) }

// Dead returns the blocks that are unreachable from the start block, in the order
// they were found.
func (g *Graph) Dead() []*Block {
	var ids []BlockID
	for _, id := range g.dead {
		if g.deadSet[id] {
			ids = append(ids, id)
		}
	}
	return g.resolve(ids)
}

// IsDead reports whether id was recorded as unreachable.
func (g *Graph) IsDead(id BlockID) bool { return g.deadSet[id] }

// Succs returns the successors of id.
func (g *Graph) Succs(id BlockID) []*Block {
	b := g.Block(id)
	if b == nil {
		return nil
	}
	return g.resolve(b.out)
}

// Preds returns the predecessors of id.
func (g *Graph) Preds(id BlockID) []*Block {
	b := g.Block(id)
	if b == nil {
		return nil
	}
	return g.resolve(b.in)
}

// Reachable returns the set of blocks reachable from the start block.
func (g *Graph) Reachable() map[BlockID]bool {
	seen := make(map[BlockID]bool)
	if g.start == NoBlock {
		return seen
	}
	stack := []BlockID{g.start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.blocks[id].out...)
	}
	return seen
}

// ReachesExit reports whether some exit block is reachable from id.
func (g *Graph) ReachesExit(id BlockID) bool {
	seen := make(map[BlockID]bool)
	stack := []BlockID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		b := g.Block(cur)
		if b == nil {
			continue
		}
		if b.kind == KindExit {
			return true
		}
		stack = append(stack, b.out...)
	}
	return false
}

func (g *Graph) resolve(ids []BlockID) []*Block {
	out := make([]*Block, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.blocks[id])
	}
	return out
}

// The mutators below are used only while building.

func (g *Graph) newBlock(kind BlockKind, payload ast.Node) *Block {
	b := newBlock(BlockID(len(g.blocks)), kind, payload)
	g.blocks = append(g.blocks, b)
	return b
}

func (g *Graph) link(from, to *Block) {
	from.out = append(from.out, to.id)
	to.in = append(to.in, from.id)
}

func (g *Graph) markDead(b *Block) {
	if g.deadSet[b.id] {
		return
	}
	if !containsID(g.dead, b.id) {
		g.dead = append(g.dead, b.id)
	}
	g.deadSet[b.id] = true
}

func (g *Graph) unmarkDead(b *Block) {
	delete(g.deadSet, b.id)
}

func containsID(ids []BlockID, id BlockID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
