package cfg

import (
	"fmt"

	"github.com/l3aro/cxxflow/pkg/ast"
)

// BlockID indexes a block in its graph's arena.
type BlockID int

// NoBlock is the absent block.
const NoBlock BlockID = -1

// Block is a basic block. Which fields are meaningful depends on Kind: Decision
// blocks have a merge connector and a condition, Branch blocks a label, Jump blocks
// a direction and Exit blocks a reference to their graph's start.
//
// Blocks are created by the builder and are read-only afterwards.
type Block struct {
	id       BlockID
	kind     BlockKind
	out      []BlockID
	in       []BlockID
	payload  ast.Node
	label    string
	merge    BlockID
	cond     ast.Expr
	folded   int8 // -1 unknown, 0 false, 1 true
	backward bool
	start    BlockID
}

func newBlock(id BlockID, kind BlockKind, payload ast.Node) *Block {
	return &Block{
		id:      id,
		kind:    kind,
		payload: payload,
		merge:   NoBlock,
		folded:  -1,
		start:   NoBlock,
	}
}

// ID returns the block's arena index.
func (b *Block) ID() BlockID { return b.id }

// Kind returns the block's role.
func (b *Block) Kind() BlockKind { return b.kind }

// Outgoing returns the successors in link order.
func (b *Block) Outgoing() []BlockID { return append([]BlockID(nil), b.out...) }

// Incoming returns the predecessors in link order.
func (b *Block) Incoming() []BlockID { return append([]BlockID(nil), b.in...) }

// OutgoingSize returns the number of successors.
func (b *Block) OutgoingSize() int { return len(b.out) }

// IncomingSize returns the number of predecessors.
func (b *Block) IncomingSize() int { return len(b.in) }

// Payload returns the AST node the block was created for, or nil.
func (b *Block) Payload() ast.Node { return b.payload }

// Label returns a Branch block's label.
func (b *Block) Label() string { return b.label }

// MergeNode returns a Decision block's merge connector, or NoBlock.
func (b *Block) MergeNode() BlockID { return b.merge }

// Condition returns the expression a Decision branches on. It is nil for try
// blocks and for loops without a condition.
func (b *Block) Condition() ast.Expr { return b.cond }

// IsBackward reports whether a Jump block closes a loop.
func (b *Block) IsBackward() bool { return b.backward }

// StartNode returns the start block an Exit belongs to.
func (b *Block) StartNode() BlockID { return b.start }

func (b *Block) String() string {
	switch b.kind {
	case KindBranch:
		return fmt.Sprintf("%s#%d(%s)", b.kind, b.id, b.label)
	case KindJump:
		if b.backward {
			return fmt.Sprintf("%s#%d(back)", b.kind, b.id)
		}
	}
	return fmt.Sprintf("%s#%d", b.kind, b.id)
}
