// Package cfg builds Control Flow Graphs (CFGs) for C and C++ function bodies.
// It provides the basic-block node model, the graph container and the builder that
// threads control through every statement kind of package ast.
package cfg

// BlockKind represents the role of a CFG block.
type BlockKind string

const (
	KindStart     BlockKind = "start"     // Function entry point
	KindExit      BlockKind = "exit"      // Return, throw, no-return call or implicit return
	KindPlain     BlockKind = "plain"     // Non-branching statement
	KindDecision  BlockKind = "decision"  // Branch point with a merge connector
	KindBranch    BlockKind = "branch"    // Labeled edge out of a decision, or a goto label
	KindConnector BlockKind = "connector" // Convergence point
	KindJump      BlockKind = "jump"      // goto, break, continue or structural jump
)

// Branch labels used by the builder. Case branches are labeled with the case
// expression text, catch branches with the handler's parameter text, and goto
// labels with the label name.
const (
	LabelThen     = "then"
	LabelElse     = "else"
	LabelDefault  = "default"
	LabelTryBody  = "try"
	LabelCatchAny = "..."
)

// EdgeType represents the type of a CFG edge in the exported form.
type EdgeType string

const (
	EdgeTypeUnconditional EdgeType = "unconditional" // Fall-through
	EdgeTypeTrue          EdgeType = "true"          // Then branch of a decision
	EdgeTypeFalse         EdgeType = "false"         // Else branch of a decision
	EdgeTypeCase          EdgeType = "case"          // Case, default or try branch
	EdgeTypeException     EdgeType = "exception"     // Catch handler branch
	EdgeTypeJump          EdgeType = "jump"          // Forward jump
	EdgeTypeBackEdge      EdgeType = "back_edge"     // Backward jump (loop continuation)
)

// CFGBlock is the exported form of a basic block.
type CFGBlock struct {
	ID           string    `json:"id"`                 // Unique identifier for the block
	Kind         BlockKind `json:"kind"`               // Role of the block
	Label        string    `json:"label,omitempty"`    // Branch label
	StartLine    int       `json:"start_line"`         // Starting line number in source
	EndLine      int       `json:"end_line"`           // Ending line number in source
	Statements   []string  `json:"statements"`         // Source of the originating node
	Predecessors []string  `json:"predecessors"`       // IDs of blocks that can precede this block
	Dead         bool      `json:"dead,omitempty"`     // Unreachable from the start block
	MergeID      string    `json:"merge_id,omitempty"` // Merge connector of a decision
}

// CFGEdge represents a directed edge between two CFG blocks.
type CFGEdge struct {
	SourceID  string   `json:"source_id"`           // ID of the source block
	TargetID  string   `json:"target_id"`           // ID of the target block
	EdgeType  EdgeType `json:"edge_type"`           // Type of edge (true, false, unconditional, etc.)
	Condition string   `json:"condition,omitempty"` // Branch label for case and catch edges
}

// CFGInfo represents the complete Control Flow Graph for a function.
type CFGInfo struct {
	FunctionName         string              `json:"function_name"`         // Name of the function
	Blocks               map[string]CFGBlock `json:"blocks"`                // Map of block ID to block
	Edges                []CFGEdge           `json:"edges"`                 // List of edges in the graph
	EntryBlockID         string              `json:"entry_block_id"`        // ID of the entry block
	ExitBlockIDs         []string            `json:"exit_block_ids"`        // IDs of exit blocks
	DeadBlockIDs         []string            `json:"dead_block_ids"`        // IDs of unreachable blocks
	CyclomaticComplexity int                 `json:"cyclomatic_complexity"` // Cyclomatic complexity of the function
}
