package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/l3aro/cxxflow/pkg/cfg"
)

var (
	headerStyle = color.New(color.FgCyan, color.Bold)
	blockStyle  = color.New(color.FgBlue, color.Bold)
	exitStyle   = color.New(color.FgGreen)
	deadStyle   = color.New(color.FgHiBlack)
	warnStyle   = color.New(color.FgYellow, color.Bold)
)

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// blockIDs returns the block IDs of info in creation order.
func blockIDs(info *cfg.CFGInfo) []string {
	ids := make([]string, 0, len(info.Blocks))
	for id := range info.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return blockNumber(ids[i]) < blockNumber(ids[j])
	})
	return ids
}

func blockNumber(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "block_"))
	if err != nil {
		return -1
	}
	return n
}

// printCFGInfo prints CFG information in human-readable format.
func printCFGInfo(w io.Writer, info *cfg.CFGInfo) {
	headerStyle.Fprintf(w, "=== CFG for function: %s ===\n", info.FunctionName)
	fmt.Fprintf(w, "Cyclomatic Complexity: %d\n", info.CyclomaticComplexity)
	fmt.Fprintf(w, "Entry Block: %s\n", info.EntryBlockID)
	fmt.Fprintf(w, "Exit Blocks: %s\n", strings.Join(info.ExitBlockIDs, ", "))
	if len(info.DeadBlockIDs) > 0 {
		warnStyle.Fprintf(w, "Dead Blocks: %s\n", strings.Join(info.DeadBlockIDs, ", "))
	}

	fmt.Fprintf(w, "\nBlocks (%d):\n", len(info.Blocks))
	for _, id := range blockIDs(info) {
		block := info.Blocks[id]
		style := blockStyle
		switch {
		case block.Dead:
			style = deadStyle
		case block.Kind == cfg.KindExit:
			style = exitStyle
		}

		desc := string(block.Kind)
		if block.Label != "" {
			desc += " " + strconv.Quote(block.Label)
		}
		if block.StartLine > 0 {
			desc += fmt.Sprintf(", lines %d-%d", block.StartLine, block.EndLine)
		}
		if block.Dead {
			desc += ", dead"
		}
		style.Fprintf(w, "  %s", id)
		fmt.Fprintf(w, " (%s)\n", desc)
		for _, stmt := range block.Statements {
			fmt.Fprintf(w, "    %s\n", firstLine(stmt))
		}
	}

	fmt.Fprintf(w, "\nEdges (%d):\n", len(info.Edges))
	for _, edge := range info.Edges {
		kind := string(edge.EdgeType)
		if edge.Condition != "" {
			kind += " " + strconv.Quote(edge.Condition)
		}
		fmt.Fprintf(w, "  %s --%s--> %s\n", edge.SourceID, kind, edge.TargetID)
	}
}

// printFunctions prints one line per function of a file report.
func printFunctions(w io.Writer, r FileReport) {
	for _, fn := range r.Functions {
		fmt.Fprintf(w, "%s:%d ", r.Path, fn.Line)
		blockStyle.Fprint(w, fn.Name)
		fmt.Fprintf(w, " complexity=%d blocks=%d exits=%d", fn.Complexity, fn.Blocks, fn.Exits)
		if fn.DeadBlocks > 0 {
			warnStyle.Fprintf(w, " dead=%d", fn.DeadBlocks)
		}
		fmt.Fprintln(w)
	}
}

// firstLine shortens multi-line statements such as whole loops to their header.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " ..."
	}
	return s
}
