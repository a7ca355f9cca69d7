package cfg

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var dotShapes = map[BlockKind]string{
	KindStart:     "Mdiamond",
	KindExit:      "Msquare",
	KindPlain:     "box",
	KindDecision:  "diamond",
	KindBranch:    "plaintext",
	KindConnector: "point",
	KindJump:      "cds",
}

// WriteDot renders the graph in Graphviz DOT syntax. Dead blocks are drawn grey
// and back edges dashed.
func (g *Graph) WriteDot(w io.Writer, name string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "digraph %s {\n", dotQuote(name))
	fmt.Fprintln(bw, "  node [fontname=\"monospace\"];")
	for _, b := range g.blocks {
		attrs := []string{
			"shape=" + dotShapes[b.kind],
			"label=" + dotQuote(dotLabel(b)),
		}
		if g.deadSet[b.id] {
			attrs = append(attrs, "color=grey", "fontcolor=grey")
		}
		fmt.Fprintf(bw, "  %s [%s];\n", BlockName(b.id), strings.Join(attrs, ", "))
	}
	for _, b := range g.blocks {
		for _, to := range b.out {
			e := g.edge(b, g.blocks[to])
			var attrs []string
			switch e.EdgeType {
			case EdgeTypeBackEdge:
				attrs = append(attrs, "style=dashed")
			case EdgeTypeTrue, EdgeTypeFalse, EdgeTypeCase, EdgeTypeException:
				attrs = append(attrs, "label="+dotQuote(string(e.EdgeType)))
			}
			if len(attrs) > 0 {
				fmt.Fprintf(bw, "  %s -> %s [%s];\n", e.SourceID, e.TargetID, strings.Join(attrs, ", "))
			} else {
				fmt.Fprintf(bw, "  %s -> %s;\n", e.SourceID, e.TargetID)
			}
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotLabel(b *Block) string {
	switch b.kind {
	case KindBranch:
		return b.label
	case KindConnector:
		return ""
	}
	if b.payload != nil {
		if src := firstLine(b.payload.Source()); src != "" {
			return src
		}
	}
	return string(b.kind)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " ..."
	}
	return s
}

func dotQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
