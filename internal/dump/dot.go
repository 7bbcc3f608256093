package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// WriteDot writes a GraphViz digraph. Every root becomes a cluster named
// after its revision; matchings whose nodes are both drawn become dashed
// edges in the matching's color.
func WriteDot(w io.Writer, ms []*matching.Matching, roots ...*artifact.Artifact) error {
	var sb strings.Builder
	sb.WriteString("digraph structmerge {\n")
	sb.WriteString("  node [shape=box, fontname=\"monospace\"];\n")

	drawn := make(map[artifact.ID]bool)
	for i, r := range roots {
		fmt.Fprintf(&sb, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&sb, "    label=%q;\n", string(r.Rev))
		dotTree(&sb, r, drawn)
		sb.WriteString("  }\n")
	}

	for _, m := range ms {
		if m.Score == 0 || !drawn[m.Left.ID] || !drawn[m.Right.ID] {
			continue
		}
		fmt.Fprintf(&sb, "  n%d -> n%d [dir=none, style=dashed, constraint=false, color=%s, label=\"%d/%d\"];\n",
			m.Left.ID, m.Right.ID, m.Color.Graphviz(), m.Score, m.MaxScore)
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func dotTree(sb *strings.Builder, a *artifact.Artifact, drawn map[artifact.ID]bool) {
	drawn[a.ID] = true
	attrs := ""
	switch a.Kind {
	case artifact.KindConflict:
		attrs = ", color=red, style=filled, fillcolor=mistyrose"
	case artifact.KindChoice:
		attrs = ", color=orange, style=filled, fillcolor=lightyellow"
	}
	fmt.Fprintf(sb, "    n%d [label=%q%s];\n", a.ID, describe(a), attrs)

	for _, c := range a.Children() {
		dotTree(sb, c, drawn)
		fmt.Fprintf(sb, "    n%d -> n%d;\n", a.ID, c.ID)
	}
	for _, v := range conflictSides(a) {
		dotTree(sb, v.Node, drawn)
		fmt.Fprintf(sb, "    n%d -> n%d [label=%q, style=bold];\n", a.ID, v.Node.ID, string(v.Rev))
	}
}
