package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// WriteMermaid produces a Mermaid graph TD diagram. Each root is a subgraph;
// matchings become dotted links labelled with their score.
func WriteMermaid(w io.Writer, ms []*matching.Matching, roots ...*artifact.Artifact) error {
	// Mermaid ids must be alphanumeric.
	ids := make(map[artifact.ID]string)
	getID := func(a *artifact.Artifact) string {
		if id, ok := ids[a.ID]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", len(ids))
		ids[a.ID] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("  classDef conflict fill:#fdd,stroke:#c00\n")
	sb.WriteString("  classDef choice fill:#ffd,stroke:#c90\n")

	var visit func(a *artifact.Artifact)
	visit = func(a *artifact.Artifact) {
		id := getID(a)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, mermaidEscape(describe(a))))
		switch {
		case a.IsConflict():
			sb.WriteString(fmt.Sprintf("    class %s conflict\n", id))
		case a.IsChoice():
			sb.WriteString(fmt.Sprintf("    class %s choice\n", id))
		}
		for _, c := range a.Children() {
			visit(c)
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", id, getID(c)))
		}
		for _, v := range conflictSides(a) {
			visit(v.Node)
			sb.WriteString(fmt.Sprintf("    %s -->|%s| %s\n", id, v.Rev, getID(v.Node)))
		}
	}

	for i, r := range roots {
		sb.WriteString(fmt.Sprintf("  subgraph T%d[\"%s\"]\n", i, r.Rev))
		visit(r)
		sb.WriteString("  end\n")
	}

	for _, m := range ms {
		l, lok := ids[m.Left.ID]
		r, rok := ids[m.Right.ID]
		if m.Score == 0 || !lok || !rok {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s -.-|%d/%d| %s\n", l, m.Score, m.MaxScore, r))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// mermaidEscape replaces characters that end a quoted Mermaid label.
func mermaidEscape(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return s
}
