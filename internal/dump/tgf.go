package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/structmerge/internal/artifact"
)

// WriteTGF writes the tree in Trivial Graph Format: node lines, a "#"
// separator and edge lines. Node numbers follow pre-order.
func WriteTGF(w io.Writer, root *artifact.Artifact) error {
	var nodes, edges []string
	next := 0
	var visit func(a *artifact.Artifact) int
	visit = func(a *artifact.Artifact) int {
		id := next
		next++
		nodes = append(nodes, fmt.Sprintf("%d %s", id, describe(a)))
		for _, c := range a.Children() {
			edges = append(edges, fmt.Sprintf("%d %d", id, visit(c)))
		}
		for _, v := range conflictSides(a) {
			edges = append(edges, fmt.Sprintf("%d %d %s", id, visit(v.Node), v.Rev))
		}
		return id
	}
	visit(root)

	_, err := fmt.Fprintf(w, "%s\n#\n%s\n", strings.Join(nodes, "\n"), strings.Join(edges, "\n"))
	return err
}
