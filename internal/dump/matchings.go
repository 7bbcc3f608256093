package dump

import (
	"fmt"
	"io"

	"github.com/dusk-indust/structmerge/internal/matching"
)

// WriteMatchings lists matchings one per line with score, percentage,
// algorithm and color.
func WriteMatchings(w io.Writer, ms []*matching.Matching) error {
	for _, m := range ms {
		_, err := fmt.Fprintf(w, "%-40s <-> %-40s %4d/%-4d %6.1f%%  %-10s [%s]\n",
			m.Left, m.Right, m.Score, m.MaxScore, 100*m.Percentage(), m.Algorithm, m.Color)
		if err != nil {
			return err
		}
	}
	return nil
}
