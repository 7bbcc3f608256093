package matcher

import (
	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// matchOrdered matches children whose order is significant. It fills a
// table over suffixes of both child lists, like a longest common
// subsequence, and walks it from the front so that ties prefer matching
// over skipping and earlier children over later ones.
func (m *Matcher) matchOrdered(l, r *artifact.Artifact) (*matching.Matching, error) {
	lc, rc := l.Children(), r.Children()
	rows, cols := len(lc), len(rc)

	pairs := make([][]*matching.Matching, rows)
	table := make([][]int, rows+1)
	for i := range table {
		table[i] = make([]int, cols+1)
	}
	for i := range pairs {
		pairs[i] = make([]*matching.Matching, cols)
	}

	for i := rows - 1; i >= 0; i-- {
		for j := cols - 1; j >= 0; j-- {
			cm, err := m.match(lc[i], rc[j])
			if err != nil {
				return nil, err
			}
			pairs[i][j] = cm
			best := max(table[i+1][j], table[i][j+1])
			if cm.Score > 0 {
				best = max(best, table[i+1][j+1]+cm.Score)
			}
			table[i][j] = best
		}
	}

	res := m.newMatching(l, r, rootScore(l, r)+table[0][0])
	for i, j := 0, 0; i < rows && j < cols; {
		cm := pairs[i][j]
		switch {
		case cm.Score > 0 && table[i][j] == table[i+1][j+1]+cm.Score:
			res.Children = append(res.Children, cm)
			i++
			j++
		case table[i][j] == table[i+1][j]:
			i++
		default:
			j++
		}
	}
	return res, nil
}
