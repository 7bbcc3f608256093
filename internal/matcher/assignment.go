package matcher

import (
	"fmt"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// matchUnordered matches every child of l against every child of r and picks
// the assignment with the highest total score.
func (m *Matcher) matchUnordered(l, r *artifact.Artifact) (*matching.Matching, error) {
	lc, rc := l.Children(), r.Children()
	children := make([][]*matching.Matching, len(lc))
	for i, a := range lc {
		children[i] = make([]*matching.Matching, len(rc))
		for j, b := range rc {
			cm, err := m.match(a, b)
			if err != nil {
				return nil, err
			}
			children[i][j] = cm
		}
	}
	return m.solveAssignmentProblem(l, r, children, rootScore(l, r))
}

// solveAssignmentProblem turns the child matchings into the root matching.
// Assigned pairs with a zero score are not kept.
func (m *Matcher) solveAssignmentProblem(l, r *artifact.Artifact, children [][]*matching.Matching, root int) (*matching.Matching, error) {
	res := m.newMatching(l, r, root)
	if len(children) == 0 || len(children[0]) == 0 {
		return res, nil
	}

	scores := make([][]int, len(children))
	for i, row := range children {
		scores[i] = make([]int, len(row))
		for j, cm := range row {
			scores[i][j] = cm.Score
		}
	}
	assign, err := Assign(scores)
	if err != nil {
		return nil, fmt.Errorf("match %s with %s: %w", l, r, err)
	}
	for i, j := range assign {
		if j < 0 || scores[i][j] == 0 {
			continue
		}
		res.Score += scores[i][j]
		res.Children = append(res.Children, children[i][j])
	}
	return res, nil
}
