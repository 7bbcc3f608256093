package matcher

import (
	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// matchUniqueLabels matches unordered children that all carry unique labels.
// Only children with equal labels are compared.
func (m *Matcher) matchUniqueLabels(l, r *artifact.Artifact) (*matching.Matching, error) {
	byLabel := make(map[string]*artifact.Artifact, r.NumChildren())
	for _, c := range r.Children() {
		byLabel[c.Unique] = c
	}

	res := m.newMatching(l, r, rootScore(l, r))
	for _, c := range l.Children() {
		partner, ok := byLabel[c.Unique]
		if !ok {
			continue
		}
		cm, err := m.match(c, partner)
		if err != nil {
			return nil, err
		}
		if cm.Score > 0 {
			res.Score += cm.Score
			res.Children = append(res.Children, cm)
		}
	}
	return res, nil
}
