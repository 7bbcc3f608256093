// Package matching holds the scored correspondences between nodes of two
// artifact trees, and the index a merge commits them to.
package matching

import (
	"bytes"
	"fmt"

	"github.com/dusk-indust/structmerge/internal/artifact"
)

// Matching pairs two artifacts. Score counts the matched node pairs of both
// subtrees; MaxScore is the best score the pair could have reached.
type Matching struct {
	Left      *artifact.Artifact
	Right     *artifact.Artifact
	Score     int
	MaxScore  int
	Algorithm string
	Color     Color

	// Children are the child matchings the algorithm committed to.
	Children []*Matching
}

// New returns a matching for left and right. The maximum score is the size
// of the larger subtree.
func New(left, right *artifact.Artifact, score int) *Matching {
	return &Matching{Left: left, Right: right, Score: score, MaxScore: max(left.Size(), right.Size())}
}

// Percentage returns Score normalized by MaxScore.
func (m *Matching) Percentage() float64 {
	if m.MaxScore == 0 {
		return 0
	}
	return float64(m.Score) / float64(m.MaxScore)
}

// Full reports whether every node of both subtrees is matched.
func (m *Matching) Full() bool {
	return m.MaxScore > 0 && m.Score == m.MaxScore
}

// Partner returns the artifact a is matched with, or nil if a is not part
// of the matching.
func (m *Matching) Partner(a *artifact.Artifact) *artifact.Artifact {
	switch a {
	case m.Left:
		return m.Right
	case m.Right:
		return m.Left
	default:
		return nil
	}
}

// Key returns the unordered pair of node IDs.
func (m *Matching) Key() Pair { return MakePair(m.Left, m.Right) }

// Walk calls fn for m and every committed descendant matching.
func (m *Matching) Walk(fn func(*Matching)) {
	fn(m)
	for _, c := range m.Children {
		c.Walk(fn)
	}
}

// Identical reports whether the matched subtrees are equal: every node is
// matched and every matched pair carries the same content and the same
// surrounding text, so comment and whitespace edits count as changes.
func (m *Matching) Identical() bool {
	if !m.Full() {
		return false
	}
	same := true
	m.Walk(func(c *Matching) {
		if !bytes.Equal(c.Left.Content, c.Right.Content) ||
			c.Left.Leading != c.Right.Leading ||
			c.Left.Trailing != c.Right.Trailing {
			same = false
		}
	})
	return same
}

func (m *Matching) String() string {
	return fmt.Sprintf("%s <-> %s score=%d/%d (%s)", m.Left, m.Right, m.Score, m.MaxScore, m.Algorithm)
}
