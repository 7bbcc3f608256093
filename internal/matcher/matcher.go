// Package matcher computes the best correspondence between two artifact
// trees. Children whose order matters are matched with a longest common
// subsequence table, unordered children as an assignment problem.
package matcher

import (
	"log/slog"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// strategy is the closed set of matching algorithms.
type strategy int

const (
	strategyTrivial strategy = iota
	strategyIdentical
	strategyOrdered
	strategyUniqueLabel
	strategyAssignment
)

func (s strategy) String() string {
	switch s {
	case strategyTrivial:
		return "trivial"
	case strategyIdentical:
		return "identical"
	case strategyOrdered:
		return "ordered"
	case strategyUniqueLabel:
		return "unique-label"
	case strategyAssignment:
		return "hungarian"
	default:
		return "unknown"
	}
}

type pairKey struct {
	left, right artifact.ID
}

// Matcher matches artifact trees. A Matcher keeps a predicate cache over the
// trees it has seen and must not be used by more than one goroutine.
type Matcher struct {
	cache *Cache
	log   *slog.Logger

	// Per Match call.
	memo    map[pairKey]*matching.Matching
	visited *matching.Matchings
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger used for per-match diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) { m.log = l }
}

// New returns a Matcher with an empty cache.
func New(opts ...Option) *Matcher {
	m := &Matcher{cache: NewCache(), log: slog.Default()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Cache returns the matcher's predicate cache.
func (m *Matcher) Cache() *Cache { return m.cache }

// Match computes the best matching of left and right. The result holds the
// root matching for the pair plus every positively scored pair visited on
// the way; the root's Children link the pairs the algorithm committed to.
func (m *Matcher) Match(left, right *artifact.Artifact) (*matching.Matchings, error) {
	m.memo = make(map[pairKey]*matching.Matching)
	m.visited = matching.NewMatchings()
	defer func() {
		m.memo = nil
		m.visited = nil
	}()

	root, err := m.match(left, right)
	if err != nil {
		return nil, err
	}
	out := matching.NewMatchings(root)
	out.AddAll(m.visited)

	m.log.Debug("match",
		"left", left.String(),
		"right", right.String(),
		"algorithm", root.Algorithm,
		"score", root.Score,
		"percentage", root.Percentage(),
		"pairs", out.Len())
	return out, nil
}

// Root returns the matching of left and right from a Match result.
func Root(ms *matching.Matchings, left, right *artifact.Artifact) *matching.Matching {
	m, _ := ms.Get(left, right)
	return m
}

func (m *Matcher) match(l, r *artifact.Artifact) (*matching.Matching, error) {
	key := pairKey{l.ID, r.ID}
	if cached, ok := m.memo[key]; ok {
		return cached, nil
	}

	var (
		res *matching.Matching
		err error
	)
	s := m.strategyFor(l, r)
	switch s {
	case strategyTrivial:
		res = m.newMatching(l, r, 0)
		if l.Matches(r) {
			res.Score = 1
		}
	case strategyIdentical:
		res = m.matchIdentical(l, r)
	case strategyOrdered:
		res, err = m.matchOrdered(l, r)
	case strategyUniqueLabel:
		res, err = m.matchUniqueLabels(l, r)
	case strategyAssignment:
		res, err = m.matchUnordered(l, r)
	}
	if err != nil {
		return nil, err
	}
	res.Algorithm = s.String()

	m.memo[key] = res
	if res.Score > 0 {
		m.visited.Add(res)
	}
	return res, nil
}

func (m *Matcher) strategyFor(l, r *artifact.Artifact) strategy {
	switch {
	case !l.Matches(r), !l.HasChildren(), !r.HasChildren():
		return strategyTrivial
	case m.cache.Fingerprint(l) == m.cache.Fingerprint(r):
		return strategyIdentical
	case !m.cache.UnorderedChildren(l) && !m.cache.UnorderedChildren(r):
		return strategyOrdered
	case m.cache.UniquelyLabeledChildren(l) && m.cache.UniquelyLabeledChildren(r):
		return strategyUniqueLabel
	default:
		return strategyAssignment
	}
}

func (m *Matcher) newMatching(l, r *artifact.Artifact, score int) *matching.Matching {
	return &matching.Matching{
		Left:     l,
		Right:    r,
		Score:    score,
		MaxScore: max(m.cache.Size(l), m.cache.Size(r)),
	}
}

// rootScore is the score contribution of the pair itself.
func rootScore(l, r *artifact.Artifact) int {
	if l.Matches(r) {
		return 1
	}
	return 0
}

// matchIdentical matches two subtrees with equal fingerprints node by node.
// Ordered children pair up by position, unordered ones by fingerprint.
func (m *Matcher) matchIdentical(l, r *artifact.Artifact) *matching.Matching {
	res := m.newMatching(l, r, m.cache.Size(l))
	res.Algorithm = strategyIdentical.String()

	lc, rc := l.Children(), r.Children()
	if m.cache.FullyOrdered(l) && m.cache.FullyOrdered(r) && len(lc) == len(rc) {
		for i := range lc {
			res.Children = append(res.Children, m.identicalChild(lc[i], rc[i]))
		}
		return res
	}

	queues := make(map[uint64][]*artifact.Artifact, len(rc))
	for _, c := range rc {
		fp := m.cache.Fingerprint(c)
		queues[fp] = append(queues[fp], c)
	}
	for _, c := range lc {
		fp := m.cache.Fingerprint(c)
		q := queues[fp]
		if len(q) == 0 {
			continue
		}
		queues[fp] = q[1:]
		res.Children = append(res.Children, m.identicalChild(c, q[0]))
	}
	return res
}

func (m *Matcher) identicalChild(l, r *artifact.Artifact) *matching.Matching {
	key := pairKey{l.ID, r.ID}
	if cached, ok := m.memo[key]; ok {
		return cached
	}
	cm := m.matchIdentical(l, r)
	m.memo[key] = cm
	m.visited.Add(cm)
	return cm
}
