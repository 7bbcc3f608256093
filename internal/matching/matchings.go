package matching

import "github.com/dusk-indust/structmerge/internal/artifact"

// Pair is an unordered pair of node IDs.
type Pair struct {
	A, B artifact.ID
}

// MakePair returns the pair of a and b with the smaller ID first.
func MakePair(a, b *artifact.Artifact) Pair {
	if a.ID <= b.ID {
		return Pair{A: a.ID, B: b.ID}
	}
	return Pair{A: b.ID, B: a.ID}
}

// Matchings is a set of matchings with at most one matching per unordered
// pair. Iteration follows insertion order.
type Matchings struct {
	byPair map[Pair]*Matching
	byNode map[artifact.ID][]*Matching
	order  []*Matching
}

// NewMatchings returns a set holding ms.
func NewMatchings(ms ...*Matching) *Matchings {
	s := &Matchings{
		byPair: make(map[Pair]*Matching),
		byNode: make(map[artifact.ID][]*Matching),
	}
	for _, m := range ms {
		s.Add(m)
	}
	return s
}

// Add inserts m unless its pair is already present. It reports whether m
// was added.
func (s *Matchings) Add(m *Matching) bool {
	k := m.Key()
	if _, ok := s.byPair[k]; ok {
		return false
	}
	s.byPair[k] = m
	s.byNode[m.Left.ID] = append(s.byNode[m.Left.ID], m)
	if m.Right.ID != m.Left.ID {
		s.byNode[m.Right.ID] = append(s.byNode[m.Right.ID], m)
	}
	s.order = append(s.order, m)
	return true
}

// AddAll inserts every matching of o.
func (s *Matchings) AddAll(o *Matchings) {
	if o == nil {
		return
	}
	for _, m := range o.order {
		s.Add(m)
	}
}

// Get returns the matching of a and b in either orientation.
func (s *Matchings) Get(a, b *artifact.Artifact) (*Matching, bool) {
	m, ok := s.byPair[MakePair(a, b)]
	return m, ok
}

// For returns every matching a takes part in.
func (s *Matchings) For(a *artifact.Artifact) []*Matching {
	return s.byNode[a.ID]
}

// All returns the matchings in insertion order.
func (s *Matchings) All() []*Matching { return s.order }

func (s *Matchings) Len() int { return len(s.order) }

// TotalScore sums the scores of all matchings.
func (s *Matchings) TotalScore() int {
	total := 0
	for _, m := range s.order {
		total += m.Score
	}
	return total
}

// MeanPercentage averages the percentages of all matchings.
func (s *Matchings) MeanPercentage() float64 {
	if len(s.order) == 0 {
		return 0
	}
	var sum float64
	for _, m := range s.order {
		sum += m.Percentage()
	}
	return sum / float64(len(s.order))
}

// SetColor colors every matching of the set.
func (s *Matchings) SetColor(c Color) {
	for _, m := range s.order {
		m.Color = c
	}
}
