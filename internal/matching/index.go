package matching

import "github.com/dusk-indust/structmerge/internal/artifact"

// Index records the matchings a merge committed to, looked up by node and by
// the revision of the tree the partner belongs to.
type Index struct {
	byNode map[artifact.ID]map[artifact.Revision]*Matching
	order  []*Matching
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byNode: make(map[artifact.ID]map[artifact.Revision]*Matching)}
}

// Commit stores m and its committed descendants, colored c. A pair is
// recorded in both directions or not at all: if either node already has a
// partner in the other revision, both keep their earlier partners.
func (x *Index) Commit(m *Matching, c Color) {
	m.Walk(func(cm *Matching) {
		if cm.Score == 0 {
			return
		}
		if x.Has(cm.Left, cm.Right.Rev) || x.Has(cm.Right, cm.Left.Rev) {
			return
		}
		cm.Color = c
		x.put(cm.Left, cm.Right.Rev, cm)
		x.put(cm.Right, cm.Left.Rev, cm)
		x.order = append(x.order, cm)
	})
}

func (x *Index) put(a *artifact.Artifact, rev artifact.Revision, m *Matching) {
	revs, ok := x.byNode[a.ID]
	if !ok {
		revs = make(map[artifact.Revision]*Matching)
		x.byNode[a.ID] = revs
	}
	revs[rev] = m
}

// Get returns a's committed matching with a node of revision rev.
func (x *Index) Get(a *artifact.Artifact, rev artifact.Revision) *Matching {
	if a == nil {
		return nil
	}
	return x.byNode[a.ID][rev]
}

// Partner returns the node of revision rev that a is matched with.
func (x *Index) Partner(a *artifact.Artifact, rev artifact.Revision) *artifact.Artifact {
	m := x.Get(a, rev)
	if m == nil {
		return nil
	}
	return m.Partner(a)
}

// Has reports whether a is matched with some node of revision rev.
func (x *Index) Has(a *artifact.Artifact, rev artifact.Revision) bool {
	return x.Get(a, rev) != nil
}

// Linked reports whether a and b are matched with each other. The relation
// is symmetric.
func (x *Index) Linked(a, b *artifact.Artifact) bool {
	if a == nil || b == nil {
		return false
	}
	return x.Partner(a, b.Rev) == b && x.Partner(b, a.Rev) == a
}

// All returns the committed matchings in commit order.
func (x *Index) All() []*Matching { return x.order }
