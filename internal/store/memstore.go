package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	nodes    map[string]NodeRecord // key: "session:id"
	children int
	matches  []MatchRecord
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{nodes: make(map[string]NodeRecord)}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// SaveTree stores every node of root.
func (m *MemStore) SaveTree(_ context.Context, session string, root *artifact.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	root.Walk(func(a *artifact.Artifact) bool {
		key := nodeKey(session, a.ID)
		if _, ok := m.nodes[key]; !ok {
			m.children += a.NumChildren()
		}
		m.nodes[key] = recordOf(session, a)
		return true
	})
	return nil
}

// SaveMatchings stores the matchings with a positive score whose nodes are
// known.
func (m *MemStore) SaveMatchings(_ context.Context, session string, ms []*matching.Matching) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mt := range ms {
		if mt.Score == 0 {
			continue
		}
		_, lok := m.nodes[nodeKey(session, mt.Left.ID)]
		_, rok := m.nodes[nodeKey(session, mt.Right.ID)]
		if lok && rok {
			m.matches = append(m.matches, matchOf(session, mt))
		}
	}
	return nil
}

// Nodes returns the nodes of one tree of a session ordered by ID.
func (m *MemStore) Nodes(_ context.Context, session string, rev artifact.Revision) ([]NodeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []NodeRecord
	for _, n := range m.nodes {
		if n.Session == session && n.Rev == string(rev) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Matchings returns the matchings of a session at or above minPercentage.
func (m *MemStore) Matchings(_ context.Context, session string, minPercentage float64) ([]MatchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []MatchRecord
	for _, r := range m.matches {
		if r.Session == session && r.Percentage >= minPercentage {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Left != out[j].Left {
			return out[i].Left < out[j].Left
		}
		return out[i].Right < out[j].Right
	})
	return out, nil
}

// Stats counts stored records.
func (m *MemStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sessions := make(map[string]bool)
	for _, n := range m.nodes {
		sessions[n.Session] = true
	}
	return &Stats{
		Sessions: len(sessions),
		Nodes:    len(m.nodes),
		Children: m.children,
		Matches:  len(m.matches),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
