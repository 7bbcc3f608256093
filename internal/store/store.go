// Package store persists artifact trees and their matchings so that merge
// sessions can be inspected after the fact.
package store

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// Store is the persistence interface for merge sessions.
// Implementations: KuzuStore (cgo builds), MemStore.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations. Matchings are only stored between nodes that were
	// saved before.
	SaveTree(ctx context.Context, session string, root *artifact.Artifact) error
	SaveMatchings(ctx context.Context, session string, ms []*matching.Matching) error

	// Read operations.
	Nodes(ctx context.Context, session string, rev artifact.Revision) ([]NodeRecord, error)
	Matchings(ctx context.Context, session string, minPercentage float64) ([]MatchRecord, error)

	Stats(ctx context.Context) (*Stats, error)
}

// NodeRecord is a stored artifact. Parent is zero for roots.
type NodeRecord struct {
	Session string `json:"session"`
	ID      uint64 `json:"id"`
	Parent  uint64 `json:"parent,omitempty"`
	Rev     string `json:"rev"`
	Kind    string `json:"kind"`
	Type    string `json:"type"`
	Label   string `json:"label"`
	Line    int    `json:"line,omitempty"`
}

// MatchRecord is a stored matching.
type MatchRecord struct {
	Session    string  `json:"session"`
	Left       uint64  `json:"left"`
	LeftRev    string  `json:"leftRev"`
	LeftLabel  string  `json:"leftLabel"`
	Right      uint64  `json:"right"`
	RightRev   string  `json:"rightRev"`
	RightLabel string  `json:"rightLabel"`
	Score      int     `json:"score"`
	MaxScore   int     `json:"maxScore"`
	Percentage float64 `json:"percentage"`
	Algorithm  string  `json:"algorithm"`
	Color      string  `json:"color"`
}

// Stats summarizes the contents of a store.
type Stats struct {
	Sessions int `json:"sessions"`
	Nodes    int `json:"nodes"`
	Children int `json:"children"`
	Matches  int `json:"matches"`
}

// nodeKey identifies a node across sessions.
func nodeKey(session string, id artifact.ID) string {
	return session + ":" + strconv.FormatUint(uint64(id), 10)
}

func recordOf(session string, a *artifact.Artifact) NodeRecord {
	r := NodeRecord{
		Session: session,
		ID:      uint64(a.ID),
		Rev:     string(a.Rev),
		Kind:    a.Kind.String(),
		Type:    a.Type,
		Label:   a.Label,
		Line:    a.Line,
	}
	if p := a.Parent(); p != nil {
		r.Parent = uint64(p.ID)
	}
	return r
}

func matchOf(session string, m *matching.Matching) MatchRecord {
	return MatchRecord{
		Session:    session,
		Left:       uint64(m.Left.ID),
		LeftRev:    string(m.Left.Rev),
		LeftLabel:  m.Left.Label,
		Right:      uint64(m.Right.ID),
		RightRev:   string(m.Right.Rev),
		RightLabel: m.Right.Label,
		Score:      m.Score,
		MaxScore:   m.MaxScore,
		Percentage: m.Percentage(),
		Algorithm:  m.Algorithm,
		Color:      m.Color.String(),
	}
}

// SaveMerge stores the input trees, the merged tree and all committed
// matchings of one session.
func SaveMerge(ctx context.Context, s Store, session string, ms []*matching.Matching, trees ...*artifact.Artifact) error {
	for _, t := range trees {
		if t == nil || t.IsEmpty() {
			continue
		}
		if err := s.SaveTree(ctx, session, t); err != nil {
			return fmt.Errorf("save %s tree: %w", t.Rev, err)
		}
	}
	if err := s.SaveMatchings(ctx, session, ms); err != nil {
		return fmt.Errorf("save matchings: %w", err)
	}
	return nil
}
