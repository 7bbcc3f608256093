//go:build cgo

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path, so that sessions survive the process.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// KuzuDB creates the leaf directory itself.
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Node(
		key STRING,
		session STRING,
		id INT64,
		rev STRING,
		kind STRING,
		type STRING,
		label STRING,
		line INT64,
		PRIMARY KEY(key)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CHILD(FROM Node TO Node, position INT64)`,
	`CREATE REL TABLE IF NOT EXISTS MATCHES(
		FROM Node TO Node,
		score INT64,
		max_score INT64,
		percentage DOUBLE,
		algorithm STRING,
		color STRING
	)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// SaveTree inserts every node of root and a CHILD edge per parent link.
func (s *KuzuStore) SaveTree(_ context.Context, session string, root *artifact.Artifact) error {
	var err error
	root.Walk(func(a *artifact.Artifact) bool {
		if err != nil {
			return false
		}
		err = s.exec(
			`MERGE (n:Node {key: $key})
			SET n.session = $session, n.id = $id, n.rev = $rev, n.kind = $kind,
				n.type = $type, n.label = $label, n.line = $line`,
			map[string]any{
				"key":     nodeKey(session, a.ID),
				"session": session,
				"id":      int64(a.ID),
				"rev":     string(a.Rev),
				"kind":    a.Kind.String(),
				"type":    a.Type,
				"label":   a.Label,
				"line":    int64(a.Line),
			},
		)
		return err == nil
	})
	if err != nil {
		return err
	}

	root.Walk(func(a *artifact.Artifact) bool {
		if err != nil {
			return false
		}
		for i, c := range a.Children() {
			err = s.exec(
				`MATCH (p:Node {key: $parent}), (c:Node {key: $child})
				CREATE (p)-[:CHILD {position: $pos}]->(c)`,
				map[string]any{
					"parent": nodeKey(session, a.ID),
					"child":  nodeKey(session, c.ID),
					"pos":    int64(i),
				},
			)
			if err != nil {
				return false
			}
		}
		return true
	})
	return err
}

// SaveMatchings inserts a MATCHES edge per matching with a positive score.
// Matchings between unknown nodes are dropped by the MATCH clause.
func (s *KuzuStore) SaveMatchings(_ context.Context, session string, ms []*matching.Matching) error {
	for _, m := range ms {
		if m.Score == 0 {
			continue
		}
		err := s.exec(
			`MATCH (l:Node {key: $left}), (r:Node {key: $right})
			CREATE (l)-[:MATCHES {score: $score, max_score: $max, percentage: $pct, algorithm: $algo, color: $color}]->(r)`,
			map[string]any{
				"left":  nodeKey(session, m.Left.ID),
				"right": nodeKey(session, m.Right.ID),
				"score": int64(m.Score),
				"max":   int64(m.MaxScore),
				"pct":   m.Percentage(),
				"algo":  m.Algorithm,
				"color": m.Color.String(),
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ---------- Read operations ----------

// Nodes returns the nodes of one tree of a session ordered by ID.
func (s *KuzuStore) Nodes(_ context.Context, session string, rev artifact.Revision) ([]NodeRecord, error) {
	rows, err := s.query(
		`MATCH (n:Node)
		WHERE n.session = $session AND n.rev = $rev
		OPTIONAL MATCH (p:Node)-[:CHILD]->(n)
		RETURN n.id, p.id, n.rev, n.kind, n.type, n.label, n.line
		ORDER BY n.id`,
		map[string]any{"session": session, "rev": string(rev)},
	)
	if err != nil {
		return nil, err
	}
	out := make([]NodeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, NodeRecord{
			Session: session,
			ID:      toUint(r[0]),
			Parent:  toUint(r[1]),
			Rev:     toString(r[2]),
			Kind:    toString(r[3]),
			Type:    toString(r[4]),
			Label:   toString(r[5]),
			Line:    toInt(r[6]),
		})
	}
	return out, nil
}

// Matchings returns the matchings of a session at or above minPercentage.
func (s *KuzuStore) Matchings(_ context.Context, session string, minPercentage float64) ([]MatchRecord, error) {
	rows, err := s.query(
		`MATCH (l:Node)-[m:MATCHES]->(r:Node)
		WHERE l.session = $session AND m.percentage >= $min
		RETURN l.id, l.rev, l.label, r.id, r.rev, r.label,
			m.score, m.max_score, m.percentage, m.algorithm, m.color
		ORDER BY l.id, r.id`,
		map[string]any{"session": session, "min": minPercentage},
	)
	if err != nil {
		return nil, err
	}
	out := make([]MatchRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, MatchRecord{
			Session:    session,
			Left:       toUint(r[0]),
			LeftRev:    toString(r[1]),
			LeftLabel:  toString(r[2]),
			Right:      toUint(r[3]),
			RightRev:   toString(r[4]),
			RightLabel: toString(r[5]),
			Score:      toInt(r[6]),
			MaxScore:   toInt(r[7]),
			Percentage: toFloat64(r[8]),
			Algorithm:  toString(r[9]),
			Color:      toString(r[10]),
		})
	}
	return out, nil
}

// Stats counts stored records.
func (s *KuzuStore) Stats(_ context.Context) (*Stats, error) {
	var st Stats
	counts := []struct {
		cypher string
		dst    *int
	}{
		{"MATCH (n:Node) RETURN count(DISTINCT n.session)", &st.Sessions},
		{"MATCH (n:Node) RETURN count(n)", &st.Nodes},
		{"MATCH ()-[r:CHILD]->() RETURN count(r)", &st.Children},
		{"MATCH ()-[r:MATCHES]->() RETURN count(r)", &st.Matches},
	}
	for _, c := range counts {
		rows, err := s.query(c.cypher, nil)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			*c.dst = toInt(rows[0][0])
		}
	}
	return &st, nil
}

// ---------- Helpers ----------

// exec runs a parameterized Cypher statement that returns no rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// Row values come back from the driver as loosely typed values.

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toUint(v any) uint64 {
	if n := toInt(v); n > 0 {
		return uint64(n)
	}
	return 0
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
