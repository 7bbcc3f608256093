// Package merge merges artifact trees. A merge descends both trees along the
// committed matchings and records every decision as an operation on a
// target tree: additions, deletions, nested merges and conflicts.
package merge

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matcher"
	"github.com/dusk-indust/structmerge/internal/matching"
	"github.com/dusk-indust/structmerge/internal/stats"
)

// DefaultLikelihood is the matching percentage unordered children must
// exceed to be merged as a pair.
const DefaultLikelihood = 0.2

// Options are read once when a Context is created.
type Options struct {
	// Likelihood is the unordered merge threshold in [0,1].
	Likelihood float64
	// DiffOnly stops after matching the roots.
	DiffOnly bool
	Logger   *slog.Logger
	Sink     stats.Sink
	// Counter numbers operations. Merges of unrelated trees may share one.
	Counter *Counter
}

// Counter hands out operation sequence numbers. It is safe for concurrent
// use.
type Counter struct {
	n atomic.Uint64
}

// Next returns the next sequence number, starting at 1.
func (c *Counter) Next() uint64 { return c.n.Add(1) }

// Value returns the last sequence number handed out.
func (c *Counter) Value() uint64 { return c.n.Load() }

// Status tracks whether a node has been merged.
type Status int

const (
	Unvisited Status = iota
	Merged
)

// ConflictRecord describes an emitted conflict. Left or Right is nil for
// insertion and deletion conflicts.
type ConflictRecord struct {
	Seq   uint64
	Left  *artifact.Artifact
	Right *artifact.Artifact
	Base  *artifact.Artifact
	Node  *artifact.Artifact // marker inserted into the target
}

// Result is the outcome of a merge.
type Result struct {
	Session    string
	Target     *artifact.Artifact
	Conflicts  []ConflictRecord
	Operations int
	Matchings  []*matching.Matching
}

// HasConflicts reports whether the merge left conflicts in the target.
func (r *Result) HasConflicts() bool { return len(r.Conflicts) > 0 }

// Context is one merge session. It owns the matcher, the committed
// matchings and the per-node merge status. A Context is not safe for
// concurrent use; run parallel merges with separate contexts.
type Context struct {
	ID string

	opts    Options
	log     *slog.Logger
	sink    stats.Sink
	counter *Counter
	matcher *matcher.Matcher
	index   *matching.Index
	status  map[artifact.ID]Status

	nway      bool
	root      *artifact.Artifact
	ops       int
	conflicts []ConflictRecord
}

// NewContext validates opts and returns a fresh session.
func NewContext(opts Options) (*Context, error) {
	if opts.Likelihood < 0 || opts.Likelihood > 1 {
		return nil, fmt.Errorf("merge: likelihood %v outside [0,1]", opts.Likelihood)
	}
	c := &Context{
		ID:      uuid.NewString(),
		opts:    opts,
		log:     opts.Logger,
		sink:    opts.Sink,
		counter: opts.Counter,
		index:   matching.NewIndex(),
		status:  make(map[artifact.ID]Status),
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.log = c.log.With("session", c.ID)
	if c.sink == nil {
		c.sink = stats.Discard{}
	}
	if c.counter == nil {
		c.counter = &Counter{}
	}
	c.matcher = matcher.New(matcher.WithLogger(c.log))
	return c, nil
}

// Index returns the matchings committed so far.
func (c *Context) Index() *matching.Index { return c.index }

// Merge merges left and right. A nil base runs a two-way merge.
func (c *Context) Merge(left, base, right *artifact.Artifact) (*Result, error) {
	t := ThreeWay
	if base == nil || base.IsEmpty() {
		t = TwoWay
	}
	return c.MergeScenario(NewScenario(t, left, base, right))
}

// MergeScenario merges s into a new target tree.
func (c *Context) MergeScenario(s Scenario) (*Result, error) {
	return c.run(s, artifact.Target)
}

// MergeN folds the variants pairwise, left to right. Divergences become
// choice nodes holding one alternative per variant instead of conflicts.
func (c *Context) MergeN(variants ...*artifact.Artifact) (*Result, error) {
	if len(variants) < 2 {
		return nil, fmt.Errorf("merge: n-way merge needs at least two variants, got %d", len(variants))
	}
	c.nway = true
	defer func() { c.nway = false }()

	acc := variants[0]
	res := &Result{Session: c.ID}
	for i, v := range variants[1:] {
		step, err := c.run(NewScenario(NWay, acc, nil, v), artifact.Target.Derive(strconv.Itoa(i+1)))
		if err != nil {
			return nil, fmt.Errorf("merge variant %d: %w", i+2, err)
		}
		res.Conflicts = append(res.Conflicts, step.Conflicts...)
		res.Operations += step.Operations
		res.Matchings = step.Matchings
		acc = step.Target
	}
	res.Target = acc
	return res, nil
}

// Diff matches left and right without merging.
func (c *Context) Diff(left, right *artifact.Artifact) (*matching.Matchings, error) {
	ms, err := c.matcher.Match(left, right)
	if err != nil {
		return nil, fmt.Errorf("diff %s with %s: %w", left, right, err)
	}
	if root := matcher.Root(ms, left, right); root != nil {
		c.index.Commit(root, matching.Blue)
	}
	return ms, nil
}

func (c *Context) run(s Scenario, rev artifact.Revision) (*Result, error) {
	ops, conflicts := c.ops, len(c.conflicts)

	c.root = s.Left.Copy(rev)
	if err := c.apply(c.newMerge(s, c.root)); err != nil {
		var ie *InvariantError
		if errors.As(err, &ie) {
			c.log.Error("merge aborted", "op", ie.Op, "left", ie.Left.String(), "right", ie.Right.String(), "reason", ie.Reason)
		}
		return nil, err
	}
	if !c.opts.DiffOnly && !c.index.Linked(s.Left, s.Right) {
		return nil, fmt.Errorf("%w: %s and %s", ErrNoMatching, s.Left, s.Right)
	}
	if !c.opts.DiffOnly {
		if err := c.mergeTrailing(s); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Session:    c.ID,
		Target:     c.root,
		Operations: c.ops - ops,
		Conflicts:  append([]ConflictRecord(nil), c.conflicts[conflicts:]...),
		Matchings:  c.index.All(),
	}
	c.log.Info("merge done",
		"type", s.Type.String(),
		"operations", res.Operations,
		"conflicts", len(res.Conflicts))
	return res, nil
}

func (c *Context) merged(a *artifact.Artifact) bool {
	return a != nil && c.status[a.ID] == Merged
}

func (c *Context) setMerged(a *artifact.Artifact) {
	if a != nil {
		c.status[a.ID] = Merged
	}
}

// commitMatch matches a with b and commits the result.
func (c *Context) commitMatch(a, b *artifact.Artifact, color matching.Color) (*matching.Matching, error) {
	ms, err := c.matcher.Match(a, b)
	if err != nil {
		return nil, fmt.Errorf("match %s with %s: %w", a, b, err)
	}
	root := matcher.Root(ms, a, b)
	c.index.Commit(root, color)
	return root, nil
}

// changed reports whether a differs from its counterpart in base.
func (c *Context) changed(a, base *artifact.Artifact) bool {
	if base.IsEmpty() {
		return true
	}
	m := c.index.Get(a, base.Rev)
	return m == nil || !m.Identical()
}

// orient returns x and y as (left, right), deciding by revision.
func orient(x, y *artifact.Artifact, left artifact.Revision) (*artifact.Artifact, *artifact.Artifact) {
	if (x != nil && !x.Rev.DerivedFrom(left)) || (y != nil && y.Rev.DerivedFrom(left)) {
		return y, x
	}
	return x, y
}
