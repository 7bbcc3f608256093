package merge

import (
	"errors"
	"testing"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
	"github.com/dusk-indust/structmerge/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestContext(t *testing.T, opts Options) *Context {
	t.Helper()
	if opts.Likelihood == 0 {
		opts.Likelihood = DefaultLikelihood
	}
	c, err := NewContext(opts)
	require.NoError(t, err)
	return c
}

func childLabels(a *artifact.Artifact) []string {
	out := make([]string, 0, a.NumChildren())
	for _, c := range a.Children() {
		out = append(out, c.Label)
	}
	return out
}

func builders() (l, b, r *artifact.Builder) {
	return artifact.NewBuilder(artifact.Left), artifact.NewBuilder(artifact.Base), artifact.NewBuilder(artifact.Right)
}

// orderedScenario: B changed on the left, D appended on the right.
func orderedScenario() (left, base, right *artifact.Artifact) {
	l, b, r := builders()
	base = b.List("root", b.Leaf("A"), b.Tuple("B", b.Leaf("x")), b.Leaf("C"))
	left = l.List("root", l.Leaf("A"), l.Tuple("B", l.Leaf("x2")), l.Leaf("C"))
	right = r.List("root", r.Leaf("A"), r.Tuple("B", r.Leaf("x")), r.Leaf("C"), r.Leaf("D"))
	return left, base, right
}

// ---------------------------------------------------------------------------
// Ordered lists
// ---------------------------------------------------------------------------

func TestMerge_OrderedChangeAndAppend(t *testing.T) {
	left, base, right := orderedScenario()
	c := newTestContext(t, Options{})

	res, err := c.Merge(left, base, right)
	require.NoError(t, err)

	assert.False(t, res.HasConflicts())
	assert.Equal(t, []string{"A", "B", "C", "D"}, childLabels(res.Target))
	assert.Equal(t, []string{"x2"}, childLabels(res.Target.Child(1)))
	assert.Equal(t, artifact.Target, res.Target.Rev)
}

func TestMerge_OrderedDeleteChangeConflict(t *testing.T) {
	l, b, r := builders()
	base := b.List("root", b.Leaf("A"), b.Tuple("B", b.Leaf("x")))
	left := l.List("root", l.Leaf("A"))
	right := r.List("root", r.Leaf("A"), r.Tuple("B", r.Leaf("y")))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	conflict := res.Conflicts[0]
	assert.Nil(t, conflict.Left)
	assert.Same(t, right.Child(1), conflict.Right)
	assert.Same(t, base.Child(1), conflict.Base)

	require.Equal(t, 2, res.Target.NumChildren())
	marker := res.Target.Child(1)
	assert.True(t, marker.IsConflict())
	assert.Nil(t, marker.Conflict.Left)
	assert.Equal(t, artifact.Right, marker.Conflict.RightRev)
}

func TestMerge_OrderedCleanDelete(t *testing.T) {
	l, b, r := builders()
	base := b.List("root", b.Leaf("A"), b.Leaf("B"), b.Leaf("C"))
	left := l.List("root", l.Leaf("A"), l.Leaf("C"))
	right := r.List("root", r.Leaf("A"), r.Leaf("B"), r.Leaf("C"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	assert.False(t, res.HasConflicts())
	assert.Equal(t, []string{"A", "C"}, childLabels(res.Target))
}

func TestMerge_OrderedInsertionsOnBothSides(t *testing.T) {
	l, b, r := builders()
	base := b.List("root", b.Leaf("A"), b.Leaf("C"))
	left := l.List("root", l.Leaf("A"), l.Leaf("L"), l.Leaf("C"))
	right := r.List("root", r.Leaf("A"), r.Leaf("C"), r.Leaf("R"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	assert.False(t, res.HasConflicts())
	assert.Equal(t, []string{"A", "L", "C", "R"}, childLabels(res.Target))
}

func TestMerge_OrderedReplacedOnBothSides(t *testing.T) {
	l, b, r := builders()
	base := b.List("root", b.Leaf("A"), b.Leaf("B"), b.Leaf("C"))
	left := l.List("root", l.Leaf("A"), l.Leaf("X"), l.Leaf("C"))
	right := r.List("root", r.Leaf("A"), r.Leaf("Y"), r.Leaf("C"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	assert.Same(t, left.Child(1), res.Conflicts[0].Left)
	assert.Same(t, right.Child(1), res.Conflicts[0].Right)
	assert.Same(t, base.Child(1), res.Conflicts[0].Base)
	assert.Equal(t, []string{"A", "conflict", "C"}, childLabels(res.Target))
}

func TestMerge_OrderedReplacedOnOneSideDeletedOnOther(t *testing.T) {
	l, b, r := builders()
	base := b.List("root", b.Leaf("A"), b.Leaf("B"), b.Leaf("C"))
	left := l.List("root", l.Leaf("A"), l.Leaf("X"), l.Leaf("C"))
	right := r.List("root", r.Leaf("A"), r.Leaf("C"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	assert.False(t, res.HasConflicts())
	assert.Equal(t, []string{"A", "X", "C"}, childLabels(res.Target))
}

func TestMerge_OrderedOneToManyConflict(t *testing.T) {
	l, b, r := builders()
	base := b.List("root", b.Leaf("A"), b.Tuple("B", b.Leaf("x")))
	left := l.List("root", l.Leaf("A"), l.Tuple("B", l.Leaf("y")))
	right := r.List("root", r.Leaf("A"), r.Leaf("P"), r.Leaf("Q"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	marker := res.Conflicts[0].Node
	require.True(t, marker.IsConflict())
	assert.Equal(t, []string{"B"}, childLabels(marker.Conflict.Left))
	assert.Equal(t, []string{"P", "Q"}, childLabels(marker.Conflict.Right))
	assert.Equal(t, artifact.Left, marker.Conflict.LeftRev)
	assert.Equal(t, artifact.Right, marker.Conflict.RightRev)
}

// ---------------------------------------------------------------------------
// Unordered children
// ---------------------------------------------------------------------------

func TestMerge_UnorderedDeleteAndAdd(t *testing.T) {
	l, b, r := builders()
	base := b.Set("root", b.Leaf("X"), b.Leaf("Y"))
	left := l.Set("root", l.Leaf("X"), l.Leaf("Y"), l.Leaf("Z"))
	right := r.Set("root", r.Leaf("X"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	assert.False(t, res.HasConflicts())
	assert.ElementsMatch(t, []string{"X", "Z"}, childLabels(res.Target))
}

func TestMerge_UnorderedBothChangedIsOneConflict(t *testing.T) {
	l, b, r := builders()
	base := b.Set("root", b.Tuple("F", b.Leaf("a"), b.Leaf("b"), b.Leaf("c")))
	left := l.Set("root", l.Tuple("F", l.Leaf("a"), l.Leaf("b"), l.Leaf("x")))
	right := r.Set("root", r.Tuple("F", r.Leaf("a"), r.Leaf("y"), r.Leaf("c")))

	res, err := newTestContext(t, Options{Likelihood: 0.7}).Merge(left, base, right)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	assert.Same(t, left.Child(0), res.Conflicts[0].Left)
	assert.Same(t, right.Child(0), res.Conflicts[0].Right)
	assert.Same(t, base.Child(0), res.Conflicts[0].Base)
	assert.Equal(t, 1, res.Target.NumChildren())
}

func TestMerge_UnorderedChangedOnOneSideWins(t *testing.T) {
	l, b, r := builders()
	base := b.Set("root", b.Tuple("F", b.Leaf("a"), b.Leaf("b"), b.Leaf("c")))
	left := l.Set("root", l.Tuple("F", l.Leaf("a"), l.Leaf("b"), l.Leaf("c")))
	right := r.Set("root", r.Tuple("F", r.Leaf("a"), r.Leaf("y"), r.Leaf("z")))

	res, err := newTestContext(t, Options{Likelihood: 0.6}).Merge(left, base, right)
	require.NoError(t, err)

	assert.False(t, res.HasConflicts())
	require.Equal(t, 1, res.Target.NumChildren())
	assert.Equal(t, []string{"a", "y", "z"}, childLabels(res.Target.Child(0)))
}

// ---------------------------------------------------------------------------
// Direct merge and leaves
// ---------------------------------------------------------------------------

func TestMerge_DirectSlotConflict(t *testing.T) {
	l, b, r := builders()
	base := b.Tuple("root", b.Leaf("a"))
	left := l.Tuple("root", l.Leaf("b"))
	right := r.Tuple("root", r.Leaf("c"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	assert.Same(t, left.Child(0), res.Conflicts[0].Left)
	assert.Same(t, right.Child(0), res.Conflicts[0].Right)
}

func TestMerge_DirectSlotOneSideChanged(t *testing.T) {
	l, b, r := builders()
	base := b.Tuple("root", b.Leaf("a"), b.Leaf("k"))
	left := l.Tuple("root", l.Leaf("a"), l.Leaf("k"))
	right := r.Tuple("root", r.Leaf("c"), r.Leaf("k"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	assert.False(t, res.HasConflicts())
	assert.Equal(t, []string{"c", "k"}, childLabels(res.Target))
}

func TestMerge_LeafContent(t *testing.T) {
	tests := []struct {
		name              string
		base, left, right string
		want              string
		conflict          bool
	}{
		{"left changed", "one", "two", "one", "two", false},
		{"right changed", "one", "one", "three", "three", false},
		{"same change", "one", "two", "two", "two", false},
		{"both changed", "one", "two", "three", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, b, r := builders()
			res, err := newTestContext(t, Options{}).Merge(
				l.Text("file", "a.txt", tc.left),
				b.Text("file", "a.txt", tc.base),
				r.Text("file", "a.txt", tc.right),
			)
			require.NoError(t, err)
			if tc.conflict {
				require.Len(t, res.Conflicts, 1)
				assert.True(t, res.Target.IsConflict())
				return
			}
			assert.False(t, res.HasConflicts())
			assert.Equal(t, tc.want, string(res.Target.Content))
		})
	}
}

func TestMerge_LeadingText(t *testing.T) {
	tests := []struct {
		name              string
		base, left, right string
		want              string
		conflict          bool
	}{
		{"left changed", "// old\n", "// new\n", "// old\n", "// new\n", false},
		{"right changed", "// old\n", "// old\n", "// new\n", "// new\n", false},
		{"whitespace only", "\n", "\n", "\n\n", "\n\n", false},
		{"same change", "// old\n", "// new\n", "// new\n", "// new\n", false},
		{"both changed", "// old\n", "// one\n", "// two\n", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, b, r := builders()
			leaf := func(bld *artifact.Builder, leading string) *artifact.Artifact {
				a := bld.Text("token", "func", "func")
				a.Leading = leading
				return a
			}
			res, err := newTestContext(t, Options{}).Merge(leaf(l, tc.left), leaf(b, tc.base), leaf(r, tc.right))
			require.NoError(t, err)
			if tc.conflict {
				require.Len(t, res.Conflicts, 1)
				assert.True(t, res.Target.IsConflict())
				return
			}
			assert.False(t, res.HasConflicts())
			assert.Equal(t, tc.want, res.Target.Leading)
			assert.Equal(t, "func", string(res.Target.Content))
		})
	}
}

func TestMerge_CommentAndCodeEditsCombine(t *testing.T) {
	l, b, r := builders()
	doc := func(a *artifact.Artifact, text string) *artifact.Artifact {
		a.Leading = text
		return a
	}
	base := b.Tuple("f", doc(b.Leaf("func"), "// old doc\n"), b.Leaf("1"))
	left := l.Tuple("f", doc(l.Leaf("func"), "// old doc\n"), l.Leaf("3"))
	right := r.Tuple("f", doc(r.Leaf("func"), "// new doc\n"), r.Leaf("1"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	assert.False(t, res.HasConflicts())
	assert.Equal(t, []string{"func", "3"}, childLabels(res.Target))
	assert.Equal(t, "// new doc\n", res.Target.Child(0).Leading)
}

func TestMerge_DeleteVersusCommentEditConflicts(t *testing.T) {
	l, b, r := builders()
	doc := func(a *artifact.Artifact, text string) *artifact.Artifact {
		a.Leading = text
		return a
	}
	base := b.Set("root", b.Tuple("F", doc(b.Leaf("f"), "// old\n")), b.Leaf("G"))
	left := l.Set("root", l.Leaf("G"))
	right := r.Set("root", r.Tuple("F", doc(r.Leaf("f"), "// new\n")), r.Leaf("G"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	assert.Nil(t, res.Conflicts[0].Left)
	assert.Same(t, right.Child(0), res.Conflicts[0].Right)
	assert.Same(t, base.Child(0), res.Conflicts[0].Base)
}

func TestMerge_TrailingText(t *testing.T) {
	tests := []struct {
		name              string
		base, left, right string
		want              string
		conflict          bool
	}{
		{"unchanged", "\n", "\n", "\n", "\n", false},
		{"left changed", "\n", "\n// end\n", "\n", "\n// end\n", false},
		{"right changed", "\n", "\n", "\n// end\n", "\n// end\n", false},
		{"both changed", "\n", "\n// one\n", "\n// two\n", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, b, r := builders()
			tree := func(bld *artifact.Builder, trailing string) *artifact.Artifact {
				a := bld.List("root", bld.Leaf("A"))
				a.Trailing = trailing
				return a
			}
			res, err := newTestContext(t, Options{}).Merge(tree(l, tc.left), tree(b, tc.base), tree(r, tc.right))
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Target.Trailing)
			if !tc.conflict {
				assert.False(t, res.HasConflicts())
				assert.Equal(t, []string{"A"}, childLabels(res.Target))
				return
			}

			require.Len(t, res.Conflicts, 1)
			last := res.Target.Child(res.Target.NumChildren() - 1)
			require.True(t, last.IsConflict())
			assert.Equal(t, tc.left, string(last.Conflict.Left.Content))
			assert.Equal(t, tc.right, string(last.Conflict.Right.Content))
		})
	}
}

func TestMerge_UnorderedAdditionsStayInsideDelimiters(t *testing.T) {
	imports := func(bld *artifact.Builder, paths ...string) *artifact.Artifact {
		specs := make([]*artifact.Artifact, 0, len(paths))
		for _, p := range paths {
			specs = append(specs, artifact.Keyed(p, bld.Leaf(p)))
		}
		return bld.Block("imports", bld.Leaf("("), bld.Leaf(")"), specs...)
	}
	tests := []struct {
		name              string
		base, left, right []string
		want              []string
	}{
		{"both added", []string{"fmt"}, []string{"fmt", "io"}, []string{"fmt", "os"}, []string{"(", "fmt", "io", "os", ")"}},
		{"left emptied", []string{"fmt"}, nil, []string{"fmt", "os"}, []string{"(", "os", ")"}},
		{"right emptied", []string{"fmt"}, []string{"fmt", "io"}, nil, []string{"(", "io", ")"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, b, r := builders()
			res, err := newTestContext(t, Options{}).Merge(
				imports(l, tc.left...),
				imports(b, tc.base...),
				imports(r, tc.right...),
			)
			require.NoError(t, err)

			assert.False(t, res.HasConflicts())
			assert.Equal(t, tc.want, childLabels(res.Target))
		})
	}
}

func TestMerge_OneSideLostAllChildren(t *testing.T) {
	l, b, r := builders()
	base := b.Set("root", b.Leaf("x"), b.Leaf("y"))
	left := l.Set("root")
	right := r.Set("root", r.Leaf("x"), r.Leaf("y"))

	res, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	assert.False(t, res.HasConflicts())
	assert.Equal(t, 0, res.Target.NumChildren())
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestMerge_TwoWayIdempotent(t *testing.T) {
	l := artifact.NewBuilder(artifact.Left)
	left := l.List("root",
		l.Leaf("A"),
		l.Set("s", l.Leaf("X"), l.Leaf("Y")),
		l.Tuple("t", l.Leaf("P"), l.Leaf("Q")),
	)
	right := left.DeepCopy(artifact.Right)

	res, err := newTestContext(t, Options{}).Merge(left, nil, right)
	require.NoError(t, err)

	assert.False(t, res.HasConflicts())
	assert.Equal(t, left.Size(), res.Target.Size())
	assert.Equal(t, artifact.Fingerprint(left), artifact.Fingerprint(res.Target))
}

func TestMerge_Deterministic(t *testing.T) {
	left, base, right := orderedScenario()

	first, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)
	second, err := newTestContext(t, Options{}).Merge(left, base, right)
	require.NoError(t, err)

	assert.Equal(t, artifact.Fingerprint(first.Target), artifact.Fingerprint(second.Target))
	assert.Equal(t, len(first.Conflicts), len(second.Conflicts))
	assert.Equal(t, first.Operations, second.Operations)
}

func TestMerge_SequenceNumbersIncrease(t *testing.T) {
	left, base, right := orderedScenario()
	reporter := stats.NewReporter(256)
	var counter stats.Counter

	_, err := newTestContext(t, Options{Sink: stats.Multi(reporter, &counter)}).Merge(left, base, right)
	require.NoError(t, err)
	reporter.Close()

	var last uint64
	for e := range reporter.Subscribe() {
		assert.Greater(t, e.Seq, last)
		last = e.Seq
	}
	s := counter.Summary()
	assert.Zero(t, s.Conflicts)
	assert.Equal(t, int64(2), s.Adds, "x2 and D")
}

func TestMerge_SharedCounter(t *testing.T) {
	shared := &Counter{}
	for range 2 {
		left, base, right := orderedScenario()
		_, err := newTestContext(t, Options{Counter: shared}).Merge(left, base, right)
		require.NoError(t, err)
	}
	assert.Greater(t, shared.Value(), uint64(10))
}

// ---------------------------------------------------------------------------
// N-way
// ---------------------------------------------------------------------------

func TestMergeN_BuildsChoices(t *testing.T) {
	var variants []*artifact.Artifact
	for i, content := range []string{"1", "2", "3"} {
		b := artifact.NewBuilder(artifact.Revision("v" + string(rune('1'+i))))
		variants = append(variants, b.Set("root", b.Text("file", "x", content), b.Leaf("same")))
	}

	res, err := newTestContext(t, Options{}).MergeN(variants...)
	require.NoError(t, err)

	require.Equal(t, 2, res.Target.NumChildren())
	var choice *artifact.Artifact
	for _, c := range res.Target.Children() {
		if c.IsChoice() {
			choice = c
		}
	}
	require.NotNil(t, choice)
	require.Len(t, choice.Variants, 3)
	for i, v := range choice.Variants {
		assert.Equal(t, artifact.Revision("v"+string(rune('1'+i))), v.Rev)
	}
	v3, ok := choice.Variant("v3")
	require.True(t, ok)
	assert.Equal(t, "3", string(v3.Content))
}

func TestMergeN_NeedsTwoVariants(t *testing.T) {
	b := artifact.NewBuilder(artifact.Left)
	_, err := newTestContext(t, Options{}).MergeN(b.Leaf("x"))
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Errors and modes
// ---------------------------------------------------------------------------

func TestMerge_NothingInCommon(t *testing.T) {
	l, _, r := builders()
	_, err := newTestContext(t, Options{}).Merge(l.Leaf("a"), nil, r.Leaf("b"))
	assert.ErrorIs(t, err, ErrNoMatching)
}

func TestMerge_InconsistentMatching(t *testing.T) {
	l, _, r := builders()
	left := l.Set("root", l.Leaf("a"))
	right := r.Set("root", r.Leaf("a"))
	stray := r.Set("root")

	c := newTestContext(t, Options{})
	c.Index().Commit(matching.New(left, stray, 1), matching.Blue)

	_, err := c.Merge(left, nil, right)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInconsistentMatching))
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Same(t, left, ie.Left)
	assert.Same(t, right, ie.Right)
}

func TestMerge_DiffOnly(t *testing.T) {
	left, base, right := orderedScenario()
	res, err := newTestContext(t, Options{DiffOnly: true}).Merge(left, base, right)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Target.NumChildren())
	assert.NotEmpty(t, res.Matchings)
}

func TestNewContext_RejectsLikelihood(t *testing.T) {
	_, err := NewContext(Options{Likelihood: 1.5})
	assert.Error(t, err)
}

func TestContext_Diff(t *testing.T) {
	left, _, right := orderedScenario()
	c := newTestContext(t, Options{})

	ms, err := c.Diff(left, right)
	require.NoError(t, err)

	root, ok := ms.Get(left, right)
	require.True(t, ok)
	assert.Equal(t, 4, root.Score)
	assert.True(t, c.Index().Linked(left.Child(2), right.Child(2)))
}
