package merge

import (
	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// merge merges one scenario into op.Target, choosing the strategy from the
// shape of the children.
func (c *Context) merge(op *MergeOperation) error {
	s := op.Scenario
	left, base, right, target := s.Left, s.Base, s.Right, op.Target

	if !c.index.Has(left, right.Rev) && !c.index.Has(right, left.Rev) {
		if !base.IsEmpty() {
			if _, err := c.commitMatch(base, left, matching.Green); err != nil {
				return err
			}
			if _, err := c.commitMatch(base, right, matching.Green); err != nil {
				return err
			}
		}
		m, err := c.commitMatch(left, right, matching.Blue)
		if err != nil {
			return err
		}
		if c.opts.DiffOnly {
			return nil
		}
		if m.Score == 0 {
			c.log.Info("nothing in common, skipping", "left", left.String(), "right", right.String())
			return nil
		}
	}
	if c.opts.DiffOnly {
		return nil
	}

	if !left.IsChoice() && !c.index.Linked(left, right) {
		if base.IsEmpty() || !c.index.Linked(base, left) || !c.index.Linked(base, right) {
			return &InvariantError{
				Op:     "merge",
				Left:   left,
				Right:  right,
				Reason: "not matched with each other or with a common base",
			}
		}
		c.log.Warn("left and right are only matched through base",
			"left", left.String(), "right", right.String(), "base", base.String())
	}

	if left.IsChoice() {
		return c.mergeChoice(right, target)
	}

	switch {
	case !left.HasChildren() && !right.HasChildren():
		return c.mergeContent(left, base, right, target)
	case !left.HasChildren():
		return c.mergeOneSided(right, base, target, false)
	case !right.HasChildren():
		return c.mergeOneSided(left, base, target, true)
	}

	switch {
	case anyUnordered(left) || anyUnordered(right):
		return c.mergeUnordered(op)
	case left.List:
		return c.mergeOrdered(op)
	default:
		return c.mergeDirect(op)
	}
}

func anyUnordered(a *artifact.Artifact) bool {
	for _, child := range a.Children() {
		if !child.Ordered {
			return true
		}
	}
	return false
}

// pick tells which version of a leaf property the merge keeps.
type pick int

const (
	keepLeft pick = iota
	takeRight
	clash
)

// pick3 compares one property across the versions. A side that changed
// wins over a side that did not.
func pick3(left, base, right string, hasBase bool) pick {
	switch {
	case left == right:
		return keepLeft
	case !hasBase:
		return clash
	case base == left:
		return takeRight
	case base == right:
		return keepLeft
	}
	return clash
}

// mergeContent merges two leaves. The content and the leading source text
// are resolved separately; a property changed on both sides is a conflict.
func (c *Context) mergeContent(left, base, right, target *artifact.Artifact) error {
	hasBase := !base.IsEmpty()
	var baseContent, baseLeading string
	if hasBase {
		baseContent, baseLeading = string(base.Content), base.Leading
	}
	content := pick3(string(left.Content), baseContent, string(right.Content), hasBase)
	leading := pick3(left.Leading, baseLeading, right.Leading, hasBase)

	if content == clash || leading == clash {
		op := c.newConflict(left, right, base, target.Parent())
		op.Replace = target
		return c.apply(op)
	}
	if content == takeRight {
		target.Content = right.Content
		target.Digest = right.Digest
		target.From = right.From
	}
	if leading == takeRight {
		target.Leading = right.Leading
	}
	return nil
}

// mergeTrailing resolves the text after the last leaf of the roots. When
// both sides changed it, the two texts become a conflict at the end of the
// target. The root copy starts out with the left side's text.
func (c *Context) mergeTrailing(s Scenario) error {
	if c.root.IsConflict() || c.root.IsChoice() {
		return nil
	}
	hasBase := !s.Base.IsEmpty()
	var base string
	if hasBase {
		base = s.Base.Trailing
	}
	switch pick3(s.Left.Trailing, base, s.Right.Trailing, hasBase) {
	case keepLeft:
		c.root.Trailing = s.Left.Trailing
		return nil
	case takeRight:
		c.root.Trailing = s.Right.Trailing
		return nil
	}
	if c.nway {
		// Variants keep the trailing text of the first one.
		return nil
	}
	c.root.Trailing = ""
	trailing := func(a *artifact.Artifact) *artifact.Artifact {
		t := artifact.New(a.Rev, "trailing", "trailing")
		t.Content = []byte(a.Trailing)
		t.Ordered = a.Ordered
		return t
	}
	var bt *artifact.Artifact
	if hasBase {
		bt = trailing(s.Base)
	}
	return c.apply(c.newConflict(trailing(s.Left), trailing(s.Right), bt, c.root))
}

// mergeOneSided handles a node whose counterpart on the other side has no
// children left.
func (c *Context) mergeOneSided(side, base, target *artifact.Artifact, isLeft bool) error {
	switch {
	case !base.HasChildren():
		for _, child := range side.Children() {
			if err := c.apply(c.newAdd(child, target)); err != nil {
				return err
			}
		}
	case !c.changed(side, base):
		for _, child := range side.Children() {
			if err := c.apply(c.newDelete(child, target)); err != nil {
				return err
			}
		}
	default:
		for _, child := range side.Children() {
			l, r := child, (*artifact.Artifact)(nil)
			if !isLeft {
				l, r = r, l
			}
			bc := c.index.Partner(child, base.Rev)
			if err := c.apply(c.newConflict(l, r, bc, target)); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeChoice adds right as a new alternative unless an equal one exists.
func (c *Context) mergeChoice(right, target *artifact.Artifact) error {
	c.setMerged(right)
	for _, v := range target.Variants {
		if artifact.Identical(v.Node, right) {
			return nil
		}
	}
	target.AddVariant(right.From, right.DeepCopy(target.Rev))
	return nil
}

// mergeChildren merges a matched pair of children into a new child of
// target.
func (c *Context) mergeChildren(left, base, right, target *artifact.Artifact) error {
	if base == nil {
		base = artifact.NewEmpty(artifact.Base)
	}
	t := ThreeWay
	switch {
	case c.nway:
		t = NWay
	case base.IsEmpty():
		t = TwoWay
	}
	child := left.Copy(target.Rev)
	target.AddChild(child)
	c.setMerged(left)
	c.setMerged(right)
	return c.apply(c.newMerge(NewScenario(t, left, base, right), child))
}
