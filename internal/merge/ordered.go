package merge

import "github.com/dusk-indust/structmerge/internal/artifact"

// listMerge merges child sequences the way diff3 merges lines, with matched
// nodes in place of equal lines. The two sides are plain slices consumed
// from the front; which side is which follows from the node revisions, so
// the recursion may swap them freely.
type listMerge struct {
	c      *Context
	target *artifact.Artifact
	left   artifact.Revision
	base   artifact.Revision
	right  artifact.Revision
}

func (c *Context) mergeOrdered(op *MergeOperation) error {
	s := op.Scenario
	lm := &listMerge{
		c:      c,
		target: op.Target,
		left:   s.Left.Rev,
		base:   s.Base.Rev,
		right:  s.Right.Rev,
	}
	rest, err := lm.merge3(s.Base.Children(), s.Left.Children(), s.Right.Children())
	if err != nil {
		return err
	}
	return lm.addAll(rest)
}

// other returns the revision of the side opposite to rev.
func (lm *listMerge) other(rev artifact.Revision) artifact.Revision {
	if rev.DerivedFrom(lm.left) {
		return lm.right
	}
	return lm.left
}

// split looks up pivot's partner of revision rev in list and returns the
// elements before it, the elements after it, and the partner. The partner
// is nil if it is not in list.
func (lm *listMerge) split(pivot *artifact.Artifact, list []*artifact.Artifact, rev artifact.Revision) (up, down []*artifact.Artifact, match *artifact.Artifact) {
	partner := lm.c.index.Partner(pivot, rev)
	if partner == nil {
		return nil, list, nil
	}
	for i, a := range list {
		if a == partner {
			return list[:i], list[i+1:], a
		}
	}
	return nil, list, nil
}

func (lm *listMerge) addAll(list []*artifact.Artifact) error {
	for _, a := range list {
		if err := lm.c.apply(lm.c.newAdd(a, lm.target)); err != nil {
			return err
		}
	}
	return nil
}

func (lm *listMerge) mergePair(x, y, base *artifact.Artifact) error {
	l, r := orient(x, y, lm.left)
	if base != nil && base.Rev != lm.base {
		base = nil
	}
	return lm.c.mergeChildren(l, base, r, lm.target)
}

func (lm *listMerge) conflict(x, y, base *artifact.Artifact) error {
	l, r := orient(x, y, lm.left)
	return lm.c.apply(lm.c.newConflict(l, r, base, lm.target))
}

// merge2 merges two sequences without a base. Unmatched elements of a are
// added; a matched element pulls in everything of b before its partner.
// The unconsumed suffix of b is returned.
func (lm *listMerge) merge2(a, b []*artifact.Artifact) ([]*artifact.Artifact, error) {
	for len(a) > 0 {
		pivot := a[0]
		a = a[1:]
		up, down, match := lm.split(pivot, b, lm.other(pivot.Rev))
		if match == nil {
			if err := lm.c.apply(lm.c.newAdd(pivot, lm.target)); err != nil {
				return nil, err
			}
			continue
		}
		if err := lm.addAll(up); err != nil {
			return nil, err
		}
		if err := lm.mergePair(pivot, match, nil); err != nil {
			return nil, err
		}
		b = down
	}
	return b, nil
}

// merge3 walks the base sequence and aligns both sides on the partners of
// each base element. It returns the unconsumed suffix of b.
func (lm *listMerge) merge3(base, a, b []*artifact.Artifact) ([]*artifact.Artifact, error) {
	if len(base) == 0 {
		return lm.merge2(a, b)
	}
	pivot, baseRest := base[0], base[1:]
	aRev, bRev := lm.left, lm.right
	if len(a) > 0 {
		aRev = a[0].Rev
		bRev = lm.other(aRev)
	} else if len(b) > 0 {
		bRev = b[0].Rev
		aRev = lm.other(bRev)
	}
	a1, a2, ma := lm.split(pivot, a, aRev)
	b1, b2, mb := lm.split(pivot, b, bRev)

	switch {
	case ma == nil && mb == nil:
		if len(a) > 0 && len(b) > 0 && lm.inserted(a[0], b[0]) {
			// Replaced by something different on each side.
			if err := lm.conflict(a[0], b[0], pivot); err != nil {
				return nil, err
			}
			return lm.merge3(baseRest, a[1:], b[1:])
		}
		// Deleted on both sides.
		return lm.merge3(baseRest, a, b)

	case ma != nil && mb != nil:
		rest, err := lm.merge2(a1, b1)
		if err != nil {
			return nil, err
		}
		if err := lm.addAll(rest); err != nil {
			return nil, err
		}
		if lm.c.index.Linked(ma, mb) || !lm.c.changed(ma, pivot) || !lm.c.changed(mb, pivot) {
			err = lm.mergePair(ma, mb, pivot)
		} else {
			// Both sides rewrote the element beyond recognition.
			err = lm.conflict(ma, mb, pivot)
		}
		if err != nil {
			return nil, err
		}
		return lm.merge3(baseRest, a2, b2)

	case ma != nil:
		return lm.oneSided(pivot, ma, baseRest, a1, a2, b)

	default:
		return lm.oneSided(pivot, mb, baseRest, b1, b2, a)
	}
}

// inserted reports whether x and y are both new relative to base and do not
// match each other.
func (lm *listMerge) inserted(x, y *artifact.Artifact) bool {
	idx := lm.c.index
	return !idx.Has(x, lm.base) && !idx.Has(y, lm.base) && !idx.Linked(x, y)
}

// oneSided handles a base element that only one side still has. other is
// the complete sequence of the side that dropped it. The unconsumed suffix
// of other is returned.
func (lm *listMerge) oneSided(pivot, match *artifact.Artifact, baseRest, before, after, other []*artifact.Artifact) ([]*artifact.Artifact, error) {
	rest, err := lm.merge2(before, other)
	if err != nil {
		return nil, err
	}

	if !lm.c.changed(match, pivot) {
		// Unchanged on this side, deleted on the other.
		if err := lm.c.apply(lm.c.newDelete(match, lm.target)); err != nil {
			return nil, err
		}
		return lm.merge3(baseRest, after, rest)
	}

	if len(baseRest) == 0 && len(after) == 0 {
		switch len(rest) {
		case 0:
			err = lm.conflict(match, nil, pivot)
		case 1:
			err = lm.conflict(match, rest[0], pivot)
		default:
			err = lm.conflict(lm.bundle(match.Rev, match), lm.bundle(rest[0].Rev, rest...), pivot)
			lm.c.setMerged(match)
			for _, a := range rest {
				lm.c.setMerged(a)
			}
		}
		return nil, err
	}

	if err := lm.conflict(match, nil, pivot); err != nil {
		return nil, err
	}
	return lm.merge3(baseRest, after, rest)
}

// bundle wraps nodes in a temporary container so that several elements can
// form one side of a conflict.
func (lm *listMerge) bundle(rev artifact.Revision, nodes ...*artifact.Artifact) *artifact.Artifact {
	box := lm.target.Copy(rev.Derive("tmp"))
	box.From = rev
	for _, n := range nodes {
		box.AddChild(n.DeepCopy(box.Rev))
	}
	return box
}
