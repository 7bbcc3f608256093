package merge

import "github.com/dusk-indust/structmerge/internal/artifact"

// mergeUnordered merges children whose order does not matter. Each child is
// merged with its partner on the other side if the partner is a confident
// match, and otherwise resolved against base. Ordered tokens framing the
// children, such as braces, are merged slot by slot and stay in place.
func (c *Context) mergeUnordered(op *MergeOperation) error {
	s := op.Scenario
	lhead, lbody, ltail := frame(s.Left.Children())
	rhead, rbody, rtail := frame(s.Right.Children())

	if err := c.mergeSlots(lhead, rhead, s.Base, op.Target); err != nil {
		return err
	}
	for _, pivot := range lbody {
		if err := c.mergeOn(pivot, s.Left, s.Right, s.Base, op.Target); err != nil {
			return err
		}
	}
	for _, pivot := range rbody {
		if err := c.mergeOn(pivot, s.Left, s.Right, s.Base, op.Target); err != nil {
			return err
		}
	}
	return c.mergeSlots(ltail, rtail, s.Base, op.Target)
}

// frame splits children into the ordered tokens before the unordered ones,
// the body, and a closing ordered token.
func frame(children []*artifact.Artifact) (head, body, tail []*artifact.Artifact) {
	if n := len(children); n > 0 && children[n-1].Ordered {
		children, tail = children[:n-1], children[n-1:]
	}
	i := 0
	for i < len(children) && children[i].Ordered {
		i++
	}
	return children[:i], children[i:], tail
}

// partnerIn returns a's partner among the children of parent.
func (c *Context) partnerIn(a, parent *artifact.Artifact) *artifact.Artifact {
	if parent.IsEmpty() {
		return nil
	}
	p := c.index.Partner(a, parent.Rev)
	if p == nil || p.Parent() != parent {
		return nil
	}
	return p
}

func (c *Context) mergeOn(pivot, left, right, base, target *artifact.Artifact) error {
	if c.merged(pivot) {
		return nil
	}
	self, other := left, right
	if pivot.Parent() == right {
		self, other = right, left
	}
	likelihood := c.opts.Likelihood

	if partner := c.partnerIn(pivot, other); partner != nil && !c.merged(partner) {
		m := c.index.Get(pivot, other.Rev)
		if pivot.Matches(partner) && m.Percentage() > likelihood && c.index.Linked(partner, pivot) {
			l, r := pivot, partner
			if self == right {
				l, r = r, l
			}
			return c.mergeChildren(l, c.partnerIn(l, base), r, target)
		}
	}

	if mb := c.index.Get(pivot, base.Rev); !base.IsEmpty() && mb != nil && mb.Percentage() > likelihood {
		bc := mb.Partner(pivot)
		counterpart := c.partnerIn(bc, other)

		if !c.changed(pivot, bc) {
			// Deleted or rewritten on the other side.
			return c.apply(c.newDelete(pivot, target))
		}
		if counterpart == nil || (c.merged(counterpart) && c.changed(counterpart, bc)) {
			return c.conflictOn(self, left, pivot, nil, bc, target)
		}
		if !c.changed(counterpart, bc) {
			// Changed here, untouched on the other side.
			if !c.merged(counterpart) {
				if err := c.apply(c.newDelete(counterpart, target)); err != nil {
					return err
				}
			}
			return c.apply(c.newAdd(pivot, target))
		}
		return c.conflictOn(self, left, pivot, counterpart, bc, target)
	}

	return c.apply(c.newAdd(pivot, target))
}

// conflictOn emits a conflict between mine (a child of self) and theirs,
// oriented so that the left side comes first.
func (c *Context) conflictOn(self, left, mine, theirs, base, target *artifact.Artifact) error {
	l, r := mine, theirs
	if self != left {
		l, r = r, l
	}
	return c.apply(c.newConflict(l, r, base, target))
}
