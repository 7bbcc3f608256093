package merge

import "github.com/dusk-indust/structmerge/internal/artifact"

// mergeDirect merges ordered children that occupy fixed positions, such as
// the operands of an expression. Children are compared slot by slot.
func (c *Context) mergeDirect(op *MergeOperation) error {
	s := op.Scenario
	return c.mergeSlots(s.Left.Children(), s.Right.Children(), s.Base, op.Target)
}

func (c *Context) mergeSlots(lc, rc []*artifact.Artifact, base, target *artifact.Artifact) error {
	for i := range max(len(lc), len(rc)) {
		var l, r *artifact.Artifact
		if i < len(lc) {
			l = lc[i]
		}
		if i < len(rc) {
			r = rc[i]
		}

		var err error
		switch {
		case l != nil && r != nil && (c.index.Linked(l, r) || (l.IsChoice() && l.Matches(r))):
			err = c.mergeChildren(l, c.partnerIn(l, base), r, target)
		case l != nil && r != nil:
			err = c.mergeSlot(l, r, base, target)
		case l != nil:
			err = c.mergeMissing(l, nil, base, target)
		default:
			err = c.mergeMissing(nil, r, base, target)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// mergeSlot resolves two unmatched children in the same slot. The side
// that still equals base gives way.
func (c *Context) mergeSlot(l, r, base, target *artifact.Artifact) error {
	bl := c.partnerIn(l, base)
	br := c.partnerIn(r, base)
	switch {
	case bl != nil && !c.changed(l, bl):
		c.setMerged(l)
		return c.apply(c.newAdd(r, target))
	case br != nil && !c.changed(r, br):
		c.setMerged(r)
		return c.apply(c.newAdd(l, target))
	}
	bc := bl
	if bc == nil {
		bc = br
	}
	return c.apply(c.newConflict(l, r, bc, target))
}

// mergeMissing resolves a child that only one side has in this slot.
func (c *Context) mergeMissing(l, r, base, target *artifact.Artifact) error {
	present := l
	if present == nil {
		present = r
	}
	bc := c.partnerIn(present, base)
	switch {
	case bc == nil:
		return c.apply(c.newAdd(present, target))
	case !c.changed(present, bc):
		return c.apply(c.newDelete(present, target))
	default:
		return c.apply(c.newConflict(l, r, bc, target))
	}
}
