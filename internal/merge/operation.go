package merge

import (
	"fmt"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/stats"
)

// Operation is one step of a merge. Every operation is applied exactly once;
// the set of operations is closed.
type Operation interface {
	Seq() uint64
	Kind() stats.Kind
	String() string

	apply(c *Context) error
	subject() *artifact.Artifact
}

// AddOperation copies Artifact into Target.
type AddOperation struct {
	seq      uint64
	Artifact *artifact.Artifact
	Target   *artifact.Artifact
}

// DeleteOperation drops Artifact. If a copy of it was already added to
// Target, the copy is removed.
type DeleteOperation struct {
	seq      uint64
	Artifact *artifact.Artifact
	Target   *artifact.Artifact
}

// ConflictOperation inserts a conflict marker into Target. Left or Right is
// nil for insertion and deletion conflicts. If Replace is set, the marker
// takes Replace's position instead of being appended.
type ConflictOperation struct {
	seq     uint64
	Left    *artifact.Artifact
	Right   *artifact.Artifact
	Base    *artifact.Artifact
	Target  *artifact.Artifact
	Replace *artifact.Artifact
}

// MergeOperation merges a nested scenario into Target.
type MergeOperation struct {
	seq      uint64
	Scenario Scenario
	Target   *artifact.Artifact
}

func (c *Context) newAdd(a, target *artifact.Artifact) *AddOperation {
	return &AddOperation{seq: c.counter.Next(), Artifact: a, Target: target}
}

func (c *Context) newDelete(a, target *artifact.Artifact) *DeleteOperation {
	return &DeleteOperation{seq: c.counter.Next(), Artifact: a, Target: target}
}

func (c *Context) newConflict(left, right, base, target *artifact.Artifact) *ConflictOperation {
	return &ConflictOperation{seq: c.counter.Next(), Left: left, Right: right, Base: base, Target: target}
}

func (c *Context) newMerge(s Scenario, target *artifact.Artifact) *MergeOperation {
	return &MergeOperation{seq: c.counter.Next(), Scenario: s, Target: target}
}

// apply runs op and reports it to the log and the stats sink.
func (c *Context) apply(op Operation) error {
	c.ops++
	subject := op.subject()
	c.log.Debug("apply", "op", string(op.Kind()), "seq", op.Seq(), "artifact", subject.String(), "rev", subject.Rev.String())
	c.sink.Emit(stats.Event{
		Session:  c.ID,
		Kind:     op.Kind(),
		Seq:      op.Seq(),
		Artifact: subject.String(),
		Rev:      subject.Rev.String(),
	})
	return op.apply(c)
}

func (op *AddOperation) Seq() uint64 { return op.seq }
func (op *AddOperation) Kind() stats.Kind { return stats.KindAdd }

func (op *AddOperation) String() string {
	return fmt.Sprintf("add #%d %s", op.seq, op.Artifact)
}

func (op *AddOperation) subject() *artifact.Artifact { return op.Artifact }

func (op *AddOperation) apply(c *Context) error {
	c.setMerged(op.Artifact)
	if op.Target != nil {
		op.Target.AddChild(op.Artifact.DeepCopy(op.Target.Rev))
	}
	return nil
}

func (op *DeleteOperation) Seq() uint64 { return op.seq }
func (op *DeleteOperation) Kind() stats.Kind { return stats.KindDelete }

func (op *DeleteOperation) String() string {
	return fmt.Sprintf("delete #%d %s", op.seq, op.Artifact)
}

func (op *DeleteOperation) subject() *artifact.Artifact { return op.Artifact }

func (op *DeleteOperation) apply(c *Context) error {
	c.setMerged(op.Artifact)
	if op.Target == nil {
		return nil
	}
	for _, child := range op.Target.Children() {
		if child.Origin == op.Artifact.ID {
			op.Target.RemoveChild(child)
			break
		}
	}
	return nil
}

func (op *ConflictOperation) Seq() uint64 { return op.seq }
func (op *ConflictOperation) Kind() stats.Kind { return stats.KindConflict }

func (op *ConflictOperation) String() string {
	return fmt.Sprintf("conflict #%d %s | %s", op.seq, op.Left, op.Right)
}

func (op *ConflictOperation) subject() *artifact.Artifact {
	if op.Left != nil {
		return op.Left
	}
	return op.Right
}

func (op *ConflictOperation) apply(c *Context) error {
	c.setMerged(op.Left)
	c.setMerged(op.Right)

	rev := artifact.Target
	if op.Target != nil {
		rev = op.Target.Rev
	} else if op.Replace != nil {
		rev = op.Replace.Rev
	}

	var node *artifact.Artifact
	if c.nway {
		node = op.choice(rev)
	} else {
		node = artifact.NewConflict(rev, artifact.Conflict{
			Left:     copyOrNil(op.Left, rev),
			Right:    copyOrNil(op.Right, rev),
			Base:     op.Base,
			LeftRev:  revOrEmpty(op.Left),
			RightRev: revOrEmpty(op.Right),
		})
	}

	switch {
	case op.Replace != nil && op.Target != nil:
		op.Target.ReplaceChild(op.Replace, node)
	case op.Replace != nil:
		c.root = node
	default:
		op.Target.AddChild(node)
	}

	c.conflicts = append(c.conflicts, ConflictRecord{
		Seq:   op.seq,
		Left:  op.Left,
		Right: op.Right,
		Base:  op.Base,
		Node:  node,
	})
	return nil
}

// choice builds the n-way variant of a conflict marker.
func (op *ConflictOperation) choice(rev artifact.Revision) *artifact.Artifact {
	var node *artifact.Artifact
	if op.Left != nil && op.Left.IsChoice() {
		node = op.Left.Copy(rev)
	} else {
		node = artifact.NewChoice(rev)
		if op.Left != nil {
			node.AddVariant(op.Left.From, op.Left.DeepCopy(rev))
		}
	}
	if op.Right != nil {
		node.AddVariant(op.Right.From, op.Right.DeepCopy(rev))
	}
	return node
}

func copyOrNil(a *artifact.Artifact, rev artifact.Revision) *artifact.Artifact {
	if a == nil {
		return nil
	}
	return a.DeepCopy(rev)
}

func revOrEmpty(a *artifact.Artifact) artifact.Revision {
	if a == nil {
		return ""
	}
	return a.From
}

func (op *MergeOperation) Seq() uint64 { return op.seq }
func (op *MergeOperation) Kind() stats.Kind { return stats.KindMerge }

func (op *MergeOperation) String() string {
	return fmt.Sprintf("merge #%d %s", op.seq, op.Scenario)
}

func (op *MergeOperation) subject() *artifact.Artifact { return op.Scenario.Left }

func (op *MergeOperation) apply(c *Context) error {
	return c.merge(op)
}
