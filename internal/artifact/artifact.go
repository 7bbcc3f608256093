package artifact

import (
	"fmt"
	"sync/atomic"
)

// ID identifies an artifact. IDs are unique within the process, so nodes of
// different trees can be used as keys of the same side table.
type ID uint64

var lastID atomic.Uint64

func nextID() ID { return ID(lastID.Add(1)) }

// Kind distinguishes plain tree nodes from the markers a merge inserts.
type Kind int

const (
	KindNode Kind = iota
	KindEmpty
	KindConflict
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEmpty:
		return "empty"
	case KindConflict:
		return "conflict"
	case KindChoice:
		return "choice"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Conflict holds both sides of an unresolved divergence. Either side may be
// nil for insertion and deletion conflicts.
type Conflict struct {
	Left     *Artifact
	Right    *Artifact
	Base     *Artifact
	LeftRev  Revision
	RightRev Revision
}

// Variant is one alternative of a choice node.
type Variant struct {
	Rev  Revision
	Node *Artifact
}

// Artifact is a node of a revision's tree. A parent exclusively owns its
// children; use the child accessors rather than sharing nodes between trees.
type Artifact struct {
	ID     ID
	Rev    Revision // tree the node belongs to
	From   Revision // revision the node's content was taken from
	Origin ID       // node this one was copied from, zero for parsed nodes
	Kind   Kind

	// Type is the syntactic kind, e.g. "function_declaration" or "file".
	Type string
	// Label decides whether two nodes can be matched at all.
	Label string
	// Unique is an optional label that is unique among siblings.
	Unique string

	Content []byte
	Digest  string // precomputed content digest, optional
	Leading string // source text between the previous leaf and this one
	Line    int
	// Trailing holds source text after the last leaf, set on parsed roots.
	Trailing string

	// Ordered reports whether the node's position among its siblings matters.
	Ordered bool
	// List marks nodes whose children form a sequence (statement lists).
	List bool

	Conflict *Conflict
	Variants []Variant

	parent   *Artifact
	children []*Artifact
}

// New returns a plain node of revision rev.
func New(rev Revision, typ, label string) *Artifact {
	return &Artifact{ID: nextID(), Rev: rev, From: rev, Kind: KindNode, Type: typ, Label: label}
}

// NewEmpty returns the sentinel used as the base of two-way merges.
func NewEmpty(rev Revision) *Artifact {
	return &Artifact{ID: nextID(), Rev: rev, From: rev, Kind: KindEmpty, Type: "empty"}
}

// NewConflict returns a conflict marker of revision rev. The sides are stored
// as given; callers pass copies when the originals must stay untouched.
func NewConflict(rev Revision, c Conflict) *Artifact {
	return &Artifact{
		ID:       nextID(),
		Rev:      rev,
		From:     rev,
		Kind:     KindConflict,
		Type:     "conflict",
		Label:    "conflict",
		Ordered:  conflictOrdered(c),
		Conflict: &c,
	}
}

func conflictOrdered(c Conflict) bool {
	for _, a := range []*Artifact{c.Left, c.Right, c.Base} {
		if a != nil && a.Ordered {
			return true
		}
	}
	return false
}

// NewChoice returns a choice node holding one variant per revision.
func NewChoice(rev Revision, variants ...Variant) *Artifact {
	a := &Artifact{ID: nextID(), Rev: rev, From: rev, Kind: KindChoice, Type: "choice"}
	for _, v := range variants {
		a.AddVariant(v.Rev, v.Node)
	}
	return a
}

// AddVariant appends v as the alternative of revision rev. The first variant
// defines the choice's label and orderedness.
func (a *Artifact) AddVariant(rev Revision, v *Artifact) {
	if v == nil {
		return
	}
	if len(a.Variants) == 0 {
		a.Label = v.Label
		a.Unique = v.Unique
		a.Ordered = v.Ordered
	}
	a.Variants = append(a.Variants, Variant{Rev: rev, Node: v})
}

// Variant returns the alternative of revision rev.
func (a *Artifact) Variant(rev Revision) (*Artifact, bool) {
	for _, v := range a.Variants {
		if v.Rev == rev {
			return v.Node, true
		}
	}
	return nil, false
}

func (a *Artifact) IsEmpty() bool { return a == nil || a.Kind == KindEmpty }
func (a *Artifact) IsConflict() bool { return a != nil && a.Kind == KindConflict }
func (a *Artifact) IsChoice() bool { return a != nil && a.Kind == KindChoice }

// Parent returns the node's parent, or nil for a root.
func (a *Artifact) Parent() *Artifact { return a.parent }

// Children returns the node's children. The slice must not be modified.
func (a *Artifact) Children() []*Artifact { return a.children }

func (a *Artifact) NumChildren() int { return len(a.children) }
func (a *Artifact) HasChildren() bool { return len(a.children) > 0 }
func (a *Artifact) Child(i int) *Artifact { return a.children[i] }

// AddChild appends c and makes a its parent.
func (a *Artifact) AddChild(c *Artifact) {
	if c.parent != nil && c.parent != a {
		c.parent.RemoveChild(c)
	}
	c.parent = a
	a.children = append(a.children, c)
}

// ReplaceChild puts repl in the position of old. It reports whether old was a
// child of a.
func (a *Artifact) ReplaceChild(old, repl *Artifact) bool {
	for i, c := range a.children {
		if c == old {
			old.parent = nil
			repl.parent = a
			a.children[i] = repl
			return true
		}
	}
	return false
}

// RemoveChild detaches c. It reports whether c was a child of a.
func (a *Artifact) RemoveChild(c *Artifact) bool {
	for i, x := range a.children {
		if x == c {
			a.children = append(a.children[:i], a.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// ClearChildren detaches every child.
func (a *Artifact) ClearChildren() {
	for _, c := range a.children {
		c.parent = nil
	}
	a.children = nil
}

// Index returns the position of a among its siblings, or -1 for a root.
func (a *Artifact) Index() int {
	if a.parent == nil {
		return -1
	}
	for i, c := range a.parent.children {
		if c == a {
			return i
		}
	}
	return -1
}

// Matches reports whether a and o may correspond to each other. A choice
// matches whatever one of its variants matches. Empty nodes and conflict
// markers never match.
func (a *Artifact) Matches(o *Artifact) bool {
	if a == nil || o == nil {
		return false
	}
	if a.Kind == KindChoice {
		for _, v := range a.Variants {
			if v.Node.Matches(o) {
				return true
			}
		}
		return false
	}
	if o.Kind == KindChoice {
		return o.Matches(a)
	}
	if a.Kind != KindNode || o.Kind != KindNode {
		return false
	}
	return a.Type == o.Type && a.Label == o.Label
}

// Size returns the number of nodes in the subtree rooted at a.
func (a *Artifact) Size() int {
	if a == nil || a.Kind == KindEmpty {
		return 0
	}
	n := 1
	for _, c := range a.children {
		n += c.Size()
	}
	return n
}

// Walk visits the subtree in pre-order. Returning false from fn skips the
// node's children.
func (a *Artifact) Walk(fn func(*Artifact) bool) {
	if !fn(a) {
		return
	}
	for _, c := range a.children {
		c.Walk(fn)
	}
}

// Copy returns a childless copy of a that belongs to revision rev.
func (a *Artifact) Copy(rev Revision) *Artifact {
	c := &Artifact{
		ID:       nextID(),
		Rev:      rev,
		From:     a.From,
		Origin:   a.ID,
		Kind:     a.Kind,
		Type:     a.Type,
		Label:    a.Label,
		Unique:   a.Unique,
		Content:  a.Content,
		Digest:   a.Digest,
		Leading:  a.Leading,
		Trailing: a.Trailing,
		Line:     a.Line,
		Ordered:  a.Ordered,
		List:     a.List,
		Conflict: a.Conflict,
	}
	if len(a.Variants) > 0 {
		c.Variants = append([]Variant(nil), a.Variants...)
	}
	return c
}

// DeepCopy copies the whole subtree into revision rev.
func (a *Artifact) DeepCopy(rev Revision) *Artifact {
	c := a.Copy(rev)
	for _, child := range a.children {
		c.AddChild(child.DeepCopy(rev))
	}
	return c
}

func (a *Artifact) String() string {
	if a == nil {
		return "<nil>"
	}
	label := a.Label
	if len(label) > 40 {
		label = label[:37] + "..."
	}
	if label == "" {
		return fmt.Sprintf("%s:%d(%s)", a.Rev, a.ID, a.Type)
	}
	return fmt.Sprintf("%s:%d(%s)", a.Rev, a.ID, label)
}
