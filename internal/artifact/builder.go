package artifact

// Builder assembles trees of a single revision. It is mostly used by tests
// and by front ends that do not come with their own tree representation.
type Builder struct {
	rev Revision
}

// NewBuilder returns a Builder producing nodes of revision rev.
func NewBuilder(rev Revision) *Builder {
	return &Builder{rev: rev}
}

// Rev returns the builder's revision.
func (b *Builder) Rev() Revision { return b.rev }

// Leaf returns a childless node whose content is its label.
func (b *Builder) Leaf(label string) *Artifact {
	a := New(b.rev, "leaf", label)
	a.Content = []byte(label)
	return a
}

// Text returns a childless node with a label and a separate content payload.
func (b *Builder) Text(typ, label, content string) *Artifact {
	a := New(b.rev, typ, label)
	a.Content = []byte(content)
	return a
}

// List returns a node whose children form an ordered sequence.
func (b *Builder) List(label string, children ...*Artifact) *Artifact {
	a := New(b.rev, "list", label)
	a.List = true
	for _, c := range children {
		c.Ordered = true
		a.AddChild(c)
	}
	return a
}

// Tuple returns a node with ordered, fixed-position children.
func (b *Builder) Tuple(label string, children ...*Artifact) *Artifact {
	a := New(b.rev, "tuple", label)
	for _, c := range children {
		c.Ordered = true
		a.AddChild(c)
	}
	return a
}

// Set returns a node whose children are unordered.
func (b *Builder) Set(label string, children ...*Artifact) *Artifact {
	a := New(b.rev, "set", label)
	for _, c := range children {
		c.Ordered = false
		a.AddChild(c)
	}
	return a
}

// Block returns a node whose unordered children sit between two ordered
// delimiter tokens, like the braces of a declaration list.
func (b *Builder) Block(label string, opening, closing *Artifact, children ...*Artifact) *Artifact {
	a := New(b.rev, "block", label)
	opening.Ordered = true
	a.AddChild(opening)
	for _, c := range children {
		c.Ordered = false
		a.AddChild(c)
	}
	closing.Ordered = true
	a.AddChild(closing)
	return a
}

// Keyed sets a's unique label and returns a.
func Keyed(unique string, a *Artifact) *Artifact {
	a.Unique = unique
	return a
}
