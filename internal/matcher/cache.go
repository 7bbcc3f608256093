package matcher

import "github.com/dusk-indust/structmerge/internal/artifact"

// Cache memoizes per-node predicates for one Matcher. Entries are computed on
// first use and never invalidated, so the trees must not change while the
// Matcher is in use.
type Cache struct {
	unorderedChildren       map[artifact.ID]bool
	uniquelyLabeledChildren map[artifact.ID]bool
	fullyOrdered            map[artifact.ID]bool
	sizes                   map[artifact.ID]int
	fingerprints            map[artifact.ID]uint64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		unorderedChildren:       make(map[artifact.ID]bool),
		uniquelyLabeledChildren: make(map[artifact.ID]bool),
		fullyOrdered:            make(map[artifact.ID]bool),
		sizes:                   make(map[artifact.ID]int),
		fingerprints:            make(map[artifact.ID]uint64),
	}
}

// UnorderedChildren reports whether any child of a is unordered. Ordered
// tokens next to unordered children, such as the braces of a declaration
// list, do not make the children a sequence.
func (c *Cache) UnorderedChildren(a *artifact.Artifact) bool {
	if v, ok := c.unorderedChildren[a.ID]; ok {
		return v
	}
	v := false
	for _, child := range a.Children() {
		if !child.Ordered {
			v = true
			break
		}
	}
	c.unorderedChildren[a.ID] = v
	return v
}

// UniquelyLabeledChildren reports whether every child of a carries a unique
// label and no two children share one.
func (c *Cache) UniquelyLabeledChildren(a *artifact.Artifact) bool {
	if v, ok := c.uniquelyLabeledChildren[a.ID]; ok {
		return v
	}
	seen := make(map[string]bool, a.NumChildren())
	v := a.HasChildren()
	for _, child := range a.Children() {
		if child.Unique == "" || seen[child.Unique] {
			v = false
			break
		}
		seen[child.Unique] = true
	}
	c.uniquelyLabeledChildren[a.ID] = v
	return v
}

// FullyOrdered reports whether every descendant of a is ordered.
func (c *Cache) FullyOrdered(a *artifact.Artifact) bool {
	if v, ok := c.fullyOrdered[a.ID]; ok {
		return v
	}
	v := true
	for _, child := range a.Children() {
		if !child.Ordered || !c.FullyOrdered(child) {
			v = false
			break
		}
	}
	c.fullyOrdered[a.ID] = v
	return v
}

// Size returns the subtree size of a.
func (c *Cache) Size(a *artifact.Artifact) int {
	if v, ok := c.sizes[a.ID]; ok {
		return v
	}
	v := 0
	if !a.IsEmpty() {
		v = 1
		for _, child := range a.Children() {
			v += c.Size(child)
		}
	}
	c.sizes[a.ID] = v
	return v
}

// Fingerprint returns the subtree fingerprint of a.
func (c *Cache) Fingerprint(a *artifact.Artifact) uint64 {
	return artifact.FingerprintMemo(a, c.fingerprints)
}
