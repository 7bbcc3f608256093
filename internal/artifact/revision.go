package artifact

import "strings"

// Revision tags the input version an artifact tree belongs to.
type Revision string

// Well-known revisions of a three-way merge.
const (
	Left   Revision = "left"
	Base   Revision = "base"
	Right  Revision = "right"
	Target Revision = "merge"
)

func (r Revision) String() string { return string(r) }

// Derive returns a temporary revision derived from r, such as "left-tmp".
func (r Revision) Derive(suffix string) Revision {
	return Revision(string(r) + "-" + suffix)
}

// DerivedFrom reports whether r is parent or a revision derived from it.
func (r Revision) DerivedFrom(parent Revision) bool {
	return r == parent || strings.HasPrefix(string(r), string(parent)+"-")
}
