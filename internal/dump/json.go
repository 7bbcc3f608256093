package dump

import (
	"encoding/json"
	"io"

	"github.com/dusk-indust/structmerge/internal/artifact"
)

// NodeExport is the JSON form of an artifact subtree.
type NodeExport struct {
	ID       uint64          `json:"id"`
	Rev      string          `json:"rev"`
	Kind     string          `json:"kind"`
	Type     string          `json:"type"`
	Label    string          `json:"label,omitempty"`
	Unique   string          `json:"unique,omitempty"`
	Content  string          `json:"content,omitempty"`
	Line     int             `json:"line,omitempty"`
	Ordered  bool            `json:"ordered"`
	List     bool            `json:"list,omitempty"`
	Children []NodeExport    `json:"children,omitempty"`
	Conflict *ConflictExport `json:"conflict,omitempty"`
	Variants []VariantExport `json:"variants,omitempty"`
}

// ConflictExport describes both sides of a conflict node.
type ConflictExport struct {
	LeftRev  string      `json:"leftRev,omitempty"`
	RightRev string      `json:"rightRev,omitempty"`
	Left     *NodeExport `json:"left,omitempty"`
	Right    *NodeExport `json:"right,omitempty"`
}

// VariantExport is one alternative of a choice node.
type VariantExport struct {
	Rev  string     `json:"rev"`
	Node NodeExport `json:"node"`
}

// Export converts a subtree into its JSON form.
func Export(a *artifact.Artifact) NodeExport {
	n := NodeExport{
		ID:      uint64(a.ID),
		Rev:     string(a.Rev),
		Kind:    a.Kind.String(),
		Type:    a.Type,
		Label:   a.Label,
		Unique:  a.Unique,
		Line:    a.Line,
		Ordered: a.Ordered,
		List:    a.List,
	}
	if !a.HasChildren() {
		n.Content = string(a.Content)
	}
	for _, c := range a.Children() {
		n.Children = append(n.Children, Export(c))
	}
	if a.IsConflict() {
		ce := &ConflictExport{LeftRev: string(a.Conflict.LeftRev), RightRev: string(a.Conflict.RightRev)}
		if a.Conflict.Left != nil {
			l := Export(a.Conflict.Left)
			ce.Left = &l
		}
		if a.Conflict.Right != nil {
			r := Export(a.Conflict.Right)
			ce.Right = &r
		}
		n.Conflict = ce
	}
	for _, v := range a.Variants {
		n.Variants = append(n.Variants, VariantExport{Rev: string(v.Rev), Node: Export(v.Node)})
	}
	return n
}

// WriteJSON writes the indented JSON form of root.
func WriteJSON(w io.Writer, root *artifact.Artifact) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Export(root))
}
