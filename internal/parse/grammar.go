package parse

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// namer extracts the sibling-unique name of a declaration, or "" if the node
// has none.
type namer func(n *tree_sitter.Node, source []byte) string

// grammar tells the converter how the node kinds of one language map onto
// artifact properties.
type grammar struct {
	// unordered kinds allow their children to be reordered freely.
	unordered map[string]bool
	// lists are kinds whose children form a sequence merged line-wise.
	lists map[string]bool
	// atoms are kept as single leaves even if the grammar splits them.
	atoms map[string]bool
	// trivia kinds become part of the following leaf's leading text.
	trivia map[string]bool
	// named declarations carry a unique label among their siblings.
	named map[string]namer
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

// fieldText returns the text of n's child in field, or "".
func fieldText(field string) namer {
	return func(n *tree_sitter.Node, source []byte) string {
		c := n.ChildByFieldName(field)
		if c == nil {
			return ""
		}
		return c.Utf8Text(source)
	}
}

// firstNamed applies inner to the first named child of kind.
func firstNamed(kind string, inner namer) namer {
	return func(n *tree_sitter.Node, source []byte) string {
		for i := uint(0); i < n.NamedChildCount(); i++ {
			c := n.NamedChild(i)
			if c != nil && c.Kind() == kind {
				return inner(c, source)
			}
		}
		return ""
	}
}

// constName is for declarations that occur at most once per container.
func constName(name string) namer {
	return func(*tree_sitter.Node, []byte) string { return name }
}

// compact folds runs of whitespace so formatting changes do not alter names.
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isBlank reports whether a token holds only whitespace, such as the
// newline statement terminators of Go.
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
