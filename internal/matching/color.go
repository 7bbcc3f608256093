package matching

import "fmt"

// Color tags matchings for dumps. Base matchings are green, left/right
// matchings blue.
type Color int

const (
	Default Color = iota
	Green
	Blue
	Yellow
	Red
)

func (c Color) String() string {
	switch c {
	case Default:
		return "default"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

// Graphviz returns the dot color name.
func (c Color) Graphviz() string {
	if c == Default {
		return "black"
	}
	return c.String()
}
