package merge

import (
	"fmt"

	"github.com/dusk-indust/structmerge/internal/artifact"
)

// Type is the kind of a merge scenario.
type Type int

const (
	TwoWay Type = iota
	ThreeWay
	NWay
)

func (t Type) String() string {
	switch t {
	case TwoWay:
		return "twoway"
	case ThreeWay:
		return "threeway"
	case NWay:
		return "nway"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Scenario is a triple of trees to merge. Two-way and n-way scenarios use an
// empty base.
type Scenario struct {
	Type  Type
	Left  *artifact.Artifact
	Base  *artifact.Artifact
	Right *artifact.Artifact
}

// NewScenario returns a scenario of type t. A nil base is replaced by the
// empty sentinel.
func NewScenario(t Type, left, base, right *artifact.Artifact) Scenario {
	if base == nil {
		base = artifact.NewEmpty(artifact.Base)
	}
	return Scenario{Type: t, Left: left, Base: base, Right: right}
}

func (s Scenario) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", s.Type, s.Left, s.Base, s.Right)
}
