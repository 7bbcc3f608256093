package merge

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/structmerge/internal/artifact"
)

var (
	// ErrNoMatching is returned when the roots of a merge have nothing in
	// common.
	ErrNoMatching = errors.New("merge: inputs have nothing in common")

	// ErrInconsistentMatching signals nodes that should be matched but are
	// not. It indicates a bug or malformed input trees.
	ErrInconsistentMatching = errors.New("merge: inconsistent matching")
)

// InvariantError names the two artifacts a merge step could not reconcile.
type InvariantError struct {
	Op     string
	Left   *artifact.Artifact
	Right  *artifact.Artifact
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("merge: %s: %s and %s: %s", e.Op, e.Left, e.Right, e.Reason)
}

func (e *InvariantError) Unwrap() error { return ErrInconsistentMatching }
