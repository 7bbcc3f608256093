// Package parse turns source files into artifact trees that the matcher and
// the merge engine operate on.
package parse

import (
	"context"

	"github.com/dusk-indust/structmerge/internal/artifact"
)

// Parser builds an artifact tree of revision rev from source text.
type Parser interface {
	Parse(ctx context.Context, path string, source []byte, lang Language, rev artifact.Revision) (*artifact.Artifact, error)
	SupportedLanguages() []Language
	Close() error
}
