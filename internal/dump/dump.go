// Package dump renders artifact trees and matchings for humans and tools.
package dump

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

// Format selects a renderer.
type Format string

const (
	Plaintext Format = "plaintext"
	Dot       Format = "dot"
	TGF       Format = "tgf"
	Mermaid   Format = "mermaid"
	JSON      Format = "json"
	Source    Format = "source"
)

// Formats lists every supported format.
var Formats = []Format{Plaintext, Dot, TGF, Mermaid, JSON, Source}

// ErrUnknownFormat is returned by ParseFormat and Render.
var ErrUnknownFormat = errors.New("unknown dump format")

// ParseFormat validates a format name. The empty name selects Plaintext.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return Plaintext, nil
	}
	for _, f := range Formats {
		if string(f) == strings.ToLower(name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Options tune the renderers. The zero value renders plain trees.
type Options struct {
	// Color enables terminal colors in Plaintext output.
	Color bool
	// Matchings are drawn between the rendered trees by Dot and Mermaid and
	// mark matched nodes in Plaintext.
	Matchings []*matching.Matching
}

// Render writes roots in format f. Formats that show a single tree render
// the first root only.
func Render(w io.Writer, f Format, opts Options, roots ...*artifact.Artifact) error {
	if len(roots) == 0 {
		return errors.New("dump: no tree to render")
	}
	switch f {
	case Plaintext:
		for _, r := range roots {
			if err := WritePlaintext(w, r, opts); err != nil {
				return err
			}
		}
		return nil
	case Dot:
		return WriteDot(w, opts.Matchings, roots...)
	case TGF:
		return WriteTGF(w, roots[0])
	case Mermaid:
		return WriteMermaid(w, opts.Matchings, roots...)
	case JSON:
		return WriteJSON(w, roots[0])
	case Source:
		return WriteSource(w, roots[0])
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// String renders roots into a string.
func String(f Format, opts Options, roots ...*artifact.Artifact) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, f, opts, roots...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// describe is the one-line node description shared by the graph formats.
func describe(a *artifact.Artifact) string {
	switch a.Kind {
	case artifact.KindConflict:
		return "CONFLICT"
	case artifact.KindChoice:
		return "CHOICE " + a.Label
	case artifact.KindEmpty:
		return "EMPTY"
	}
	if a.Label == a.Type || a.Label == "" {
		return a.Type
	}
	return a.Label
}

// conflictSides returns the children a conflict or choice node displays,
// labelled by revision.
func conflictSides(a *artifact.Artifact) []artifact.Variant {
	switch {
	case a.IsConflict():
		var out []artifact.Variant
		if a.Conflict.Left != nil {
			out = append(out, artifact.Variant{Rev: a.Conflict.LeftRev, Node: a.Conflict.Left})
		}
		if a.Conflict.Right != nil {
			out = append(out, artifact.Variant{Rev: a.Conflict.RightRev, Node: a.Conflict.Right})
		}
		return out
	case a.IsChoice():
		return a.Variants
	}
	return nil
}
