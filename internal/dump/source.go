package dump

import (
	"io"
	"strings"

	"github.com/dusk-indust/structmerge/internal/artifact"
)

// Conflict markers written by WriteSource.
const (
	MarkerLeft  = "<<<<<<<"
	MarkerSep   = "======="
	MarkerRight = ">>>>>>>"
)

// WriteSource reproduces the source text of a parsed or merged tree. Leaves
// contribute their leading text and content. Conflicts and choices are
// written between line-based conflict markers.
func WriteSource(w io.Writer, root *artifact.Artifact) error {
	sw := &sourceWriter{}
	sw.node(root)
	sw.sb.WriteString(root.Trailing)
	_, err := io.WriteString(w, sw.sb.String())
	return err
}

type sourceWriter struct {
	sb strings.Builder
	// trim drops the newlines that open the first text after a marker.
	trim bool
}

func (sw *sourceWriter) text(s string) {
	if sw.trim {
		s = strings.TrimLeft(s, "\r\n")
		if s == "" {
			return
		}
		sw.trim = false
	}
	sw.sb.WriteString(s)
}

func (sw *sourceWriter) marker(m string, rev artifact.Revision) {
	if sw.sb.Len() > 0 && !strings.HasSuffix(sw.sb.String(), "\n") {
		sw.sb.WriteByte('\n')
	}
	sw.sb.WriteString(m)
	if rev != "" {
		sw.sb.WriteString(" " + string(rev))
	}
	sw.sb.WriteByte('\n')
	sw.trim = true
}

func (sw *sourceWriter) node(a *artifact.Artifact) {
	if a == nil || a.IsEmpty() {
		return
	}
	if sides := conflictSides(a); a.IsConflict() || a.IsChoice() {
		sw.alternatives(a, sides)
		return
	}
	if !a.HasChildren() {
		sw.text(a.Leading)
		sw.text(string(a.Content))
		return
	}
	for _, c := range a.Children() {
		sw.node(c)
	}
}

func (sw *sourceWriter) alternatives(a *artifact.Artifact, sides []artifact.Variant) {
	if a.IsConflict() {
		sw.marker(MarkerLeft, a.Conflict.LeftRev)
		if a.Conflict.Left != nil {
			sw.node(a.Conflict.Left)
		}
		sw.marker(MarkerSep, "")
		if a.Conflict.Right != nil {
			sw.node(a.Conflict.Right)
		}
		sw.marker(MarkerRight, a.Conflict.RightRev)
		sw.trim = false
		return
	}
	for i, v := range sides {
		if i == 0 {
			sw.marker(MarkerLeft, v.Rev)
		} else {
			sw.marker(MarkerSep, v.Rev)
		}
		sw.node(v.Node)
	}
	sw.marker(MarkerRight, "")
	sw.trim = false
}
