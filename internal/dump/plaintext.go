package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/matching"
)

type palette struct {
	conflict *color.Color
	choice   *color.Color
	matched  *color.Color
	side     *color.Color
}

func newPalette(on bool) palette {
	p := palette{
		conflict: color.New(color.FgRed, color.Bold),
		choice:   color.New(color.FgYellow, color.Bold),
		matched:  color.New(color.FgGreen),
		side:     color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.conflict, p.choice, p.matched, p.side} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WritePlaintext writes an indented tree, one node per line. Conflicts and
// choices list their alternatives under a revision header. Nodes that take
// part in one of opts.Matchings are suffixed with their partner.
func WritePlaintext(w io.Writer, root *artifact.Artifact, opts Options) error {
	pw := &plainWriter{w: w, pal: newPalette(opts.Color), partners: partners(opts.Matchings)}
	pw.node(root, 0)
	return pw.err
}

type plainWriter struct {
	w        io.Writer
	pal      palette
	partners map[artifact.ID]*matching.Matching
	err      error
}

func (pw *plainWriter) printf(depth int, format string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, strings.Repeat("  ", depth)+format+"\n", args...)
}

func (pw *plainWriter) node(a *artifact.Artifact, depth int) {
	switch {
	case a.IsConflict():
		pw.printf(depth, "%s", pw.pal.conflict.Sprint("(conflict)"))
		if a.Conflict.Base != nil && !a.Conflict.Base.IsEmpty() {
			pw.printf(depth+1, "%s %s", pw.pal.side.Sprint("base:"), a.Conflict.Base)
		}
		pw.sides(a, depth)
		return
	case a.IsChoice():
		pw.printf(depth, "%s %s", pw.pal.choice.Sprint("(choice)"), a.Label)
		pw.sides(a, depth)
		return
	}

	line := a.String()
	if !a.HasChildren() && len(a.Content) > 0 && string(a.Content) != a.Label {
		line += " " + quote(a.Content)
	}
	if m, ok := pw.partners[a.ID]; ok {
		line = pw.pal.matched.Sprintf("%s = %s", line, m.Partner(a))
	}
	pw.printf(depth, "%s", line)
	for _, c := range a.Children() {
		pw.node(c, depth+1)
	}
}

func (pw *plainWriter) sides(a *artifact.Artifact, depth int) {
	for _, v := range conflictSides(a) {
		pw.printf(depth+1, "%s", pw.pal.side.Sprintf("<%s>", v.Rev))
		pw.node(v.Node, depth+2)
	}
}

func partners(ms []*matching.Matching) map[artifact.ID]*matching.Matching {
	out := make(map[artifact.ID]*matching.Matching)
	for _, m := range ms {
		if m.Score == 0 {
			continue
		}
		for _, a := range []*artifact.Artifact{m.Left, m.Right} {
			if _, ok := out[a.ID]; !ok {
				out[a.ID] = m
			}
		}
	}
	return out
}

func quote(b []byte) string {
	s := string(b)
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return fmt.Sprintf("%q", s)
}
