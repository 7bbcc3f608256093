package fileset

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/dump"
	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/parse"
)

// Status describes how a file of the merged tree was produced.
type Status string

const (
	StatusClean      Status = "clean"      // taken from one side or merged on content
	StatusStructured Status = "structured" // merged structurally without conflicts
	StatusConflict   Status = "conflict"
)

// FileResult is the outcome for one file of the merged tree.
type FileResult struct {
	Path      string `json:"path"`
	Status    Status `json:"status"`
	Conflicts int    `json:"conflicts,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Report summarizes a directory merge.
type Report struct {
	Session   string       `json:"session"`
	Files     []FileResult `json:"files"`
	Conflicts int          `json:"conflicts"`
}

// HasConflicts reports whether any file still contains conflicts.
func (r *Report) HasConflicts() bool { return r.Conflicts > 0 }

// Options configure a Merger.
type Options struct {
	// Exclude holds doublestar patterns of paths to ignore.
	Exclude []string
	// Workers bounds the number of files merged in parallel.
	Workers int
	// Parser merges files with a supported language structurally. Nil
	// limits the merge to whole-file content.
	Parser parse.Parser
	// Languages restricts structured merges, empty means all supported.
	Languages []parse.Language
	// Merge is the template for every merge session.
	Merge  merge.Options
	Logger *slog.Logger
}

// Merger merges directory trees.
type Merger struct {
	opts Options
	log  *slog.Logger
}

// New returns a Merger. All sessions it starts share one operation counter.
func New(opts Options) *Merger {
	if opts.Merge.Counter == nil {
		opts.Merge.Counter = &merge.Counter{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	opts.Merge.Logger = log
	return &Merger{opts: opts, log: log}
}

// Result is a merged directory tree and its report.
type Result struct {
	Tree   *artifact.Artifact
	Report *Report
}

// fileJob is a file that changed on both sides.
type fileJob struct {
	node        *artifact.Artifact // conflict node in the merged tree
	left, right *artifact.Artifact
	base        *artifact.Artifact
	path        string
	reason      string // set for files of a conflicting directory
}

type fileOutcome struct {
	content   []byte
	conflicts int
	status    Status
	reason    string
}

// Merge merges the directories left, base and right. An empty or missing
// base runs a two-way merge.
func (m *Merger) Merge(ctx context.Context, leftDir, baseDir, rightDir string) (*Result, error) {
	left, err := m.load(leftDir, artifact.Left, true)
	if err != nil {
		return nil, err
	}
	var base *artifact.Artifact
	if baseDir != "" {
		if base, err = m.load(baseDir, artifact.Base, false); err != nil {
			return nil, err
		}
	}
	right, err := m.load(rightDir, artifact.Right, true)
	if err != nil {
		return nil, err
	}

	mc, err := merge.NewContext(m.opts.Merge)
	if err != nil {
		return nil, err
	}
	res, err := mc.Merge(left, base, right)
	if err != nil {
		return nil, fmt.Errorf("merge directories: %w", err)
	}

	jobs := collectJobs(res.Target)
	outcomes := make([]fileOutcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i, job := range jobs {
		g.Go(func() error {
			out, err := m.mergeFile(gctx, job)
			if err != nil {
				return fmt.Errorf("%s: %w", job.path, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Session: res.Session}
	resolved := make(map[string]fileOutcome, len(jobs))
	for i, job := range jobs {
		out := outcomes[i]
		repl := FileNode(artifact.Target, job.path, out.content)
		job.node.Parent().ReplaceChild(job.node, repl)
		resolved[job.path] = out
	}
	for _, f := range Files(res.Target) {
		fr := FileResult{Path: f.Label, Status: StatusClean}
		if out, ok := resolved[f.Label]; ok {
			fr.Status, fr.Conflicts, fr.Reason = out.status, out.conflicts, out.reason
		}
		report.Conflicts += fr.Conflicts
		report.Files = append(report.Files, fr)
	}
	m.log.Info("directory merge done", "files", len(report.Files), "conflicts", report.Conflicts)
	return &Result{Tree: res.Target, Report: report}, nil
}

func (m *Merger) load(dir string, rev artifact.Revision, required bool) (*artifact.Artifact, error) {
	t, err := Load(dir, rev, m.opts.Exclude)
	if err != nil {
		return nil, err
	}
	if t == nil && required {
		return nil, fmt.Errorf("%s: directory does not exist", dir)
	}
	return t, nil
}

// collectJobs finds the file-level conflicts of a merged directory tree.
// A conflict whose sides are directories is flattened into one job per file
// of the surviving side.
func collectJobs(root *artifact.Artifact) []fileJob {
	var jobs []fileJob
	var conflicts []*artifact.Artifact
	root.Walk(func(a *artifact.Artifact) bool {
		if a.IsConflict() {
			conflicts = append(conflicts, a)
			return false
		}
		return true
	})

	for _, c := range conflicts {
		l, r, b := c.Conflict.Left, c.Conflict.Right, c.Conflict.Base
		if isFile(l) || isFile(r) {
			path := l
			if path == nil {
				path = r
			}
			jobs = append(jobs, fileJob{node: c, left: l, right: r, base: fileOrNil(b), path: path.Label})
			continue
		}
		// Directory conflict: keep the surviving side, every file in it is
		// reported as conflicting.
		side := l
		if side == nil {
			side = r
		}
		dir := side.DeepCopy(artifact.Target)
		c.Parent().ReplaceChild(c, dir)
		for _, f := range Files(dir) {
			job := fileJob{node: f, path: f.Label}
			if l != nil && r != nil {
				job.reason = "directory conflict"
			}
			if side == l {
				job.left = f
			} else {
				job.right = f
			}
			jobs = append(jobs, job)
		}
	}
	return jobs
}

func isFile(a *artifact.Artifact) bool { return a != nil && a.Type == TypeFile }

func fileOrNil(a *artifact.Artifact) *artifact.Artifact {
	if isFile(a) {
		return a
	}
	return nil
}

// mergeFile resolves one file that changed on both sides.
func (m *Merger) mergeFile(ctx context.Context, job fileJob) (fileOutcome, error) {
	if err := ctx.Err(); err != nil {
		return fileOutcome{}, err
	}
	switch {
	case job.left == nil:
		return fileOutcome{content: job.right.Content, conflicts: 1, status: StatusConflict, reason: cmp.Or(job.reason, "deleted in left")}, nil
	case job.right == nil:
		return fileOutcome{content: job.left.Content, conflicts: 1, status: StatusConflict, reason: cmp.Or(job.reason, "deleted in right")}, nil
	}

	lang, ok := m.structured(job.path)
	if !ok {
		return textConflict(job, "no structured merge for this file"), nil
	}

	out, err := m.mergeStructured(ctx, job, lang)
	if errors.Is(err, parse.ErrSyntax) || errors.Is(err, merge.ErrNoMatching) {
		m.log.Warn("structured merge failed, falling back to text", "path", job.path, "err", err)
		return textConflict(job, err.Error()), nil
	}
	return out, err
}

func (m *Merger) structured(path string) (parse.Language, bool) {
	if m.opts.Parser == nil {
		return "", false
	}
	lang, ok := parse.LanguageForPath(path)
	if !ok {
		return "", false
	}
	if len(m.opts.Languages) == 0 {
		return lang, true
	}
	for _, l := range m.opts.Languages {
		if l == lang {
			return lang, true
		}
	}
	return "", false
}

func (m *Merger) mergeStructured(ctx context.Context, job fileJob, lang parse.Language) (fileOutcome, error) {
	left, err := m.opts.Parser.Parse(ctx, job.path, job.left.Content, lang, artifact.Left)
	if err != nil {
		return fileOutcome{}, err
	}
	right, err := m.opts.Parser.Parse(ctx, job.path, job.right.Content, lang, artifact.Right)
	if err != nil {
		return fileOutcome{}, err
	}
	var base *artifact.Artifact
	if job.base != nil {
		if base, err = m.opts.Parser.Parse(ctx, job.path, job.base.Content, lang, artifact.Base); err != nil {
			return fileOutcome{}, err
		}
	}

	mc, err := merge.NewContext(m.opts.Merge)
	if err != nil {
		return fileOutcome{}, err
	}
	res, err := mc.Merge(left, base, right)
	if err != nil {
		return fileOutcome{}, err
	}

	var buf bytes.Buffer
	if err := dump.WriteSource(&buf, res.Target); err != nil {
		return fileOutcome{}, err
	}
	out := fileOutcome{content: buf.Bytes(), conflicts: len(res.Conflicts), status: StatusStructured}
	if out.conflicts > 0 {
		out.status = StatusConflict
	}
	return out, nil
}

// textConflict wraps both versions of a file in conflict markers.
func textConflict(job fileJob, reason string) fileOutcome {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s\n", dump.MarkerLeft, artifact.Left)
	writeLines(&buf, job.left.Content)
	buf.WriteString(dump.MarkerSep + "\n")
	writeLines(&buf, job.right.Content)
	fmt.Fprintf(&buf, "%s %s\n", dump.MarkerRight, artifact.Right)
	return fileOutcome{content: buf.Bytes(), conflicts: 1, status: StatusConflict, reason: reason}
}

// writeLines writes content terminated by a newline.
func writeLines(buf *bytes.Buffer, content []byte) {
	buf.Write(content)
	if len(content) > 0 && !bytes.HasSuffix(content, []byte("\n")) {
		buf.WriteByte('\n')
	}
}
