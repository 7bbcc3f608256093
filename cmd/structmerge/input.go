package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/dump"
	"github.com/dusk-indust/structmerge/internal/matching"
	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/parse"
	"github.com/dusk-indust/structmerge/internal/stats"
)

// resolveLanguage returns the language named by the --lang flag or, if it is
// empty, the language of the first path with a known extension.
func resolveLanguage(name string, paths ...string) (parse.Language, error) {
	if name != "" {
		return parse.ParseLanguage(name)
	}
	for _, p := range paths {
		if lang, ok := parse.LanguageForPath(p); ok {
			return lang, nil
		}
	}
	return "", fmt.Errorf("cannot infer the language of %v, use --lang", paths)
}

// readTree reads path and parses it as revision rev. An empty path yields a
// nil tree.
func readTree(ctx context.Context, p parse.Parser, path string, lang parse.Language, rev artifact.Revision) (*artifact.Artifact, error) {
	if path == "" {
		return nil, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(ctx, path, src, lang, rev)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tree, nil
}

// addOutputFlags registers the flags shared by commands that render trees.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("lang", "", "source language (go|typescript|python|rust), inferred from the file extension by default")
	cmd.Flags().String("format", "", "output format (plaintext|dot|tgf|mermaid|json|source)")
	cmd.Flags().StringP("output", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().Bool("semistructured", false, "merge function bodies as text")
	cmd.Flags().BoolP("verbose", "v", false, "print every merge operation to stderr")
	cmd.Flags().Bool("stats", false, "print operation counts to stderr")
}

// outputFormat returns the --format flag, falling back to the config.
func (e *env) outputFormat(cmd *cobra.Command) (dump.Format, error) {
	name, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	if name == "" {
		name = e.cfg.DumpFormat
	}
	return dump.ParseFormat(name)
}

// applyCommandFlags copies per-command overrides into the config.
func (e *env) applyCommandFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("semistructured") {
		e.cfg.SemiStructured, _ = cmd.Flags().GetBool("semistructured")
	}
}

// render writes roots to --output or stdout.
func (e *env) render(cmd *cobra.Command, f dump.Format, ms []*matching.Matching, roots ...*artifact.Artifact) error {
	out, _ := cmd.Flags().GetString("output")
	opts := dump.Options{Matchings: ms}
	if out == "" {
		opts.Color = e.color
		return dump.Render(cmd.OutOrStdout(), f, opts, roots...)
	}
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := dump.Render(file, f, opts, roots...); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// progress wires the --verbose and --stats flags to a merge event sink.
type progress struct {
	counter  *stats.Counter
	reporter *stats.Reporter
	wg       sync.WaitGroup
	summary  bool
}

func newProgress(cmd *cobra.Command) *progress {
	verbose, _ := cmd.Flags().GetBool("verbose")
	summary, _ := cmd.Flags().GetBool("stats")
	p := &progress{counter: &stats.Counter{}, summary: summary}
	if verbose {
		p.reporter = stats.NewReporter(256)
		events := p.reporter.Subscribe()
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for e := range events {
				fmt.Fprintln(os.Stderr, stats.FormatEvent(e))
			}
		}()
	}
	return p
}

// Sink returns the sink merges should emit to.
func (p *progress) Sink() stats.Sink {
	if p.reporter == nil {
		return p.counter
	}
	return stats.Multi(p.counter, p.reporter)
}

// Done drains the event stream and prints the summary if requested.
func (p *progress) Done() {
	if p.reporter != nil {
		p.reporter.Close()
		p.wg.Wait()
	}
	if p.summary {
		fmt.Fprintln(os.Stderr, p.counter.Summary())
	}
}

var (
	conflictColor = color.New(color.FgRed, color.Bold)
	cleanColor    = color.New(color.FgGreen)
)

// reportConflicts prints one line per conflict to stderr.
func reportConflicts(conflicts []merge.ConflictRecord) {
	if len(conflicts) == 0 {
		return
	}
	conflictColor.Fprintf(os.Stderr, "%d conflict(s)\n", len(conflicts))
	for _, c := range conflicts {
		fmt.Fprintf(os.Stderr, "  #%d %s\n", c.Seq, describeConflict(c))
	}
}

func describeConflict(c merge.ConflictRecord) string {
	side := func(a *artifact.Artifact) string {
		if a == nil {
			return "(none)"
		}
		if a.Line > 0 {
			return fmt.Sprintf("%s at line %d", a.Label, a.Line)
		}
		return a.Label
	}
	return fmt.Sprintf("left %s, right %s", side(c.Left), side(c.Right))
}
