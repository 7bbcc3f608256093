package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/structmerge/internal/fileset"
	"github.com/dusk-indust/structmerge/internal/parse"
)

var dirsCmd = &cobra.Command{
	Use:   "dirs --left DIR [--base DIR] --right DIR --out DIR",
	Short: "Merge three versions of a directory tree",
	Long:  "Merge directory trees file by file. Files changed on both sides are merged structurally when their language is supported and with whole-file conflict markers otherwise. Exits with status 1 if any file holds conflicts.",
	Args:  cobra.NoArgs,
	RunE:  runDirs,
}

func init() {
	dirsCmd.Flags().String("left", "", "left directory (required)")
	dirsCmd.Flags().String("base", "", "common ancestor directory")
	dirsCmd.Flags().String("right", "", "right directory (required)")
	dirsCmd.Flags().String("out", "", "directory the merged tree is written to (required)")
	dirsCmd.Flags().StringSlice("exclude", nil, "additional glob patterns of paths to skip")
	dirsCmd.Flags().Int("parallel", 0, "number of files merged in parallel (default from config)")
	dirsCmd.Flags().Bool("semistructured", false, "merge function bodies as text")
	dirsCmd.Flags().Bool("json", false, "print the report as JSON")
	dirsCmd.Flags().BoolP("verbose", "v", false, "print every merge operation to stderr")
	dirsCmd.Flags().Bool("stats", false, "print operation counts to stderr")
	dirsCmd.MarkFlagRequired("left")
	dirsCmd.MarkFlagRequired("right")
	dirsCmd.MarkFlagRequired("out")
}

func runDirs(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	e.applyCommandFlags(cmd)
	if cmd.Flags().Changed("parallel") {
		e.cfg.Parallelism, _ = cmd.Flags().GetInt("parallel")
	}
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	e.cfg.Exclude = append(e.cfg.Exclude, exclude...)

	langs := make([]parse.Language, 0, len(e.cfg.Languages))
	for _, name := range e.cfg.Languages {
		lang, err := parse.ParseLanguage(name)
		if err != nil {
			return err
		}
		langs = append(langs, lang)
	}

	p := e.newParser()
	defer p.Close()
	prog := newProgress(cmd)

	m := fileset.New(fileset.Options{
		Exclude:   e.cfg.Exclude,
		Workers:   e.cfg.Workers(),
		Parser:    p,
		Languages: langs,
		Merge:     e.cfg.MergeOptions(e.log, prog.Sink()),
		Logger:    e.log,
	})

	leftDir, _ := cmd.Flags().GetString("left")
	baseDir, _ := cmd.Flags().GetString("base")
	rightDir, _ := cmd.Flags().GetString("right")
	res, err := m.Merge(cmd.Context(), leftDir, baseDir, rightDir)
	prog.Done()
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	if err := fileset.Write(res.Tree, outDir); err != nil {
		return fmt.Errorf("write %s: %w", outDir, err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Report); err != nil {
			return err
		}
	} else {
		printReport(cmd, res.Report)
	}

	if res.Report.HasConflicts() {
		return errConflicts
	}
	return nil
}

func printReport(cmd *cobra.Command, r *fileset.Report) {
	w := cmd.OutOrStdout()
	for _, f := range r.Files {
		c := cleanColor
		if f.Status == fileset.StatusConflict {
			c = conflictColor
		}
		c.Fprintf(w, "%-10s", f.Status)
		fmt.Fprintf(w, " %s", f.Path)
		switch {
		case f.Reason != "":
			fmt.Fprintf(w, " (%s)", f.Reason)
		case f.Conflicts > 0:
			fmt.Fprintf(w, " (%d conflicts)", f.Conflicts)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\n%d files, %d conflicts\n", len(r.Files), r.Conflicts)
}
