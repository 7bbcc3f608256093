package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/dump"
	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/store"
)

var diffCmd = &cobra.Command{
	Use:   "diff --left FILE --right FILE",
	Short: "Match two versions of a file and print the matchings",
	Long:  "Parse both versions, match their syntax trees without merging and print every matching with its score. --format renders both trees with the matchings drawn between them instead.",
	Args:  cobra.NoArgs,
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().String("left", "", "left version (required)")
	diffCmd.Flags().String("right", "", "right version (required)")
	diffCmd.Flags().String("store", "", "directory of a Kuzu database that records the trees and matchings")
	diffCmd.MarkFlagRequired("left")
	diffCmd.MarkFlagRequired("right")
	addOutputFlags(diffCmd)
}

func runDiff(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	e.applyCommandFlags(cmd)
	e.cfg.DiffOnly = true

	leftPath, _ := cmd.Flags().GetString("left")
	rightPath, _ := cmd.Flags().GetString("right")
	langName, _ := cmd.Flags().GetString("lang")
	lang, err := resolveLanguage(langName, leftPath, rightPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p := e.newParser()
	defer p.Close()

	left, err := readTree(ctx, p, leftPath, lang, artifact.Left)
	if err != nil {
		return err
	}
	right, err := readTree(ctx, p, rightPath, lang, artifact.Right)
	if err != nil {
		return err
	}

	prog := newProgress(cmd)
	mc, err := merge.NewContext(e.cfg.MergeOptions(e.log, prog.Sink()))
	if err != nil {
		return err
	}
	ms, err := mc.Diff(left, right)
	prog.Done()
	if err != nil {
		return err
	}

	if dir, _ := cmd.Flags().GetString("store"); dir != "" {
		s, err := openStore(ctx, dir)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := store.SaveMerge(ctx, s, mc.ID, ms.All(), left, right); err != nil {
			return err
		}
		e.log.Info("diff stored", "session", mc.ID, "store", dir)
	}

	if cmd.Flags().Changed("format") {
		format, err := e.outputFormat(cmd)
		if err != nil {
			return err
		}
		return e.render(cmd, format, ms.All(), left, right)
	}

	w := cmd.OutOrStdout()
	if root, ok := ms.Get(left, right); ok {
		fmt.Fprintf(w, "%s <-> %s: %d/%d (%.1f%%)\n\n", leftPath, rightPath, root.Score, root.MaxScore, 100*root.Percentage())
	} else {
		fmt.Fprintf(w, "%s <-> %s: roots do not match\n\n", leftPath, rightPath)
	}
	return dump.WriteMatchings(w, ms.All())
}
