package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/store"
)

var mergeCmd = &cobra.Command{
	Use:   "merge --left FILE [--base FILE] --right FILE",
	Short: "Merge two versions of a file against their common ancestor",
	Long:  "Parse the left, base and right versions of a file, match their syntax trees and merge them. Exits with status 1 if the result holds conflicts.",
	Args:  cobra.NoArgs,
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().String("left", "", "left version (required)")
	mergeCmd.Flags().String("base", "", "common ancestor, omit for a two-way merge")
	mergeCmd.Flags().String("right", "", "right version (required)")
	mergeCmd.Flags().String("store", "", "directory of a Kuzu database that records the trees and matchings")
	mergeCmd.MarkFlagRequired("left")
	mergeCmd.MarkFlagRequired("right")
	addOutputFlags(mergeCmd)
}

func runMerge(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	e.applyCommandFlags(cmd)
	format, err := e.outputFormat(cmd)
	if err != nil {
		return err
	}

	leftPath, _ := cmd.Flags().GetString("left")
	basePath, _ := cmd.Flags().GetString("base")
	rightPath, _ := cmd.Flags().GetString("right")
	langName, _ := cmd.Flags().GetString("lang")
	lang, err := resolveLanguage(langName, leftPath, rightPath, basePath)
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
	base, err := readTree(ctx, p, basePath, lang, artifact.Base)
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
	res, err := mc.Merge(left, base, right)
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
		if err := store.SaveMerge(ctx, s, res.Session, res.Matchings, left, base, right, res.Target); err != nil {
			return err
		}
		e.log.Info("merge stored", "session", res.Session, "store", dir)
	}

	if err := e.render(cmd, format, res.Matchings, res.Target); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	reportConflicts(res.Conflicts)
	if res.HasConflicts() {
		return errConflicts
	}
	return nil
}
