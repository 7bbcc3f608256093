package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/merge"
)

var nwayCmd = &cobra.Command{
	Use:   "nway FILE FILE...",
	Short: "Merge several variants of a file into one tree of choices",
	Long:  "Fold the variants pairwise from left to right. Where they diverge the result holds a choice node with one alternative per variant.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runNWay,
}

func init() {
	addOutputFlags(nwayCmd)
}

func runNWay(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	e.applyCommandFlags(cmd)
	format, err := e.outputFormat(cmd)
	if err != nil {
		return err
	}
	langName, _ := cmd.Flags().GetString("lang")
	lang, err := resolveLanguage(langName, args...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p := e.newParser()
	defer p.Close()

	variants := make([]*artifact.Artifact, len(args))
	for i, path := range args {
		rev := artifact.Revision(fmt.Sprintf("v%d", i+1))
		if variants[i], err = readTree(ctx, p, path, lang, rev); err != nil {
			return err
		}
	}

	prog := newProgress(cmd)
	mc, err := merge.NewContext(e.cfg.MergeOptions(e.log, prog.Sink()))
	if err != nil {
		return err
	}
	res, err := mc.MergeN(variants...)
	prog.Done()
	if err != nil {
		return err
	}
	return e.render(cmd, format, res.Matchings, res.Target)
}
