package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/structmerge/internal/artifact"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the syntax tree structmerge builds for a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("lang", "", "source language, inferred from the file extension by default")
	parseCmd.Flags().String("format", "", "output format (plaintext|dot|tgf|mermaid|json|source)")
	parseCmd.Flags().StringP("output", "o", "", "write the tree to a file instead of stdout")
	parseCmd.Flags().Bool("semistructured", false, "keep function bodies as text leaves")
}

func runParse(cmd *cobra.Command, args []string) error {
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
	lang, err := resolveLanguage(langName, args[0])
	if err != nil {
		return err
	}

	p := e.newParser()
	defer p.Close()
	tree, err := readTree(cmd.Context(), p, args[0], lang, artifact.Left)
	if err != nil {
		return err
	}
	return e.render(cmd, format, nil, tree)
}
