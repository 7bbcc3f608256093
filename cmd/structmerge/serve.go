package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/structmerge/internal/mcptools"
)

var serveCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve the merge tools over MCP",
	Long:  "Run an MCP server exposing merge_sources, diff_sources and query_matchings. Serves stdio by default and streamable HTTP with --http.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("http", "", "listen address for streamable HTTP, e.g. :8080")
	serveCmd.Flags().String("store", "", "directory of a Kuzu database that records every session")
	serveCmd.Flags().Bool("semistructured", false, "merge function bodies as text")
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	e.applyCommandFlags(cmd)

	ctx := cmd.Context()
	dir, _ := cmd.Flags().GetString("store")
	s, err := openStore(ctx, dir)
	if err != nil {
		return err
	}
	defer s.Close()

	p := e.newParser()
	defer p.Close()
	svc := mcptools.NewMergeService(p, s, e.cfg, e.log)

	if addr, _ := cmd.Flags().GetString("http"); addr != "" {
		e.log.Info("serving MCP over HTTP", "addr", addr)
		return mcptools.RunMCPServer(ctx, svc, addr)
	}
	return mcptools.RunMCPServerStdio(ctx, svc)
}
