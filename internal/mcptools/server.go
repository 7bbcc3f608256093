package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMergeMCPServer creates an MCP server with the merge tools registered.
func NewMergeMCPServer(svc *MergeService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "structmerge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge_sources",
		Description: "Structurally merge a left and right version of a source file against their common ancestor. Returns the merged source with conflict markers and a summary of each conflict.",
	}, svc.MergeSources)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "diff_sources",
		Description: "Match the syntax trees of two versions of a source file without merging. Returns every matching with its score and percentage.",
	}, svc.DiffSources)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_matchings",
		Description: "Return the stored matchings of an earlier merge_sources or diff_sources session, optionally filtered by minimum percentage.",
	}, svc.QueryMatchings)

	return server
}

// RunMCPServerStdio serves the merge tools over stdin/stdout.
func RunMCPServerStdio(ctx context.Context, svc *MergeService) error {
	return NewMergeMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}

// RunMCPServer starts an HTTP server exposing the merge tools.
func RunMCPServer(ctx context.Context, svc *MergeService, addr string) error {
	server := NewMergeMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
