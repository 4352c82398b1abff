package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/qtree"
	"github.com/aretw0/qtree/pkg/adapters/file"
	"github.com/aretw0/qtree/pkg/adapters/mcp"
)

// ServeMCP exposes the trees of opts.Dir as an MCP server.
// Transport is "stdio" or "sse"; port only applies to SSE.
func ServeMCP(ctx context.Context, opts Options, transport string, port int) error {
	opts.ResolveEnv()
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}

	srv, err := newMCPServer(opts, logger)
	if err != nil {
		return err
	}

	switch transport {
	case "stdio":
		// Logs go to Stderr so they never corrupt JSON-RPC on Stdout.
		logger.Info("Starting qtree MCP Server (Stdio)...")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting qtree MCP Server (SSE)", "port", port)
		return srv.ServeSSE(ctx, port)
	}
	return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
}

func newMCPServer(opts Options, logger *slog.Logger) (*mcp.Server, error) {
	loader, err := OpenLoader(opts.Dir, opts.Loam)
	if err != nil {
		return nil, err
	}
	fns, err := loadFunctions(opts)
	if err != nil {
		return nil, err
	}

	return mcp.NewServer(loader,
		mcp.WithRemoteCaller(fns.Caller),
		mcp.WithFunctionLister(fns),
		mcp.WithLogger(logger),
		mcp.WithEngineOptions(
			qtree.WithLocalValidators(fns.LocalValidators()),
			qtree.WithSelectionHandlers(fns.Registry),
			qtree.WithFileSystem(file.NewFS("")),
			qtree.WithMaxAttempts(opts.MaxAttempts),
		),
	), nil
}
