package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtree/internal/cli"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the trees in --dir as MCP tools so that agents can step through
them one question at a time.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(cmd, args)
		opts.FunctionsPath, _ = cmd.Flags().GetString("functions")
		opts.RemoteURL, _ = cmd.Flags().GetString("remote-url")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		if opts.Dir == "" {
			opts.Dir = "."
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		if err := cli.ServeMCP(sc, opts, transport, port); err != nil && !cli.IsServerClosed(err) {
			fmt.Fprintf(os.Stderr, "MCP Server execution failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("functions", "", "Process functions file (default functions.yaml in --dir)")
	mcpCmd.Flags().String("remote-url", "", "Base URL of a qtree serve endpoint for remote functions")
}
