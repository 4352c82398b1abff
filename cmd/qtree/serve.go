package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtree/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve functions and trees over HTTP",
	Long: `Starts an HTTP server that runs functions for remote qtree clients
(POST /rpc/{namespace}/{method}), lists the trees in --dir and exposes
Prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(cmd, args)
		opts.FunctionsPath, _ = cmd.Flags().GetString("functions")
		port, _ := cmd.Flags().GetString("port")

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		if err := cli.Serve(sc, opts, port); err != nil && !cli.IsServerClosed(err) {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("functions", "", "Process functions file (default functions.yaml in --dir)")
}
