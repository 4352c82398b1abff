package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtree/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "qtree",
	Short: "qtree asks the questions of a question tree",
	Long: `qtree walks a question tree defined in YAML or JSON, asks each question
whose condition holds and prints the collected answers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		return cli.LoadEnvFile(envFile)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", "", "Directory of trees; the tree argument is then an ID")
	rootCmd.PersistentFlags().Bool("loam", false, "Read trees from a Loam repository of Markdown documents")
	rootCmd.PersistentFlags().String("env-file", "", "File of KEY=VALUE pairs to load (default .env when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

// baseOptions reads the persistent flags and the optional tree argument.
func baseOptions(cmd *cobra.Command, args []string) cli.Options {
	var opts cli.Options
	opts.Dir, _ = cmd.Flags().GetString("dir")
	opts.Loam, _ = cmd.Flags().GetBool("loam")
	opts.Debug, _ = cmd.Flags().GetBool("debug")
	opts.LogLevel, _ = cmd.Flags().GetString("log-level")
	opts.LogFormat, _ = cmd.Flags().GetString("log-format")
	if len(args) > 0 {
		opts.Tree = args[0]
	}
	return opts
}
