package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtree/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <tree>",
	Short: "Answer a question tree",
	Long: `Asks the questions of a tree and prints the answers as JSON.

Answers from --answers are used as-is and their questions are skipped.
Functions referenced by the tree are served by functions.yaml next to the
tree, by --functions, or by the remote endpoint in --remote-url.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(cmd, args)
		opts.AnswersPath, _ = cmd.Flags().GetString("answers")
		opts.OutPath, _ = cmd.Flags().GetString("out")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Survey, _ = cmd.Flags().GetBool("survey")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		opts.FunctionsPath, _ = cmd.Flags().GetString("functions")
		opts.RemoteURL, _ = cmd.Flags().GetString("remote-url")
		opts.ConfirmFunctions, _ = cmd.Flags().GetBool("confirm-functions")
		opts.CallTimeout, _ = cmd.Flags().GetDuration("call-timeout")
		opts.LockKey, _ = cmd.Flags().GetString("lock-key")
		opts.RedisAddr, _ = cmd.Flags().GetString("redis-addr")
		opts.LockTTL, _ = cmd.Flags().GetDuration("lock-ttl")
		opts.MaxAttempts, _ = cmd.Flags().GetInt("max-attempts")

		if opts.JSON && opts.Survey {
			fmt.Fprintln(os.Stderr, "Error: --json and --survey cannot be used together.")
			os.Exit(1)
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		err := cli.Run(sc, opts)
		if sc.Signal() == syscall.SIGTERM {
			os.Exit(143)
		}
		if errors.Is(err, cli.ErrCancelled) {
			os.Exit(130)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("answers", "", "YAML or JSON file of answers given up front")
	runCmd.Flags().StringP("out", "o", "", "Write the answers to this file instead of stdout")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("survey", false, "Use full-screen survey prompts")
	runCmd.Flags().Bool("plain", false, "Disable the banner and Markdown rendering")
	runCmd.Flags().String("functions", "", "Process functions file (default functions.yaml next to the tree)")
	runCmd.Flags().String("remote-url", "", "Base URL of a qtree serve endpoint for remote functions")
	runCmd.Flags().Bool("confirm-functions", false, "Ask before every function call")
	runCmd.Flags().Duration("call-timeout", cli.DefaultCallTimeout, "Timeout of each function call")
	runCmd.Flags().String("lock-key", "", "Hold this lock for the whole run")
	runCmd.Flags().String("redis-addr", "", "Redis address for --lock-key (default: lock files)")
	runCmd.Flags().Duration("lock-ttl", 0, "Lease of the lock (0 uses the engine default)")
	runCmd.Flags().Int("max-attempts", 0, "Give up after this many invalid answers to one question (0 retries forever)")
}
