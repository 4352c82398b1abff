package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtree/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [tree]",
	Short: "Check a tree for consistency",
	Long: `Compiles the tree and reports structural errors and conditions that can
never be evaluated. Without a tree argument every tree in --dir is checked.
With --strict every referenced function and validator must be served.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(cmd, args)
		opts.FunctionsPath, _ = cmd.Flags().GetString("functions")
		opts.RemoteURL, _ = cmd.Flags().GetString("remote-url")
		strict, _ := cmd.Flags().GetBool("strict")

		if opts.Tree == "" && opts.Dir == "" {
			opts.Dir = "."
		}
		if err := cli.Validate(cmd.Context(), opts, strict); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Tree is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("strict", false, "Fail on functions and validators that are not served")
	validateCmd.Flags().String("functions", "", "Process functions file (default functions.yaml next to the tree)")
	validateCmd.Flags().String("remote-url", "", "Remote functions endpoint; function references are then not checked")
}
