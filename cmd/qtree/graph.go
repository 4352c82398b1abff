package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtree/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <tree>",
	Short: "Export the tree as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the tree. With --answers the
answered questions are highlighted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(cmd, args)
		opts.AnswersPath, _ = cmd.Flags().GetString("answers")
		opts.OutPath, _ = cmd.Flags().GetString("out")

		if err := cli.Graph(cmd.Context(), opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("answers", "", "YAML or JSON file of answers to highlight")
	graphCmd.Flags().StringP("out", "o", "", "Write the diagram to this file instead of stdout")
}
