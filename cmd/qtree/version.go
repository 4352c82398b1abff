package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/qtree"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of qtree",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qtree version %s\n", strings.TrimSpace(qtree.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
