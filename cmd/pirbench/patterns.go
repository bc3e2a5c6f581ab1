package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pirbench/internal/extract"
	"pirbench/internal/ui"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Print the metric extraction table",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderPatterns(extract.DefaultTable))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}
