package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pirbench/internal/benchmark"
	"pirbench/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored benchmark runs",
	Long: `Lists stored runs, newest first, optionally narrowed to one
configuration. --markdown renders a full report with every metric.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(loadSettings())
		if err != nil {
			return err
		}
		defer store.Close()

		filter := benchmark.Filter{}
		filter.Limit, _ = cmd.Flags().GetInt("limit")
		if cmd.Flags().Changed("N") || cmd.Flags().Changed("d") {
			n, _ := cmd.Flags().GetInt("N")
			d, _ := cmd.Flags().GetInt("d")
			filter.Config = &benchmark.RunConfig{SizeExponent: n, RecordSize: d}
		}

		records, err := store.ListRecords(contextOrBackground(cmd.Context()), filter)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if markdown, _ := cmd.Flags().GetBool("markdown"); markdown {
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderMarkdown(ui.HistoryMarkdown(records), 100))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderHistory(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("N", 20, "Only runs with this size exponent")
	historyCmd.Flags().Int("d", 64, "Only runs with this record size")
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs (0 for all)")
	historyCmd.Flags().Bool("markdown", false, "Render a markdown report")
}
