package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pirbench/internal/benchmark"
	"pirbench/internal/ui"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the two latest runs of a configuration",
	Long: `Shows the per-metric change between the two most recent stored runs of
one configuration. Only metrics present in both runs are listed.`,
	Example: `  pirbench compare --N 20 --d 64`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("N")
		d, _ := cmd.Flags().GetInt("d")
		cfg := benchmark.RunConfig{SizeExponent: n, RecordSize: d}

		store, err := openHistory(loadSettings())
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.LatestRecords(contextOrBackground(cmd.Context()), cfg, 2)
		if err != nil {
			return fmt.Errorf("failed to load runs: %w", err)
		}
		if len(records) < 2 {
			return fmt.Errorf("need two stored runs of %s to compare, found %d", cfg, len(records))
		}

		curr, prev := records[0], records[1]
		cmp := benchmark.Compare(prev, curr)
		if len(cmp) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.WarnBanner("the two runs share no metrics"))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderComparison(prev, curr, cmp))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Int("N", 20, "Database size exponent")
	compareCmd.Flags().Int("d", 64, "Record size")
}
