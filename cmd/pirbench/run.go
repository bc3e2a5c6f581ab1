package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pirbench/internal/benchmark"
	"pirbench/internal/notify"
	"pirbench/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Benchmark a single configuration",
	Long: `Runs the full pipeline for one configuration: write N and d, build,
calibrate the basis, rebuild, run both benchmark programs, and extract the
metrics. Logs are written under the project's logs directory.`,
	Example: `  pirbench run --N 20 --d 64`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("N")
		d, _ := cmd.Flags().GetInt("d")
		cfg := benchmark.RunConfig{SizeExponent: n, RecordSize: d}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := contextOrBackground(cmd.Context())
		p, closeStore, err := newPipeline(loadSettings())
		if err != nil {
			return err
		}
		defer closeStore()

		reporter := notify.NewBatchReporter(ctx, newNotifier())
		rec, err := p.Run(ctx, cfg)
		if err != nil {
			reporter.Failed(cfg, err)
			fmt.Fprintln(cmd.ErrOrStderr(), ui.FailureBanner("Failed to collect metrics"))
			return err
		}
		reporter.Succeeded(*rec)

		fmt.Fprint(cmd.OutOrStdout(), ui.RenderRecord(*rec))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("N", 20, "Database size exponent (2^N records)")
	runCmd.Flags().Int("d", 64, "Record size")
}
