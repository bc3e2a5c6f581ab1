package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pirbench/internal/benchmark"
	"pirbench/internal/notify"
	"pirbench/internal/pipeline"
	"pirbench/internal/ui"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Benchmark a list of configurations in order",
	Long: `Runs the pipeline for each configuration, one after another. A failing
configuration is reported and skipped; the batch always runs to the end.
Without --configs the built-in set is used:
  (20,64) (20,2048) (26,64) (30,8) (18,262144)`,
	Example: `  pirbench batch
  pirbench batch --configs 20:64,26:64`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, _ := cmd.Flags().GetStringSlice("configs")
		cfgs, err := parseConfigs(pairs)
		if err != nil {
			return err
		}

		ctx := contextOrBackground(cmd.Context())
		p, closeStore, err := newPipeline(loadSettings())
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.GenerateLogo())

		reporter := notify.NewBatchReporter(ctx, newNotifier())
		o := pipeline.NewOrchestrator(p, pipeline.Hooks{
			OnStart:   reporter.Started,
			OnSuccess: reporter.Succeeded,
			OnFailure: func(cfg benchmark.RunConfig, err error) {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.FailureBanner(fmt.Sprintf("%s skipped: %v", cfg, err)))
				reporter.Failed(cfg, err)
			},
			OnDone: reporter.Done,
		})
		o.Logger = p.Logger

		result := o.RunBatch(ctx, cfgs)
		fmt.Fprint(out, ui.RenderBatch(result))
		if len(result.Failures) == 0 {
			fmt.Fprintln(out, ui.SuccessBanner(fmt.Sprintf("%d configuration(s) measured", len(result.Records))))
		}
		return ctx.Err()
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringSlice("configs", nil, "Configurations as N:d pairs (default: built-in set)")
}

// parseConfigs reads N:d pairs; no pairs selects the built-in batch.
func parseConfigs(pairs []string) ([]benchmark.RunConfig, error) {
	if len(pairs) == 0 {
		return append([]benchmark.RunConfig(nil), benchmark.DefaultBatch...), nil
	}
	cfgs := make([]benchmark.RunConfig, 0, len(pairs))
	for _, pair := range pairs {
		nStr, dStr, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("invalid configuration %q: expected N:d", pair)
		}
		n, err := strconv.Atoi(nStr)
		if err != nil {
			return nil, fmt.Errorf("invalid N in %q: %w", pair, err)
		}
		d, err := strconv.Atoi(dStr)
		if err != nil {
			return nil, fmt.Errorf("invalid d in %q: %w", pair, err)
		}
		cfg := benchmark.RunConfig{SizeExponent: n, RecordSize: d}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}
