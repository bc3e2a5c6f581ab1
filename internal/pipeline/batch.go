package pipeline

import (
	"context"
	"log/slog"

	"pirbench/internal/benchmark"
)

// Runner runs one configuration to completion.
type Runner interface {
	Run(ctx context.Context, cfg benchmark.RunConfig) (*benchmark.Record, error)
}

// Hooks observe a batch as it progresses. Any of them may be nil.
type Hooks struct {
	OnStart   func(cfgs []benchmark.RunConfig)
	OnSuccess func(rec benchmark.Record)
	OnFailure func(cfg benchmark.RunConfig, err error)
	OnDone    func(result benchmark.BatchResult)
}

// Orchestrator runs batches of configurations strictly in order.
type Orchestrator struct {
	Runner Runner
	Hooks  Hooks
	Logger *slog.Logger
}

// NewOrchestrator creates an Orchestrator around runner.
func NewOrchestrator(runner Runner, hooks Hooks) *Orchestrator {
	return &Orchestrator{Runner: runner, Hooks: hooks}
}

// RunBatch runs every configuration, one at a time. A failing
// configuration is reported and skipped; the batch stops early only when
// ctx is cancelled, in which case the remaining configurations are
// reported as failures.
func (o *Orchestrator) RunBatch(ctx context.Context, cfgs []benchmark.RunConfig) benchmark.BatchResult {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Starting batch", "configs", len(cfgs))
	if o.Hooks.OnStart != nil {
		o.Hooks.OnStart(cfgs)
	}

	var result benchmark.BatchResult
	for i, cfg := range cfgs {
		if err := ctx.Err(); err != nil {
			for _, rest := range cfgs[i:] {
				result.Failures = append(result.Failures, benchmark.Failure{Config: rest, Err: err})
			}
			logger.Warn("Batch cancelled", "remaining", len(cfgs)-i)
			break
		}

		logger.Info("Running configuration", "index", i+1, "total", len(cfgs), "config", cfg.String())
		rec, err := o.Runner.Run(ctx, cfg)
		if err != nil {
			logger.Error("Configuration failed, skipping", "config", cfg.String(), "error", err)
			result.Failures = append(result.Failures, benchmark.Failure{Config: cfg, Err: err})
			if o.Hooks.OnFailure != nil {
				o.Hooks.OnFailure(cfg, err)
			}
			continue
		}

		result.Records = append(result.Records, *rec)
		if o.Hooks.OnSuccess != nil {
			o.Hooks.OnSuccess(*rec)
		}
	}

	logger.Info("Batch finished", "succeeded", len(result.Records), "failed", len(result.Failures))
	if o.Hooks.OnDone != nil {
		o.Hooks.OnDone(result)
	}
	return result
}
