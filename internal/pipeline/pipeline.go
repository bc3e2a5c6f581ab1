// Package pipeline drives one benchmark configuration through the
// configure, build, calibrate, rebuild, measure and extract stages, and
// runs batches of configurations in order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pirbench/internal/benchmark"
	perrors "pirbench/internal/errors"
	"pirbench/internal/extract"
	"pirbench/internal/telemetry"
	"pirbench/internal/workspace"
)

// Stage names used in logs and metrics.
const (
	StageConfigure = "configure"
	StageBuild     = "build"
	StageCalibrate = "calibrate"
	StageRebuild   = "rebuild"
	StageMeasure   = "measure"
	StagePersist   = "persist"
)

// Pipeline runs single configurations against a workspace.
type Pipeline struct {
	Workspace *workspace.Workspace
	Table     extract.Table
	Logs      *extract.LogWriter

	// Optional collaborators; nil disables them.
	Store   benchmark.Store
	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// New creates a Pipeline with the default pattern table, writing logs
// under the workspace's logs directory.
func New(ws *workspace.Workspace) *Pipeline {
	return &Pipeline{
		Workspace: ws,
		Table:     extract.DefaultTable,
		Logs:      extract.NewLogWriter(ws.Path(ws.Layout().LogsDir)),
	}
}

func (p *Pipeline) runLogger(cfg benchmark.RunConfig) *slog.Logger {
	if p.Logger != nil {
		return p.Logger.With("N", cfg.SizeExponent, "d", cfg.RecordSize)
	}
	return telemetry.ForRun(cfg.SizeExponent, cfg.RecordSize)
}

// Run executes the full sequence for cfg and returns the resulting record.
// The workspace is held for the whole run.
func (p *Pipeline) Run(ctx context.Context, cfg benchmark.RunConfig) (rec *benchmark.Record, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := p.runLogger(cfg)
	defer func() { p.Metrics.RunFinished(err == nil) }()

	session, err := p.Workspace.Acquire(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire workspace: %w", err)
	}
	defer session.Release()

	logger.Info("Starting benchmark run")
	start := time.Now()

	if err := p.stage(logger, StageConfigure, session.Configure); err != nil {
		return nil, err
	}
	if err := p.stage(logger, StageBuild, func() error { return session.Build(ctx) }); err != nil {
		return nil, err
	}

	var basis benchmark.CalibratedBasis
	err = p.stage(logger, StageCalibrate, func() error {
		b, cerr := Calibrate(ctx, session, logger)
		if cerr != nil {
			return cerr
		}
		basis = b
		return session.Calibrate(b)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Calibrated", "basis", session.Basis().Exponent)

	if err := p.stage(logger, StageRebuild, func() error { return session.Build(ctx) }); err != nil {
		return nil, err
	}

	var raw benchmark.RawOutputPair
	err = p.stage(logger, StageMeasure, func() error {
		var merr error
		raw, merr = Measure(ctx, session)
		return merr
	})
	if err != nil {
		return nil, err
	}

	metrics, errs := p.Table.Extract(raw)
	for _, e := range errs {
		logger.Warn("Metric extraction failed", "error", e)
	}
	if len(metrics) == 0 {
		logger.Warn("No metrics recognized in benchmark output", "table", p.Table.Version)
	}

	var artifacts extract.Artifacts
	err = p.stage(logger, StagePersist, func() error {
		var perr error
		artifacts, perr = p.Logs.Persist(cfg, raw, metrics)
		return perr
	})
	if err != nil {
		return nil, err
	}

	record := benchmark.NewRecord(cfg, basis.Exponent, metrics, artifacts.CapturedAt)
	record.RawLogPath = artifacts.RawLog
	record.MetricsLogPath = artifacts.MetricsLog

	for _, m := range metrics {
		p.Metrics.SetMetricValue(m.Name, cfg.SizeExponent, cfg.RecordSize, m.Value)
	}
	if p.Store != nil {
		if err := p.Store.SaveRecord(ctx, record); err != nil {
			// logs are already on disk, the run still counts
			logger.Error("Failed to save record", "id", record.ID, "error", err)
		}
	}

	logger.Info("Benchmark run complete", "metrics", len(metrics), "log", artifacts.RawLog,
		"duration", time.Since(start).Round(time.Millisecond))
	return &record, nil
}

// stage runs fn and records its duration and outcome.
func (p *Pipeline) stage(logger *slog.Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.Metrics.ObserveStage(name, time.Since(start))
	if err != nil {
		kind := perrors.KindOf(err)
		p.Metrics.StageFailed(name, kind.String())
		logger.Error("Stage failed", "stage", name, "kind", kind, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("Stage finished", "stage", name, "duration", time.Since(start))
	return nil
}
