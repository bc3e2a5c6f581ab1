package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pirbench/internal/benchmark"
	"pirbench/internal/config"
	"pirbench/internal/db"
	"pirbench/internal/notify"
	"pirbench/internal/pipeline"
	"pirbench/internal/process"
	"pirbench/internal/workspace"
)

// Factories are variables so tests can swap the external collaborators.
var (
	newExecutor = func(s config.Settings) process.Executor {
		return process.NewRunner(s.ProjectDir, s.LibDir, s.CommandTimeout)
	}

	openStore = func(s config.Settings) (benchmark.Store, error) {
		return db.NewStore(db.StoreConfig{Type: s.StoreType, ConnectionString: s.StoreDSN})
	}

	newNotifier = func() *notify.Manager {
		return notify.NewManager(slog.Default())
	}

	loadSettings = config.Current
)

// errStoreDisabled is returned by commands that read stored runs.
var errStoreDisabled = errors.New("result store disabled (store.type=none)")

func layoutFor(s config.Settings) workspace.Layout {
	return workspace.Layout{
		ParamsFile:   s.ParamsFile,
		BuildCommand: s.BuildCommand,
		BenchBinary:  s.BenchBinary,
		ParamsBinary: s.ParamsBinary,
		LogsDir:      s.LogsDir,
	}
}

// newPipeline opens the workspace and store for s. The returned close
// function releases the store.
func newPipeline(s config.Settings) (*pipeline.Pipeline, func(), error) {
	ws, err := workspace.New(s.ProjectDir, layoutFor(s), newExecutor(s))
	if err != nil {
		return nil, nil, err
	}

	store, err := openStore(s)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open result store: %w", err)
	}

	p := pipeline.New(ws)
	p.Metrics = appMetrics
	p.Logger = slog.Default()
	closeFn := func() {}
	if store != nil {
		p.Store = store
		closeFn = func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close result store", "error", err)
			}
		}
	}
	return p, closeFn, nil
}

// openHistory opens the store for read-only commands.
func openHistory(s config.Settings) (benchmark.Store, error) {
	store, err := openStore(s)
	if err != nil {
		return nil, fmt.Errorf("failed to open result store: %w", err)
	}
	if store == nil {
		return nil, errStoreDisabled
	}
	return store, nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
