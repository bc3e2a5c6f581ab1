// Package workspace owns the shared on-disk state of a benchmark checkout:
// the parameter header and the build output it compiles into. Every write,
// build and benchmark execution goes through a Session, and only one
// Session exists at a time.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pirbench/internal/benchmark"
	"pirbench/internal/process"
)

// Layout locates the build inputs and outputs inside the project root.
// Relative paths are resolved against the root.
type Layout struct {
	ParamsFile   string
	BuildCommand string
	BenchBinary  string
	ParamsBinary string
	LogsDir      string
}

// DefaultLayout matches the VeriSimplePIR source tree.
var DefaultLayout = Layout{
	ParamsFile:   "src/demo/global_parameters.h",
	BuildCommand: "make",
	BenchBinary:  "bin/demo/bench/preproc_pir_bench",
	ParamsBinary: "bin/demo/scripts/params",
	LogsDir:      "metrics/logs",
}

// ErrProjectMissing is returned when the project root does not exist.
var ErrProjectMissing = errors.New("project directory not found")

// Workspace is the single owned handle on a project checkout.
type Workspace struct {
	root   string
	layout Layout
	exec   process.Executor
	sem    chan struct{} // holds a token while a Session is open
}

// New opens the project at root.
func New(root string, layout Layout, exec process.Executor) (*Workspace, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrProjectMissing, root)
	}
	return &Workspace{root: root, layout: layout, exec: exec, sem: make(chan struct{}, 1)}, nil
}

// Root returns the project directory.
func (w *Workspace) Root() string {
	return w.root
}

// Path resolves p against the project root.
func (w *Workspace) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.root, p)
}

// Layout returns the workspace layout.
func (w *Workspace) Layout() Layout {
	return w.layout
}

// Acquire blocks until no other Session is open and returns a new one for
// cfg. The caller must Release it.
func (w *Workspace) Acquire(ctx context.Context, cfg benchmark.RunConfig) (*Session, error) {
	select {
	case w.sem <- struct{}{}:
		return &Session{ws: w, cfg: cfg, state: Unconfigured}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
