// Package process runs the external build and benchmark programs of a
// project checkout and captures their textual output.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"

	perrors "pirbench/internal/errors"
)

// LibraryPathVar is the search-path variable prepended with the project's
// own library output directory.
const LibraryPathVar = "LD_LIBRARY_PATH"

// execCommandContext allows mocking in tests.
var execCommandContext = exec.CommandContext

// Executor is the subset of Runner the pipeline depends on.
type Executor interface {
	Run(ctx context.Context, name string, opts ...Option) (*Result, error)
	Build(ctx context.Context, command string) (*Result, error)
}

// Result is what one finished invocation left behind.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Signaled bool
	Duration time.Duration
}

// Abnormal reports whether the process did not exit cleanly.
func (r *Result) Abnormal() bool {
	return r.ExitCode != 0 || r.Signaled
}

// Options is the resolved form of the Option values passed to Run.
type Options struct {
	Args         []string
	IgnoreErrors bool
}

// Option configures a single Run call.
type Option func(*Options)

// IgnoreErrors returns captured stdout even when the process exits non-zero.
func IgnoreErrors() Option {
	return func(o *Options) { o.IgnoreErrors = true }
}

// WithArgs passes command-line arguments to the program.
func WithArgs(args ...string) Option {
	return func(o *Options) { o.Args = append(o.Args, args...) }
}

// ResolveOptions applies opts in order.
func ResolveOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Runner executes programs rooted at a project directory.
type Runner struct {
	Root    string
	LibDir  string        // relative to Root
	Timeout time.Duration // zero means wait forever
}

// NewRunner creates a Runner for the project at root.
func NewRunner(root, libDir string, timeout time.Duration) *Runner {
	return &Runner{Root: root, LibDir: libDir, Timeout: timeout}
}

// Environ returns the environment handed to every child process.
func (r *Runner) Environ() []string {
	libPath := r.LibDir
	if !filepath.IsAbs(libPath) {
		libPath = filepath.Join(r.Root, libPath)
	}

	env := os.Environ()
	out := make([]string, 0, len(env)+1)
	prev := ""
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, LibraryPathVar+"="); ok {
			prev = v
			continue
		}
		out = append(out, kv)
	}

	value := libPath
	if prev != "" {
		value = libPath + string(os.PathListSeparator) + prev
	}
	return append(out, LibraryPathVar+"="+value)
}

func (r *Runner) resolve(name string) string {
	if filepath.IsAbs(name) || !strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(r.Root, name)
}

// Run executes name and returns its captured output. In strict mode a
// non-zero exit is a CommandFailed error carrying stderr; with IgnoreErrors
// the result is returned regardless of exit status.
func (r *Runner) Run(ctx context.Context, name string, opts ...Option) (*Result, error) {
	const op = "process.run"

	o := ResolveOptions(opts...)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := execCommandContext(ctx, r.resolve(name), o.Args...)
	cmd.Dir = r.Root
	cmd.Env = r.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "name", name, "args", o.Args, "dir", r.Root, "ignore_errors", o.IgnoreErrors)

	start := time.Now()
	runErr := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		return nil, perrors.New(perrors.LaunchFailure, op, name, runErr)
	}

	res.ExitCode = exitErr.ExitCode()
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		res.Signaled = true
	}

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, perrors.New(perrors.CommandFailed, op,
			fmt.Sprintf("%s timed out after %s", name, r.Timeout), ctxErr)
	} else if ctxErr != nil {
		return nil, perrors.New(perrors.CommandFailed, op, name, ctxErr)
	}

	if o.IgnoreErrors {
		slog.Debug("command exited abnormally, keeping output", "name", name,
			"exit_code", res.ExitCode, "signaled", res.Signaled)
		return res, nil
	}

	return nil, perrors.New(perrors.CommandFailed, op, strings.TrimSpace(res.Stderr), runErr)
}

// Build runs the project's build command, split with shell quoting rules,
// in strict mode.
func (r *Runner) Build(ctx context.Context, command string) (*Result, error) {
	words, err := shellquote.Split(command)
	if err != nil {
		return nil, perrors.New(perrors.LaunchFailure, "process.build", command, err)
	}
	if len(words) == 0 {
		return nil, perrors.New(perrors.LaunchFailure, "process.build", "empty build command", nil)
	}
	return r.Run(ctx, words[0], WithArgs(words[1:]...))
}
