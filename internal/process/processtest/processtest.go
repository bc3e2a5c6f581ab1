// Package processtest provides a scripted process.Executor for tests of
// packages that launch the build and benchmark programs.
package processtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	perrors "pirbench/internal/errors"
	"pirbench/internal/process"
)

// Call records one invocation seen by an Executor.
type Call struct {
	Name         string
	Args         []string
	IgnoreErrors bool
	Build        bool
}

// Executor is a scripted process.Executor. Handler decides the outcome of
// each call; a result with a non-zero exit code is turned into a
// CommandFailed error unless the call asked to ignore errors.
type Executor struct {
	Handler func(call Call) (*process.Result, error)

	mu    sync.Mutex
	calls []Call
}

var _ process.Executor = (*Executor)(nil)

// Calls returns the invocations seen so far.
func (e *Executor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// Names returns the program names invoked so far, builds included.
func (e *Executor) Names() []string {
	var names []string
	for _, c := range e.Calls() {
		names = append(names, c.Name)
	}
	return names
}

func (e *Executor) Run(ctx context.Context, name string, opts ...process.Option) (*process.Result, error) {
	o := process.ResolveOptions(opts...)
	return e.handle(ctx, Call{Name: name, Args: o.Args, IgnoreErrors: o.IgnoreErrors})
}

func (e *Executor) Build(ctx context.Context, command string) (*process.Result, error) {
	words := strings.Fields(command)
	if len(words) == 0 {
		return nil, perrors.New(perrors.LaunchFailure, "process.build", "empty build command", nil)
	}
	return e.handle(ctx, Call{Name: words[0], Args: words[1:], Build: true})
}

func (e *Executor) handle(ctx context.Context, call Call) (*process.Result, error) {
	e.mu.Lock()
	e.calls = append(e.calls, call)
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, perrors.New(perrors.CommandFailed, "process.run", call.Name, err)
	}
	if e.Handler == nil {
		return &process.Result{}, nil
	}

	res, err := e.Handler(call)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &process.Result{}
	}
	if res.Abnormal() && !call.IgnoreErrors {
		return nil, perrors.New(perrors.CommandFailed, "process.run", strings.TrimSpace(res.Stderr),
			fmt.Errorf("exit status %d", res.ExitCode))
	}
	return res, nil
}
