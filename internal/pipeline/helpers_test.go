package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"pirbench/internal/benchmark"
	"pirbench/internal/paramfile"
	"pirbench/internal/process"
	"pirbench/internal/process/processtest"
	"pirbench/internal/workspace"

	"github.com/stretchr/testify/require"
)

const (
	calibrationOutput = "Running with N = 20, d = 64\np = 1048576 = 2^20\nterminate called after throwing an instance of 'std::runtime_error'\n"

	benchmarkOutput = `A expansion time: 152.3 ms
Global preprocessing (all clients): 2250.5 ms
Server Per-Client Prepr (s) : 1.25
Client Local Prepr (s) : 0.5
Query: Client Req Gen (ms) : 3
Query: Server Comp (s) : 0.125
`

	paramsOutput = `Hints (MiB): hint download = 12.5
Online State (KiB): client storage = 512.0
Query Up (KiB): online upload size = 4.0
Query Down (KiB): online download size = 8
`
)

// fakeProject is a project checkout with a parameter header, driven by a
// scripted executor that imitates the build and the two benchmark programs.
type fakeProject struct {
	root string
	exec *processtest.Executor
	ws   *workspace.Workspace

	// failBuild selects the configurations whose builds fail.
	failBuild func(cfg benchmark.RunConfig) bool
}

func newFakeProject(t *testing.T) *fakeProject {
	t.Helper()
	root := t.TempDir()
	header := filepath.Join(root, workspace.DefaultLayout.ParamsFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(header), 0755))
	require.NoError(t, os.WriteFile(header,
		[]byte("#pragma once\n#define N_VALUE 10\n#define D_VALUE 8\n#define BASIS_VALUE 0\n"), 0644))

	fp := &fakeProject{root: root}
	fp.exec = &processtest.Executor{Handler: fp.handle}

	ws, err := workspace.New(root, workspace.DefaultLayout, fp.exec)
	require.NoError(t, err)
	fp.ws = ws
	return fp
}

func (fp *fakeProject) header() []byte {
	data, _ := os.ReadFile(filepath.Join(fp.root, workspace.DefaultLayout.ParamsFile))
	return data
}

func (fp *fakeProject) macro(name string) int {
	v, _ := paramfile.Lookup(fp.header(), name)
	return v
}

func (fp *fakeProject) handle(call processtest.Call) (*process.Result, error) {
	switch {
	case call.Build:
		cfg := benchmark.RunConfig{
			SizeExponent: fp.macro(paramfile.SizeExponentMacro),
			RecordSize:   fp.macro(paramfile.RecordSizeMacro),
		}
		if fp.failBuild != nil && fp.failBuild(cfg) {
			return &process.Result{ExitCode: 2, Stderr: "make: *** [all] Error 1"}, nil
		}
		return &process.Result{}, nil
	case call.Name == workspace.DefaultLayout.BenchBinary && call.IgnoreErrors:
		return &process.Result{Stdout: calibrationOutput, ExitCode: 134}, nil
	case call.Name == workspace.DefaultLayout.BenchBinary:
		return &process.Result{Stdout: benchmarkOutput}, nil
	case call.Name == workspace.DefaultLayout.ParamsBinary:
		return &process.Result{Stdout: paramsOutput}, nil
	}
	return &process.Result{ExitCode: 127, Stderr: "unexpected program " + call.Name}, nil
}

type (
	fakeCall   = processtest.Call
	fakeResult = process.Result
)
