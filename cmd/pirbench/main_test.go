package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"pirbench/internal/benchmark"
	"pirbench/internal/config"
	"pirbench/internal/paramfile"
	"pirbench/internal/process"
	"pirbench/internal/process/processtest"
	"pirbench/internal/workspace"
)

const (
	calibrationOutput = "Running with N = 20, d = 64\np = 1048576 = 2^20\n"
	benchmarkOutput   = "Global preprocessing (all clients): 2250.5 ms\nQuery: Server Comp (s) : 0.125\n"
	paramsOutput      = "Online State (KiB): client storage = 512.0\nQuery Up (KiB): online upload size = 4.0\n"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// testProject is a fake checkout wired into the command factories.
type testProject struct {
	root  string
	store string
	exec  *processtest.Executor

	failBuild   func(cfg benchmark.RunConfig) bool
	calibration string
}

func newTestProject(t *testing.T) *testProject {
	t.Helper()
	t.Chdir(t.TempDir())

	tp := &testProject{root: t.TempDir(), calibration: calibrationOutput}
	tp.store = filepath.Join(t.TempDir(), "runs.json")
	header := filepath.Join(tp.root, workspace.DefaultLayout.ParamsFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(header), 0755))
	require.NoError(t, os.WriteFile(header, []byte("#define N_VALUE 1\n#define D_VALUE 1\n#define BASIS_VALUE 1\n"), 0644))

	tp.exec = &processtest.Executor{Handler: tp.handle}

	t.Setenv("PIRBENCH_PROJECT_DIR", tp.root)
	t.Setenv("PIRBENCH_STORE_TYPE", "json")
	t.Setenv("PIRBENCH_STORE_DSN", tp.store)
	t.Setenv("SLACK_BOT_USER_TOKEN", "")

	origExecutor := newExecutor
	newExecutor = func(config.Settings) process.Executor { return tp.exec }
	t.Cleanup(func() { newExecutor = origExecutor })
	return tp
}

func (tp *testProject) handle(call processtest.Call) (*process.Result, error) {
	header, _ := os.ReadFile(filepath.Join(tp.root, workspace.DefaultLayout.ParamsFile))
	n, _ := paramfile.Lookup(header, paramfile.SizeExponentMacro)
	d, _ := paramfile.Lookup(header, paramfile.RecordSizeMacro)

	switch {
	case call.Build:
		if tp.failBuild != nil && tp.failBuild(benchmark.RunConfig{SizeExponent: n, RecordSize: d}) {
			return &process.Result{ExitCode: 2, Stderr: "make: *** [all] Error 1"}, nil
		}
		return &process.Result{}, nil
	case call.Name == workspace.DefaultLayout.BenchBinary && call.IgnoreErrors:
		return &process.Result{Stdout: tp.calibration, ExitCode: 1}, nil
	case call.Name == workspace.DefaultLayout.BenchBinary:
		return &process.Result{Stdout: benchmarkOutput}, nil
	case call.Name == workspace.DefaultLayout.ParamsBinary:
		return &process.Result{Stdout: paramsOutput}, nil
	}
	return &process.Result{ExitCode: 127}, nil
}

// executeCommand runs the root command with args and fresh flag values.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default; cobra keeps flag values
// between executions of the same command tree.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, sub := range rootCmd.Commands() {
		sub.Flags().VisitAll(reset)
	}
}
