package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perrors "pirbench/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExec re-executes the test binary as TestHelperProcess. The helper
// inherits the runner's environment, so HELPER_MODE selects its behavior.
func fakeExec(t *testing.T, mode string) *[]string {
	t.Helper()
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	t.Setenv("HELPER_MODE", mode)

	var calls []string
	orig := execCommandContext
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		calls = append(calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		return exec.CommandContext(ctx, os.Args[0], cs...)
	}
	t.Cleanup(func() { execCommandContext = orig })
	return &calls
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	switch os.Getenv("HELPER_MODE") {
	case "ok":
		fmt.Println("p = 1048576 = 2^20")
	case "env":
		wd, _ := os.Getwd()
		fmt.Println("dir=" + wd)
		fmt.Println("lib=" + os.Getenv(LibraryPathVar))
	case "fail":
		fmt.Println("partial output")
		fmt.Fprintln(os.Stderr, "fatal: out of memory")
		os.Exit(3)
	case "hang":
		time.Sleep(10 * time.Second)
	}
}

func TestRun_CapturesStdout(t *testing.T) {
	calls := fakeExec(t, "ok")
	root := t.TempDir()
	r := NewRunner(root, "bin/lib", 0)

	res, err := r.Run(context.Background(), "bin/demo/bench/preproc_pir_bench")
	require.NoError(t, err)
	assert.Equal(t, "p = 1048576 = 2^20\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.Abnormal())
	require.Len(t, *calls, 1)
	assert.Equal(t, filepath.Join(root, "bin/demo/bench/preproc_pir_bench"), (*calls)[0])
}

func TestRun_EnvironmentAndWorkingDir(t *testing.T) {
	fakeExec(t, "env")
	t.Setenv(LibraryPathVar, "/opt/existing")
	root := t.TempDir()
	r := NewRunner(root, "bin/lib", 0)

	res, err := r.Run(context.Background(), "bin/demo/scripts/params")
	require.NoError(t, err)

	wantRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "dir="+wantRoot)
	assert.Contains(t, res.Stdout, "lib="+filepath.Join(root, "bin/lib")+":/opt/existing")
}

func TestEnviron_NoPreviousValue(t *testing.T) {
	t.Setenv(LibraryPathVar, "")
	os.Unsetenv(LibraryPathVar)
	r := NewRunner("/proj", "bin/lib", 0)

	var lib []string
	for _, kv := range r.Environ() {
		if strings.HasPrefix(kv, LibraryPathVar+"=") {
			lib = append(lib, kv)
		}
	}
	assert.Equal(t, []string{LibraryPathVar + "=/proj/bin/lib"}, lib)
}

func TestRun_StrictFailure(t *testing.T) {
	fakeExec(t, "fail")
	r := NewRunner(t.TempDir(), "bin/lib", 0)

	res, err := r.Run(context.Background(), "bin/demo/scripts/params")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, perrors.CommandFailed, perrors.KindOf(err))
	assert.Contains(t, err.Error(), "fatal: out of memory")
}

func TestRun_IgnoreErrorsKeepsStdout(t *testing.T) {
	fakeExec(t, "fail")
	r := NewRunner(t.TempDir(), "bin/lib", 0)

	res, err := r.Run(context.Background(), "bin/demo/bench/preproc_pir_bench", IgnoreErrors())
	require.NoError(t, err)
	assert.Equal(t, "partial output\n", res.Stdout)
	assert.Equal(t, 3, res.ExitCode)
	assert.True(t, res.Abnormal())
}

func TestRun_LaunchFailure(t *testing.T) {
	r := NewRunner(t.TempDir(), "bin/lib", 0)

	_, err := r.Run(context.Background(), "bin/does/not/exist")
	require.Error(t, err)
	assert.Equal(t, perrors.LaunchFailure, perrors.KindOf(err))
}

func TestRun_Timeout(t *testing.T) {
	fakeExec(t, "hang")
	r := NewRunner(t.TempDir(), "bin/lib", 200*time.Millisecond)

	_, err := r.Run(context.Background(), "bin/demo/bench/preproc_pir_bench", IgnoreErrors())
	require.Error(t, err)
	assert.Equal(t, perrors.CommandFailed, perrors.KindOf(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestBuild_SplitsCommand(t *testing.T) {
	calls := fakeExec(t, "ok")
	r := NewRunner(t.TempDir(), "bin/lib", 0)

	_, err := r.Build(context.Background(), `make -j4 "CFLAGS=-O2 -g"`)
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, "make -j4 CFLAGS=-O2 -g", (*calls)[0])
}

func TestBuild_BadCommand(t *testing.T) {
	r := NewRunner(t.TempDir(), "bin/lib", 0)

	_, err := r.Build(context.Background(), `make "unterminated`)
	assert.Equal(t, perrors.LaunchFailure, perrors.KindOf(err))

	_, err = r.Build(context.Background(), "   ")
	assert.Equal(t, perrors.LaunchFailure, perrors.KindOf(err))
}
