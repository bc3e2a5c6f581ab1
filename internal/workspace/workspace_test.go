package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pirbench/internal/benchmark"
	"pirbench/internal/paramfile"
	"pirbench/internal/process"
	"pirbench/internal/process/processtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "#define N_VALUE 18\n#define D_VALUE 8\n#define BASIS_VALUE 10\n"

func newWorkspace(t *testing.T, exec process.Executor) *Workspace {
	t.Helper()
	root := t.TempDir()
	paramsPath := filepath.Join(root, DefaultLayout.ParamsFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(paramsPath), 0755))
	require.NoError(t, os.WriteFile(paramsPath, []byte(header), 0644))

	ws, err := New(root, DefaultLayout, exec)
	require.NoError(t, err)
	return ws
}

func readMacro(t *testing.T, ws *Workspace, name string) int {
	t.Helper()
	data, err := os.ReadFile(ws.Path(ws.Layout().ParamsFile))
	require.NoError(t, err)
	v, ok := paramfile.Lookup(data, name)
	require.True(t, ok)
	return v
}

func TestNew_MissingProject(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "VeriSimplePIR"), DefaultLayout, &processtest.Executor{})
	assert.ErrorIs(t, err, ErrProjectMissing)
}

func TestSession_HappyPath(t *testing.T) {
	fake := &processtest.Executor{}
	ws := newWorkspace(t, fake)
	ctx := context.Background()
	cfg := benchmark.RunConfig{SizeExponent: 20, RecordSize: 64}

	s, err := ws.Acquire(ctx, cfg)
	require.NoError(t, err)
	defer s.Release()
	assert.Equal(t, Unconfigured, s.State())

	require.NoError(t, s.Configure())
	assert.Equal(t, Uncalibrated, s.State())
	assert.Equal(t, 20, readMacro(t, ws, paramfile.SizeExponentMacro))
	assert.Equal(t, 64, readMacro(t, ws, paramfile.RecordSizeMacro))

	require.NoError(t, s.Build(ctx))
	_, err = s.RunCalibration(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Calibrate(benchmark.CalibratedBasis{Exponent: 20}))
	assert.Equal(t, Calibrated, s.State())
	assert.Equal(t, 20, s.Basis().Exponent)
	assert.False(t, s.Built(), "calibration invalidates the build")
	assert.Equal(t, 20, readMacro(t, ws, paramfile.BasisMacro))

	require.NoError(t, s.Build(ctx))
	_, err = s.RunMeasurement(ctx, DefaultLayout.BenchBinary)
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 4)
	assert.True(t, calls[0].Build)
	assert.Equal(t, DefaultLayout.BenchBinary, calls[1].Name)
	assert.True(t, calls[1].IgnoreErrors)
	assert.True(t, calls[2].Build)
	assert.False(t, calls[3].IgnoreErrors)
}

func TestSession_MeasurementRequiresCalibratedBuild(t *testing.T) {
	ws := newWorkspace(t, &processtest.Executor{})
	ctx := context.Background()

	s, err := ws.Acquire(ctx, benchmark.RunConfig{SizeExponent: 20, RecordSize: 64})
	require.NoError(t, err)
	defer s.Release()

	require.NoError(t, s.Configure())
	require.NoError(t, s.Build(ctx))

	// uncalibrated build
	_, err = s.RunMeasurement(ctx, DefaultLayout.BenchBinary)
	assert.Error(t, err)

	// calibrated but not rebuilt
	require.NoError(t, s.Calibrate(benchmark.CalibratedBasis{Exponent: 21}))
	_, err = s.RunMeasurement(ctx, DefaultLayout.BenchBinary)
	assert.Error(t, err)

	// no second calibration
	assert.Error(t, s.Calibrate(benchmark.CalibratedBasis{Exponent: 22}))
	// calibration run is only for uncalibrated builds
	require.NoError(t, s.Build(ctx))
	_, err = s.RunCalibration(ctx)
	assert.Error(t, err)
}

func TestSession_BuildBeforeConfigure(t *testing.T) {
	ws := newWorkspace(t, &processtest.Executor{})
	s, err := ws.Acquire(context.Background(), benchmark.RunConfig{SizeExponent: 20, RecordSize: 64})
	require.NoError(t, err)
	defer s.Release()

	assert.Error(t, s.Build(context.Background()))
	_, err = s.RunCalibration(context.Background())
	assert.Error(t, err)
}

func TestSession_FailedBuildIsNotBuilt(t *testing.T) {
	fake := &processtest.Executor{Handler: func(call processtest.Call) (*process.Result, error) {
		return &process.Result{ExitCode: 2, Stderr: "make: *** [all] Error 1"}, nil
	}}
	ws := newWorkspace(t, fake)
	ctx := context.Background()

	s, err := ws.Acquire(ctx, benchmark.RunConfig{SizeExponent: 20, RecordSize: 64})
	require.NoError(t, err)
	defer s.Release()

	require.NoError(t, s.Configure())
	assert.Error(t, s.Build(ctx))
	assert.False(t, s.Built())
}

func TestAcquire_Exclusive(t *testing.T) {
	ws := newWorkspace(t, &processtest.Executor{})
	cfg := benchmark.RunConfig{SizeExponent: 20, RecordSize: 64}

	first, err := ws.Acquire(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = ws.Acquire(ctx, cfg)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	first.Release()
	first.Release() // idempotent
	assert.Error(t, first.Configure(), "released session must not write")

	second, err := ws.Acquire(context.Background(), cfg)
	require.NoError(t, err)
	second.Release()
}
