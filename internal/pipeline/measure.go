package pipeline

import (
	"context"
	"strings"

	"pirbench/internal/benchmark"
	perrors "pirbench/internal/errors"
	"pirbench/internal/workspace"
)

// Measure runs the benchmark binary and then the params binary against the
// calibrated build. Both must succeed with output; nothing is returned
// otherwise.
func Measure(ctx context.Context, s *workspace.Session) (benchmark.RawOutputPair, error) {
	layout := s.Layout()

	bench, err := measureStage(ctx, s, "benchmark", layout.BenchBinary)
	if err != nil {
		return benchmark.RawOutputPair{}, err
	}
	params, err := measureStage(ctx, s, "params", layout.ParamsBinary)
	if err != nil {
		return benchmark.RawOutputPair{}, err
	}
	return benchmark.RawOutputPair{BenchmarkText: bench, ParamsText: params}, nil
}

func measureStage(ctx context.Context, s *workspace.Session, stage, program string) (string, error) {
	res, err := s.RunMeasurement(ctx, program)
	if err != nil {
		return "", perrors.New(perrors.MeasurementFailed, "measure", stage, err)
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return "", perrors.New(perrors.MeasurementFailed, "measure", stage+": empty output", nil)
	}
	return res.Stdout, nil
}
