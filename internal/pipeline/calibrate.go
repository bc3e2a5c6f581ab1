package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"pirbench/internal/benchmark"
	perrors "pirbench/internal/errors"
	"pirbench/internal/workspace"
)

// basisLine matches the modulus report of the benchmark binary,
// e.g. `p = 1048576 = 2^20`.
var basisLine = regexp.MustCompile(`p = \d+ = 2\^(\d+)`)

// ParseBasis returns the exponent of the first modulus report in text.
// A zero exponent is not a usable basis and counts as no report.
func ParseBasis(text string) (int, bool) {
	match := basisLine.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	exp, err := strconv.Atoi(match[1])
	if err != nil || exp == 0 {
		return 0, false
	}
	return exp, true
}

// Calibrate runs the benchmark binary against the uncalibrated build and
// reads the basis exponent from its output. The binary usually fails at
// this point; its exit status only matters when no basis was printed.
func Calibrate(ctx context.Context, s *workspace.Session, logger *slog.Logger) (benchmark.CalibratedBasis, error) {
	const op = "calibrate"

	res, err := s.RunCalibration(ctx)
	if err != nil {
		return benchmark.CalibratedBasis{}, err
	}

	if strings.TrimSpace(res.Stdout) == "" {
		return benchmark.CalibratedBasis{}, perrors.New(perrors.CalibrationUnavailable, op,
			"benchmark produced no output: "+strings.TrimSpace(res.Stderr), nil)
	}

	exp, ok := ParseBasis(res.Stdout)
	if !ok {
		if res.Signaled {
			return benchmark.CalibratedBasis{}, perrors.New(perrors.CalibrationUnavailable, op,
				"benchmark was killed before reporting a basis: "+strings.TrimSpace(res.Stderr), nil)
		}
		return benchmark.CalibratedBasis{}, perrors.New(perrors.BasisNotFound, op,
			"no `p = <int> = 2^<exp>` line with a non-zero exponent in benchmark output", nil)
	}

	if res.Abnormal() {
		logger.Warn("calibration run ended abnormally, basis recovered",
			"exit_code", res.ExitCode, "signaled", res.Signaled, "basis", exp)
	}
	return benchmark.CalibratedBasis{Exponent: exp}, nil
}
