package extract

import (
	"log/slog"
	"strconv"

	"pirbench/internal/benchmark"
	perrors "pirbench/internal/errors"
)

// Extract applies the table to both streams. Patterns that do not match are
// omitted; matches that are not numbers are dropped and reported as
// ExtractionFailure errors. It never fails as a whole.
func (t Table) Extract(raw benchmark.RawOutputPair) (benchmark.Metrics, []error) {
	metrics, errs := ExtractStream(t.Benchmark, raw.BenchmarkText)
	params, paramErrs := ExtractStream(t.Params, raw.ParamsText)

	for _, m := range params {
		metrics = metrics.Set(m.Name, m.Value)
	}
	return metrics, append(errs, paramErrs...)
}

// ExtractStream applies patterns to a single text stream.
func ExtractStream(patterns []Pattern, text string) (benchmark.Metrics, []error) {
	metrics := benchmark.Metrics{}
	var errs []error

	for _, p := range patterns {
		match := p.Expr.FindStringSubmatch(text)
		if match == nil || len(match) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			slog.Warn("dropping unparsable metric", "metric", p.Name, "text", match[1])
			errs = append(errs, perrors.New(perrors.ExtractionFailure, "extract."+p.Name, match[1], err))
			continue
		}
		metrics = metrics.Set(p.Name, value)
	}
	return metrics, errs
}
