package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pirbench/internal/benchmark"
)

// TimestampLayout is the capture timestamp embedded in artifact names.
const TimestampLayout = "20060102_150405"

const (
	RawLogKind     = "run_log"
	MetricsLogKind = "parsed_metrics"
)

// openFile allows mocking in tests.
var openFile = os.OpenFile

// Artifacts are the files written for one run.
type Artifacts struct {
	RawLog     string
	MetricsLog string
	CapturedAt time.Time
}

// LogWriter persists raw output and parsed metrics under Dir.
type LogWriter struct {
	Dir string
	Now func() time.Time
}

// NewLogWriter creates a LogWriter using the wall clock.
func NewLogWriter(dir string) *LogWriter {
	return &LogWriter{Dir: dir, Now: time.Now}
}

// ArtifactName returns `<kind>_N<exp>_d<size>_<timestamp>.txt`.
func ArtifactName(kind string, cfg benchmark.RunConfig, at time.Time) string {
	return fmt.Sprintf("%s_N%d_d%d_%s.txt", kind, cfg.SizeExponent, cfg.RecordSize, at.Format(TimestampLayout))
}

// RawLog renders both streams with section labels.
func RawLog(raw benchmark.RawOutputPair) string {
	var sb strings.Builder
	sb.WriteString("=== preproc_pir_bench output ===\n")
	sb.WriteString(raw.BenchmarkText)
	sb.WriteString("\n\n=== params output ===\n")
	sb.WriteString(raw.ParamsText)
	return sb.String()
}

// MetricsLog renders the parsed metrics dump.
func MetricsLog(metrics benchmark.Metrics) string {
	return "Parsed Metrics:\n" + metrics.Dump()
}

// Persist writes the raw and parsed artifacts. It writes both even when
// metrics is empty and never replaces an existing file.
func (w *LogWriter) Persist(cfg benchmark.RunConfig, raw benchmark.RawOutputPair, metrics benchmark.Metrics) (Artifacts, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return Artifacts{}, fmt.Errorf("failed to create logs directory %s: %w", w.Dir, err)
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	at := now()

	rawName := ArtifactName(RawLogKind, cfg, at)
	metricsName := ArtifactName(MetricsLogKind, cfg, at)
	rawText, metricsText := RawLog(raw), MetricsLog(metrics)

	for i := 0; ; i++ {
		rawPath, err := w.create(withSuffix(rawName, i), rawText)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return Artifacts{}, err
		}

		metricsPath, err := w.create(withSuffix(metricsName, i), metricsText)
		if errors.Is(err, fs.ErrExist) {
			// keep the pair under one suffix
			os.Remove(rawPath)
			continue
		}
		if err != nil {
			os.Remove(rawPath)
			return Artifacts{}, err
		}
		return Artifacts{RawLog: rawPath, MetricsLog: metricsPath, CapturedAt: at}, nil
	}
}

// withSuffix adds `_<i>` before the extension for i > 0.
func withSuffix(name string, i int) string {
	if i == 0 {
		return name
	}
	return fmt.Sprintf("%s_%d.txt", strings.TrimSuffix(name, ".txt"), i)
}

// create writes content to a new file; it fails with fs.ErrExist rather
// than replace an existing one.
func (w *LogWriter) create(name, content string) (string, error) {
	path := filepath.Join(w.Dir, name)

	f, err := openFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", err
		}
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
