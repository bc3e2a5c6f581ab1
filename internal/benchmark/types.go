package benchmark

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tag keys added to a metrics record when it is folded into a batch result.
const (
	SizeExponentKey = "N"
	RecordSizeKey   = "d"
)

// RunConfig is one point in the (size exponent, record size) space.
type RunConfig struct {
	SizeExponent int `json:"n"`
	RecordSize   int `json:"d"`
}

func (c RunConfig) String() string {
	return fmt.Sprintf("N=%d, d=%d", c.SizeExponent, c.RecordSize)
}

// Validate rejects configurations the benchmark build cannot represent.
func (c RunConfig) Validate() error {
	if c.SizeExponent < 1 || c.SizeExponent > 62 {
		return fmt.Errorf("size exponent must be between 1 and 62, got %d", c.SizeExponent)
	}
	if c.RecordSize < 1 {
		return fmt.Errorf("record size must be positive, got %d", c.RecordSize)
	}
	return nil
}

// DefaultBatch is the built-in batch plan.
var DefaultBatch = []RunConfig{
	{SizeExponent: 20, RecordSize: 64},
	{SizeExponent: 20, RecordSize: 2048},
	{SizeExponent: 26, RecordSize: 64},
	{SizeExponent: 30, RecordSize: 8},
	{SizeExponent: 18, RecordSize: 262144},
}

// CalibratedBasis is the power-of-two exponent discovered by calibration.
type CalibratedBasis struct {
	Exponent int `json:"exponent"`
}

// RawOutputPair holds the two captured streams of a measurement pass.
type RawOutputPair struct {
	BenchmarkText string
	ParamsText    string
}

// Metric is one named numeric value.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Metrics is an ordered metrics record. Names are unique.
type Metrics []Metric

// Get returns the value stored under name.
func (m Metrics) Get(name string) (float64, bool) {
	for _, metric := range m {
		if metric.Name == name {
			return metric.Value, true
		}
	}
	return 0, false
}

// Set stores value under name, keeping the original position of an
// existing entry.
func (m Metrics) Set(name string, value float64) Metrics {
	for i := range m {
		if m[i].Name == name {
			m[i].Value = value
			return m
		}
	}
	return append(m, Metric{Name: name, Value: value})
}

// Map returns the record as a plain map.
func (m Metrics) Map() map[string]float64 {
	out := make(map[string]float64, len(m))
	for _, metric := range m {
		out[metric.Name] = metric.Value
	}
	return out
}

// Dump renders one `name: value` line per metric.
func (m Metrics) Dump() string {
	var sb strings.Builder
	for _, metric := range m {
		fmt.Fprintf(&sb, "%s: %s\n", metric.Name, FormatValue(metric.Value))
	}
	return sb.String()
}

// FormatValue renders a float the way the benchmark logs always have:
// shortest representation, integral values keep a trailing ".0".
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Record is one completed run.
type Record struct {
	ID             uuid.UUID `json:"id"`
	Config         RunConfig `json:"config"`
	Basis          int       `json:"basis"`
	Metrics        Metrics   `json:"metrics"`
	CapturedAt     time.Time `json:"captured_at"`
	RawLogPath     string    `json:"raw_log_path,omitempty"`
	MetricsLogPath string    `json:"metrics_log_path,omitempty"`
}

// NewRecord creates a record with a fresh identifier.
func NewRecord(cfg RunConfig, basis int, metrics Metrics, capturedAt time.Time) Record {
	return Record{
		ID:         uuid.New(),
		Config:     cfg,
		Basis:      basis,
		Metrics:    metrics,
		CapturedAt: capturedAt,
	}
}

// Tagged returns the metrics extended with the run's N and d.
func (r Record) Tagged() Metrics {
	out := make(Metrics, 0, len(r.Metrics)+2)
	out = append(out, r.Metrics...)
	out = out.Set(SizeExponentKey, float64(r.Config.SizeExponent))
	out = out.Set(RecordSizeKey, float64(r.Config.RecordSize))
	return out
}

// Failure is a configuration that did not produce a record.
type Failure struct {
	Config RunConfig
	Err    error
}

// BatchResult holds the records of the successful configurations, in the
// order they were run, and the configurations that were skipped.
type BatchResult struct {
	Records  []Record
	Failures []Failure
}
