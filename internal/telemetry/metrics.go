package telemetry

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects pipeline instrumentation on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	StageDuration *prometheus.HistogramVec
	StageFailures *prometheus.CounterVec
	Runs          *prometheus.CounterVec
	MetricValue   *prometheus.GaugeVec
}

// NewMetrics creates and registers all pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pirbench_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
		},
		[]string{"stage"},
	)

	m.StageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pirbench_stage_failures_total",
			Help: "Total number of failed pipeline stages",
		},
		[]string{"stage", "kind"},
	)

	m.Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pirbench_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	m.MetricValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pirbench_metric_value",
			Help: "Last extracted value of each benchmark metric",
		},
		[]string{"metric", "n", "d"},
	)

	m.Registry.MustRegister(
		m.StageDuration,
		m.StageFailures,
		m.Runs,
		m.MetricValue,
	)

	return m
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// StageFailed counts a failed stage.
func (m *Metrics) StageFailed(stage, kind string) {
	if m == nil {
		return
	}
	m.StageFailures.WithLabelValues(stage, kind).Inc()
}

// RunFinished counts a finished pipeline run.
func (m *Metrics) RunFinished(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.Runs.WithLabelValues(outcome).Inc()
}

// SetMetricValue exports an extracted value.
func (m *Metrics) SetMetricValue(name string, n, d int, value float64) {
	if m == nil {
		return
	}
	m.MetricValue.WithLabelValues(name, strconv.Itoa(n), strconv.Itoa(d)).Set(value)
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// StartMetricsServer starts a HTTP server exposing Prometheus metrics.
func StartMetricsServer(port int, m *Metrics) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	addr := fmt.Sprintf(":%d", port)
	LogInfof("Starting metrics server on %s", addr)
	return http.ListenAndServe(addr, mux)
}
