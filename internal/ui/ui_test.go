package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pirbench/internal/benchmark"
	"pirbench/internal/extract"
)

func init() {
	// Plain output so layouts can be compared as text
	lipgloss.SetColorProfile(termenv.Ascii)
}

var captured = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func sampleRecord() benchmark.Record {
	rec := benchmark.NewRecord(benchmark.RunConfig{SizeExponent: 20, RecordSize: 64}, 20, benchmark.Metrics{
		{Name: "Query: Server Comp (s)", Value: 0.125},
		{Name: "Query Up (KiB)", Value: 4},
		{Name: "Online State (KiB)", Value: 512},
	}, captured)
	rec.RawLogPath = "metrics/logs/run_log_N20_d64_20261017_093000.txt"
	return rec
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestRenderRecord(t *testing.T) {
	out := RenderRecord(sampleRecord())

	assert.Contains(t, out, "N=20, d=64 (basis 2^20)")
	assert.Contains(t, out, "Query Up (KiB)")
	assert.Contains(t, out, "512.0")
	assert.Contains(t, out, "log: metrics/logs/run_log_N20_d64_20261017_093000.txt")

	// values are right aligned in one column
	var valueEnds []int
	for _, l := range lines(out) {
		if strings.HasPrefix(l, "Query") || strings.HasPrefix(l, "Online") {
			valueEnds = append(valueEnds, len(l))
		}
	}
	require.Len(t, valueEnds, 3)
	assert.Equal(t, valueEnds[0], valueEnds[1])
	assert.Equal(t, valueEnds[1], valueEnds[2])
}

func TestRenderRecord_NoMetrics(t *testing.T) {
	rec := benchmark.NewRecord(benchmark.RunConfig{SizeExponent: 30, RecordSize: 8}, 25, nil, captured)
	out := RenderRecord(rec)
	assert.Contains(t, out, "no metrics recognized")
	assert.NotContains(t, out, "Metric")
}

func TestRenderBatch(t *testing.T) {
	first := sampleRecord()
	second := benchmark.NewRecord(benchmark.RunConfig{SizeExponent: 26, RecordSize: 64}, 23,
		benchmark.Metrics{{Name: "Query Up (KiB)", Value: 32}, {Name: "Hints (MiB)", Value: 12.5}}, captured)

	out := RenderBatch(benchmark.BatchResult{
		Records:  []benchmark.Record{first, second},
		Failures: []benchmark.Failure{{Config: benchmark.RunConfig{SizeExponent: 30, RecordSize: 8}, Err: errors.New("build: CommandFailed")}},
	})

	rows := map[string]string{}
	for _, l := range lines(out) {
		fields := strings.Fields(l)
		if len(fields) > 0 {
			rows[fields[0]] = l
		}
	}
	assert.Regexp(t, `^N\s+20\.0\s+26\.0$`, rows["N"])
	assert.Regexp(t, `^d\s+64\.0\s+64\.0$`, rows["d"])
	assert.Regexp(t, `^Hints \(MiB\)\s+-\s+12\.5$`, rows["Hints"])
	assert.Contains(t, out, "1 configuration(s) skipped")
	assert.Contains(t, out, "N=30, d=8: build: CommandFailed")

	// N and d lead, then first-seen order
	assert.Less(t, strings.Index(out, "\nd "), strings.Index(out, "Query: Server Comp"))
	assert.Less(t, strings.Index(out, "Online State"), strings.Index(out, "Hints"))
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, RenderHistory(nil), "No runs recorded.")

	rec := sampleRecord()
	out := RenderHistory([]benchmark.Record{rec})
	assert.Contains(t, out, rec.ID.String()[:8])
	assert.Contains(t, out, "Captured")
	require.Len(t, lines(out), 3)
}

func TestRenderComparison(t *testing.T) {
	prev := sampleRecord()
	curr := sampleRecord()
	curr.Metrics = benchmark.Metrics{{Name: "Query Up (KiB)", Value: 5}}
	curr.CapturedAt = captured.Add(time.Hour)

	out := RenderComparison(prev, curr, benchmark.Compare(prev, curr))
	assert.Contains(t, out, "Previous")
	assert.Regexp(t, `Query Up \(KiB\)\s+4\.0\s+5\.0\s+\+25\.00%`, out)
}

func TestHistoryMarkdown(t *testing.T) {
	assert.Contains(t, HistoryMarkdown(nil), "_No runs recorded._")

	rec := sampleRecord()
	md := HistoryMarkdown([]benchmark.Record{rec})
	assert.Contains(t, md, "# Benchmark history")
	assert.Contains(t, md, "| 20 | 64 | 20 | 3 |")
	assert.Contains(t, md, "| Query Up (KiB) | 4.0 |")
	assert.Contains(t, md, "Raw log: `metrics/logs/run_log_N20_d64_20261017_093000.txt`")
}

func TestRenderMarkdown(t *testing.T) {
	output := RenderMarkdown("# Hello", 80)
	// Glamour usually adds ANSI codes. We check if output is not empty and contains "Hello"
	if len(output) == 0 {
		t.Error("RenderMarkdown returned empty string")
	}
	if !strings.Contains(output, "Hello") {
		t.Error("RenderMarkdown output missing content")
	}
}

func TestBanners(t *testing.T) {
	assert.Equal(t, "✔ done", SuccessBanner("done"))
	assert.Equal(t, "✘ Failed to collect metrics", FailureBanner("Failed to collect metrics"))
}

func TestRenderPatterns(t *testing.T) {
	out := RenderPatterns(extract.DefaultTable)
	assert.Contains(t, out, "Pattern table v1")
	assert.Contains(t, out, "Metric (benchmark)")
	assert.Contains(t, out, "Metric (params)")
	assert.Contains(t, out, `Hints \(MiB\): hint download = ([\d.]+)`)
	for _, name := range extract.DefaultTable.Names() {
		assert.Contains(t, out, name)
	}
}
