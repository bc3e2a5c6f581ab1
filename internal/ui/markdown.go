package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"pirbench/internal/benchmark"
)

// RenderMarkdown renders markdown for the terminal. It falls back to the
// plain text when the renderer fails.
func RenderMarkdown(text string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}

// HistoryMarkdown builds a markdown report of stored runs: a summary table
// and one metrics table per run.
func HistoryMarkdown(records []benchmark.Record) string {
	var sb strings.Builder
	sb.WriteString("# Benchmark history\n\n")
	if len(records) == 0 {
		sb.WriteString("_No runs recorded._\n")
		return sb.String()
	}

	sb.WriteString("| Captured | N | d | Basis | Metrics |\n")
	sb.WriteString("|---|---:|---:|---:|---:|\n")
	for _, rec := range records {
		fmt.Fprintf(&sb, "| %s | %d | %d | %d | %d |\n",
			rec.CapturedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Config.SizeExponent, rec.Config.RecordSize, rec.Basis, len(rec.Metrics))
	}

	for _, rec := range records {
		fmt.Fprintf(&sb, "\n## %s, %s\n\n", rec.Config, rec.CapturedAt.Local().Format("2006-01-02 15:04:05"))
		if len(rec.Metrics) == 0 {
			sb.WriteString("_No metrics recognized._\n")
			continue
		}
		sb.WriteString("| Metric | Value |\n|---|---:|\n")
		for _, m := range rec.Metrics {
			fmt.Fprintf(&sb, "| %s | %s |\n", escapeCell(m.Name), benchmark.FormatValue(m.Value))
		}
		if rec.RawLogPath != "" {
			fmt.Fprintf(&sb, "\nRaw log: `%s`\n", rec.RawLogPath)
		}
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
