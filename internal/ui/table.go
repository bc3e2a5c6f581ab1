package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pirbench/internal/benchmark"
	"pirbench/internal/extract"
)

const missingValue = "-"

// table lays out rows under headers. The first column is left aligned,
// every other column right aligned.
type table struct {
	headers []string
	rows    [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) String() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var sb strings.Builder
	render := func(cells []string, style func(col int) lipgloss.Style) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			align := lipgloss.Right
			if i == 0 {
				align = lipgloss.Left
			}
			parts[i] = style(i).Width(widths[i]).Align(align).Render(cell)
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		sb.WriteString("\n")
	}

	render(t.headers, func(int) lipgloss.Style { return columnStyle })
	total := 0
	for _, w := range widths {
		total += w
	}
	sb.WriteString(mutedStyle.Render(strings.Repeat("─", total+2*(len(widths)-1))))
	sb.WriteString("\n")
	for _, row := range t.rows {
		render(row, func(col int) lipgloss.Style {
			if col == 0 {
				return labelStyle
			}
			return valueStyle
		})
	}
	return sb.String()
}

// RenderRecord renders the metrics of a single run.
func RenderRecord(rec benchmark.Record) string {
	t := &table{headers: []string{"Metric", "Value"}}
	for _, m := range rec.Metrics {
		t.add(m.Name, benchmark.FormatValue(m.Value))
	}

	title := fmt.Sprintf("%s (basis 2^%d)", rec.Config, rec.Basis)
	var sb strings.Builder
	sb.WriteString(Header(title))
	sb.WriteString("\n")
	if len(rec.Metrics) == 0 {
		sb.WriteString(WarnBanner("no metrics recognized"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(t.String())
	}
	if rec.RawLogPath != "" {
		sb.WriteString(mutedStyle.Render("log: " + rec.RawLogPath))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderBatch renders one column per successful configuration and one row
// per metric, N and d first. Metrics a run did not report show as "-".
func RenderBatch(result benchmark.BatchResult) string {
	var sb strings.Builder
	sb.WriteString(Header("Batch results"))
	sb.WriteString("\n")

	if len(result.Records) > 0 {
		headers := []string{"Metric"}
		tagged := make([]benchmark.Metrics, len(result.Records))
		for i, rec := range result.Records {
			headers = append(headers, fmt.Sprintf("#%d", i+1))
			tagged[i] = rec.Tagged()
		}

		t := &table{headers: headers}
		for _, name := range metricNames(tagged) {
			row := []string{name}
			for _, m := range tagged {
				if v, ok := m.Get(name); ok {
					row = append(row, benchmark.FormatValue(v))
				} else {
					row = append(row, missingValue)
				}
			}
			t.add(row...)
		}
		sb.WriteString(t.String())
	}

	if len(result.Failures) > 0 {
		sb.WriteString(FailureBanner(fmt.Sprintf("%d configuration(s) skipped", len(result.Failures))))
		sb.WriteString("\n")
		for _, f := range result.Failures {
			fmt.Fprintf(&sb, "  %s: %v\n", f.Config, f.Err)
		}
	}
	return sb.String()
}

// metricNames returns N and d, then every other metric in first-seen order.
func metricNames(all []benchmark.Metrics) []string {
	names := []string{benchmark.SizeExponentKey, benchmark.RecordSizeKey}
	seen := map[string]bool{benchmark.SizeExponentKey: true, benchmark.RecordSizeKey: true}
	for _, m := range all {
		for _, metric := range m {
			if !seen[metric.Name] {
				seen[metric.Name] = true
				names = append(names, metric.Name)
			}
		}
	}
	return names
}

// RenderHistory lists stored runs, newest first.
func RenderHistory(records []benchmark.Record) string {
	if len(records) == 0 {
		return mutedStyle.Render("No runs recorded.") + "\n"
	}
	t := &table{headers: []string{"Captured", "N", "d", "Basis", "Metrics", "ID"}}
	for _, rec := range records {
		t.add(
			rec.CapturedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprint(rec.Config.SizeExponent),
			fmt.Sprint(rec.Config.RecordSize),
			fmt.Sprint(rec.Basis),
			fmt.Sprint(len(rec.Metrics)),
			rec.ID.String()[:8],
		)
	}
	return t.String()
}

// RenderComparison renders the change between two runs of one config.
func RenderComparison(prev, curr benchmark.Record, cmp []benchmark.Comparison) string {
	var sb strings.Builder
	sb.WriteString(Header(fmt.Sprintf("%s: %s -> %s", curr.Config,
		prev.CapturedAt.Local().Format("2006-01-02 15:04"), curr.CapturedAt.Local().Format("2006-01-02 15:04"))))
	sb.WriteString("\n")

	t := &table{headers: []string{"Metric", "Previous", "Current", "Change"}}
	for _, c := range cmp {
		t.add(c.Name, benchmark.FormatValue(c.Prev), benchmark.FormatValue(c.Curr), formatChange(c.PercentDiff))
	}
	sb.WriteString(t.String())
	return sb.String()
}

func formatChange(pct float64) string {
	s := fmt.Sprintf("%+.2f%%", pct)
	switch {
	case pct > 0:
		return warnStyle.Render(s)
	case pct < 0:
		return successStyle.Render(s)
	}
	return s
}

// RenderPatterns lists the extraction table, one row per metric.
func RenderPatterns(t extract.Table) string {
	var sb strings.Builder
	sb.WriteString(Header("Pattern table " + t.Version))
	sb.WriteString("\n")

	for _, section := range []struct {
		stream   string
		patterns []extract.Pattern
	}{
		{"benchmark", t.Benchmark},
		{"params", t.Params},
	} {
		tbl := &table{headers: []string{"Metric (" + section.stream + ")", "Pattern"}}
		for _, p := range section.patterns {
			tbl.add(p.Name, p.Expr.String())
		}
		sb.WriteString(tbl.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
