package benchmark

import "fmt"

type Comparison struct {
	Name        string
	Prev        float64
	Curr        float64
	PercentDiff float64 // (curr-prev)/prev*100, zero when prev is zero
}

// Compare runs comparison between two records.
// It returns a list of comparisons for metrics present in both, in curr's order.
func Compare(prev, curr Record) []Comparison {
	prevMap := prev.Metrics.Map()

	var comparisons []Comparison
	for _, c := range curr.Metrics {
		p, ok := prevMap[c.Name]
		if !ok {
			continue
		}
		comp := Comparison{
			Name: c.Name,
			Prev: p,
			Curr: c.Value,
		}
		if p != 0 {
			comp.PercentDiff = (c.Value - p) / p * 100
		}
		comparisons = append(comparisons, comp)
	}
	return comparisons
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s: %s -> %s (%+.2f%%)", c.Name, FormatValue(c.Prev), FormatValue(c.Curr), c.PercentDiff)
}
