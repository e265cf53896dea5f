package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Describe computes descriptive statistics for every numeric column of the
// Dataset, in table order. Columns whose values are all missing are skipped.
func Describe(d *Dataset) []ColumnStats {
	var out []ColumnStats
	for _, name := range d.NumericColumns() {
		values, _ := d.NumericColumn(name)

		// Drop NaNs once; every statistic below runs on clean values.
		clean := make([]float64, 0, len(values))
		for _, v := range values {
			if !math.IsNaN(v) {
				clean = append(clean, v)
			}
		}
		if len(clean) == 0 {
			continue
		}

		out = append(out, ColumnStats{
			Column: name,
			Count:  len(clean),
			Mean:   mean(clean),
			Std:    stddev(clean),
			Min:    minOf(clean),
			P25:    percentile(clean, 25),
			P50:    percentile(clean, 50),
			P75:    percentile(clean, 75),
			Max:    maxOf(clean),
		})
	}
	return out
}

// renderDescription formats the stats as a fixed-width display table,
// one row per statistic and one column per numeric field.
func renderDescription(stats []ColumnStats) string {
	if len(stats) == 0 {
		return "no numeric columns"
	}

	labels := []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	cell := func(s ColumnStats, label string) string {
		switch label {
		case "count":
			return fmt.Sprintf("%d", s.Count)
		case "mean":
			return formatStat(s.Mean)
		case "std":
			return formatStat(s.Std)
		case "min":
			return formatStat(s.Min)
		case "25%":
			return formatStat(s.P25)
		case "50%":
			return formatStat(s.P50)
		case "75%":
			return formatStat(s.P75)
		default:
			return formatStat(s.Max)
		}
	}

	// Column widths: max of header and every value in that column.
	widths := make([]int, len(stats))
	for i, s := range stats {
		widths[i] = len(s.Column)
		for _, label := range labels {
			if n := len(cell(s, label)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	labelWidth := len("count")
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", labelWidth, "")
	for i, s := range stats {
		fmt.Fprintf(&b, "  %*s", widths[i], s.Column)
	}
	b.WriteByte('\n')

	for _, label := range labels {
		fmt.Fprintf(&b, "%-*s", labelWidth, label)
		for i, s := range stats {
			fmt.Fprintf(&b, "  %*s", widths[i], cell(s, label))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatStat(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

func mean(a []float64) float64 {
	var sum float64
	for _, v := range a {
		sum += v
	}
	return sum / float64(len(a))
}

// stddev is the sample standard deviation (n-1 denominator); it returns 0
// for a single value.
func stddev(a []float64) float64 {
	if len(a) < 2 {
		return 0
	}
	m := mean(a)
	var sum float64
	for _, v := range a {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(a)-1))
}

func minOf(a []float64) float64 {
	m := a[0]
	for _, v := range a[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(a []float64) float64 {
	m := a[0]
	for _, v := range a[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// percentile uses the nearest-rank method on a sorted copy.
func percentile(a []float64, p float64) float64 {
	cp := append([]float64(nil), a...)
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 100 {
		return cp[len(cp)-1]
	}
	idx := int(math.Ceil(p/100*float64(len(cp)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(cp) {
		idx = len(cp) - 1
	}
	return cp[idx]
}
