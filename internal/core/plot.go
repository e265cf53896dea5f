package core

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// PlotOptions controls chart rendering. Zero values fall back to the
// defaults below.
type PlotOptions struct {
	Width     int
	Height    int
	MaxPoints int // series longer than this are bucket-averaged down
}

const (
	defaultPlotWidth  = 1000
	defaultPlotHeight = 420
	defaultMaxPoints  = 2000
)

// timeAxisCandidates are column names checked for a time X axis, in order.
var timeAxisCandidates = []string{"timestamp", "time", "datetime", "date"}

// renderLinePlot draws column as a line chart and returns the encoded PNG.
// The X axis is the dataset's timestamp column when one exists and parses,
// otherwise the row index.
func renderLinePlot(d *Dataset, column string, opts PlotOptions) ([]byte, error) {
	if opts.Width <= 0 {
		opts.Width = defaultPlotWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultPlotHeight
	}
	if opts.MaxPoints <= 0 {
		opts.MaxPoints = defaultMaxPoints
	}

	ys, ok := d.NumericColumn(column)
	if !ok {
		return nil, &ColumnNotFoundError{Field: column, Aliases: []string{column}}
	}

	lineStyle := chart.Style{
		StrokeColor: drawing.ColorBlue,
		StrokeWidth: 1.5,
	}

	var series chart.Series
	var xAxis chart.XAxis

	if times, ok := timeAxis(d); ok {
		xs, cleanYs := dropMissingTimes(times, ys)
		if len(cleanYs) < 2 {
			return nil, ErrTooFewPoints
		}
		xs, cleanYs = downsampleTimes(xs, cleanYs, opts.MaxPoints)
		series = chart.TimeSeries{Name: column, XValues: xs, YValues: cleanYs, Style: lineStyle}
		xAxis = chart.XAxis{
			Name:           "time",
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04:05"),
		}
	} else {
		xs, cleanYs := indexAxis(ys)
		if len(cleanYs) < 2 {
			return nil, ErrTooFewPoints
		}
		xs, cleanYs = downsample(xs, cleanYs, opts.MaxPoints)
		series = chart.ContinuousSeries{Name: column, XValues: xs, YValues: cleanYs, Style: lineStyle}
		xAxis = chart.XAxis{Name: "sample"}
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("%s (%s)", column, d.SourceFile),
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 12}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: column},
		Series:     []chart.Series{series},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// timeAxis locates a timestamp-like column and parses it. It succeeds when
// at least 80% of the cells parse as times.
func timeAxis(d *Dataset) ([]time.Time, bool) {
	for _, cand := range timeAxisCandidates {
		cells, ok := d.Column(cand)
		if !ok {
			continue
		}
		times := make([]time.Time, len(cells))
		var parsed int
		for i, cell := range cells {
			t, err := parseCellTime(cell)
			if err != nil {
				continue
			}
			times[i] = t
			parsed++
		}
		if len(cells) > 0 && float64(parsed)/float64(len(cells)) >= 0.8 {
			return times, true
		}
	}
	return nil, false
}

// cellTimeLayouts are tried in order when parsing a timestamp cell.
var cellTimeLayouts = []string{
	logTimestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"15:04:05.000",
	"15:04:05",
}

func parseCellTime(cell string) (time.Time, error) {
	cell = strings.Replace(strings.TrimSpace(cell), ",", ".", 1)
	for _, layout := range cellTimeLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", cell)
}

// dropMissingTimes removes points whose Y is NaN or whose time failed to
// parse (zero value), keeping X and Y aligned.
func dropMissingTimes(times []time.Time, ys []float64) ([]time.Time, []float64) {
	outX := make([]time.Time, 0, len(ys))
	outY := make([]float64, 0, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) || times[i].IsZero() {
			continue
		}
		outX = append(outX, times[i])
		outY = append(outY, y)
	}
	return outX, outY
}

// indexAxis builds a 0..n-1 X axis over the non-missing Y values.
func indexAxis(ys []float64) ([]float64, []float64) {
	outX := make([]float64, 0, len(ys))
	outY := make([]float64, 0, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) {
			continue
		}
		outX = append(outX, float64(i))
		outY = append(outY, y)
	}
	return outX, outY
}

// downsample reduces a series to at most maxPoints by averaging fixed-size
// buckets. The bucket's first X represents the bucket.
func downsample(xs, ys []float64, maxPoints int) ([]float64, []float64) {
	if len(ys) <= maxPoints {
		return xs, ys
	}
	bucket := (len(ys) + maxPoints - 1) / maxPoints
	outX := make([]float64, 0, maxPoints)
	outY := make([]float64, 0, maxPoints)
	for i := 0; i < len(ys); i += bucket {
		end := i + bucket
		if end > len(ys) {
			end = len(ys)
		}
		outX = append(outX, xs[i])
		outY = append(outY, mean(ys[i:end]))
	}
	return outX, outY
}

func downsampleTimes(xs []time.Time, ys []float64, maxPoints int) ([]time.Time, []float64) {
	if len(ys) <= maxPoints {
		return xs, ys
	}
	bucket := (len(ys) + maxPoints - 1) / maxPoints
	outX := make([]time.Time, 0, maxPoints)
	outY := make([]float64, 0, maxPoints)
	for i := 0; i < len(ys); i += bucket {
		end := i + bucket
		if end > len(ys) {
			end = len(ys)
		}
		outX = append(outX, xs[i])
		outY = append(outY, mean(ys[i:end]))
	}
	return outX, outY
}
