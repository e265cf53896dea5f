package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// numericThreshold is the fraction of non-empty cells that must parse as
// floats for a column to be treated as numeric.
const numericThreshold = 0.8

// maxCellWidth caps cell width when rendering preview and summary tables.
const maxCellWidth = 24

// newDataset builds a Dataset from a header and row-major cells.
// Duplicate column names are disambiguated with a numeric suffix, and every
// row is padded or truncated to the header width so accessors never have to
// bounds-check.
func newDataset(source string, columns []string, rows [][]string) *Dataset {
	columns = dedupeColumns(columns)

	aligned := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) == len(columns) {
			aligned[i] = row
			continue
		}
		cells := make([]string, len(columns))
		copy(cells, row)
		aligned[i] = cells
	}

	ds := &Dataset{
		ID:         uuid.New(),
		SourceFile: source,
		LoadedAt:   time.Now(),
		columns:    columns,
		rows:       aligned,
		numeric:    make(map[string][]float64),
	}
	ds.inferNumericColumns()
	return ds
}

// dedupeColumns makes column names unique while preserving order:
// alt, alt, alt becomes alt, alt_2, alt_3.
func dedupeColumns(columns []string) []string {
	seen := make(map[string]int, len(columns))
	out := make([]string, len(columns))
	for i, name := range columns {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		key := strings.ToLower(name)
		seen[key]++
		if n := seen[key]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		out[i] = name
	}
	return out
}

// inferNumericColumns builds the float view for columns where more than
// numericThreshold of the non-empty cells parse as floats. Cells that do
// not parse become NaN, mirroring how missing values behave downstream.
func (d *Dataset) inferNumericColumns() {
	for col, name := range d.columns {
		var nonEmpty, parsed int
		for _, row := range d.rows {
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			nonEmpty++
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				parsed++
			}
		}
		if nonEmpty == 0 || float64(parsed)/float64(nonEmpty) <= numericThreshold {
			continue
		}

		values := make([]float64, len(d.rows))
		for i, row := range d.rows {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				v = math.NaN()
			}
			values[i] = v
		}
		d.numeric[name] = values
	}
}

// RowCount returns the number of data rows.
func (d *Dataset) RowCount() int { return len(d.rows) }

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int { return len(d.columns) }

// Columns returns the ordered column names. The caller must not modify
// the returned slice.
func (d *Dataset) Columns() []string { return d.columns }

// NumericColumns returns the names of numeric columns in table order.
func (d *Dataset) NumericColumns() []string {
	out := make([]string, 0, len(d.numeric))
	for _, name := range d.columns {
		if _, ok := d.numeric[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// NumericColumn returns the float view of a column (NaN for missing cells)
// and whether the column exists and is numeric. Lookup is case-insensitive.
func (d *Dataset) NumericColumn(name string) ([]float64, bool) {
	if v, ok := d.numeric[name]; ok {
		return v, true
	}
	for col, values := range d.numeric {
		if strings.EqualFold(col, name) {
			return values, true
		}
	}
	return nil, false
}

// Column returns the raw string cells of a column, or false if absent.
func (d *Dataset) Column(name string) ([]string, bool) {
	for i, col := range d.columns {
		if strings.EqualFold(col, name) {
			out := make([]string, len(d.rows))
			for j, row := range d.rows {
				out[j] = row[i]
			}
			return out, true
		}
	}
	return nil, false
}

// Preview returns the first n rows prepared for display.
func (d *Dataset) Preview(n int) PreviewTable {
	if n < 0 {
		n = 0
	}
	if n > len(d.rows) {
		n = len(d.rows)
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		cells := make([]string, len(d.columns))
		copy(cells, d.rows[i])
		rows[i] = cells
	}
	return PreviewTable{Columns: d.columns, Rows: rows}
}

// Render formats the preview as a fixed-width text table.
func (p PreviewTable) Render() string {
	widths := make([]int, len(p.Columns))
	for i, col := range p.Columns {
		widths[i] = displayWidth(col)
	}
	for _, row := range p.Rows {
		for i, cell := range row {
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], clipCell(cell))
		}
		b.WriteByte('\n')
	}

	writeRow(p.Columns)
	for _, row := range p.Rows {
		writeRow(row)
	}
	return b.String()
}

func displayWidth(s string) int {
	if len(s) > maxCellWidth {
		return maxCellWidth
	}
	return len(s)
}

func clipCell(s string) string {
	if len(s) <= maxCellWidth {
		return s
	}
	// Back the cut up to a rune boundary so clipping never emits a torn rune.
	cut := maxCellWidth - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
