package core

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is the single currently loaded table. It is immutable after
// construction; Load replaces the whole value rather than mutating it.
type Dataset struct {
	ID         uuid.UUID
	SourceFile string
	LoadedAt   time.Time

	columns []string
	rows    [][]string // row-major, cells aligned with columns ("" = missing)

	// numeric holds the float view of columns whose values are mostly
	// parseable as numbers. Missing or unparseable cells are NaN.
	numeric map[string][]float64
}

// DatasetInfo is the load confirmation returned to the client.
type DatasetInfo struct {
	DatasetID string   `json:"datasetId"`
	Filename  string   `json:"filename"`
	Rows      int      `json:"rows"`
	Columns   []string `json:"columns"`
	Preview   string   `json:"preview"` // first rows rendered as a display table
}

// PreviewTable is the first n rows of the Dataset prepared for display.
type PreviewTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnStats holds descriptive statistics for one numeric column.
// Count is the number of non-missing values; the remaining fields are
// computed over those values only.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// Summary is derived on demand from the current Dataset, never stored.
type Summary struct {
	Shape       [2]int        `json:"shape"` // [rows, columns]
	Columns     []string      `json:"columns"`
	Stats       []ColumnStats `json:"stats"`
	Description string        `json:"description"` // stats rendered for display
}
