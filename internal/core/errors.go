package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the query operations. Use errors.Is to test for them.
var (
	// ErrNoDataset is returned by query operations before any successful upload.
	ErrNoDataset = errors.New("no dataset loaded")

	// ErrEmptyFile is returned when an upload contains a header but zero data rows.
	ErrEmptyFile = errors.New("empty file: no data rows")

	// ErrTooFewPoints is returned by Plot when the resolved column has
	// fewer than two numeric values, which is not enough for a line.
	ErrTooFewPoints = errors.New("not enough numeric values to plot")

	// ErrUnsupportedType is returned by Load for extensions outside the
	// accepted set (.csv, .txt, .log).
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrFileTooLarge is returned by Load when the upload exceeds the
	// configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// ParseError indicates the uploaded content could not be tokenized into
// rows and columns. The Dataset is left unchanged when it occurs.
type ParseError struct {
	Reason string
	Err    error // underlying tokenizer error, may be nil
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return "parse: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// ColumnNotFoundError indicates a plot field could not be resolved to any
// column of the current Dataset via the alias table.
type ColumnNotFoundError struct {
	Field   string   // logical field requested, e.g. "altitude"
	Aliases []string // literal names that were tried
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("no column matching %q (tried %v)", e.Field, e.Aliases)
}
