package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/flightline/dronelog/internal/config"
	"github.com/flightline/dronelog/internal/logging"
)

// acceptedExtensions is the upload whitelist, lowercase with the dot.
var acceptedExtensions = map[string]bool{
	".csv": true,
	".txt": true,
	".log": true,
}

// Service owns the current Dataset and implements the ingestion and summary
// operations. All methods are safe for concurrent use; Load wholesale-
// replaces the Dataset under a write lock while queries share a read lock.
//
// Isolation is last-writer-wins: an upload between two queries changes what
// the second query sees. That matches the reference behavior and is the
// documented limitation for multi-client use.
type Service struct {
	cfg     *config.Config
	aliases AliasTable

	mu      sync.RWMutex
	current *Dataset
}

// NewService creates a Service with no dataset loaded.
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:     cfg,
		aliases: DefaultAliases,
	}
}

// Load parses fileBytes and replaces the current Dataset on success.
// On any error the previous Dataset (if any) is left untouched.
func (s *Service) Load(ctx context.Context, filename string, fileBytes []byte) (DatasetInfo, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	ext := strings.ToLower(filepath.Ext(filename))
	if !acceptedExtensions[ext] {
		return DatasetInfo{}, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if max := s.maxFileSize(); max > 0 && int64(len(fileBytes)) > max {
		return DatasetInfo{}, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(fileBytes), max)
	}

	ds, err := Parse(fileBytes, filename)
	if err != nil {
		logger.Warn("upload rejected", "file", filename, "error", err)
		return DatasetInfo{}, err
	}

	s.mu.Lock()
	previous := s.current
	s.current = ds
	s.mu.Unlock()

	if previous != nil {
		logger.Info("dataset replaced",
			"previous", previous.SourceFile,
			"previous_rows", previous.RowCount(),
		)
	}
	logger.Info("dataset loaded",
		"file", filename,
		"rows", ds.RowCount(),
		"columns", ds.ColumnCount(),
		"duration", time.Since(start),
	)

	return DatasetInfo{
		DatasetID: ds.ID.String(),
		Filename:  filename,
		Rows:      ds.RowCount(),
		Columns:   ds.Columns(),
		Preview:   ds.Preview(s.previewRows()).Render(),
	}, nil
}

// Summarize computes shape and per-numeric-column descriptive statistics
// for the current Dataset.
func (s *Service) Summarize() (Summary, error) {
	ds, err := s.dataset()
	if err != nil {
		return Summary{}, err
	}

	stats := Describe(ds)
	return Summary{
		Shape:       [2]int{ds.RowCount(), ds.ColumnCount()},
		Columns:     ds.Columns(),
		Stats:       stats,
		Description: renderDescription(stats),
	}, nil
}

// Preview returns the first n rows of the current Dataset. n <= 0 falls
// back to the configured default.
func (s *Service) Preview(n int) (PreviewTable, error) {
	ds, err := s.dataset()
	if err != nil {
		return PreviewTable{}, err
	}
	if n <= 0 {
		n = s.previewRows()
	}
	return ds.Preview(n), nil
}

// Plot resolves field through the alias table and renders the matched
// column as a PNG line chart.
func (s *Service) Plot(field string) ([]byte, error) {
	ds, err := s.dataset()
	if err != nil {
		return nil, err
	}

	column, err := s.aliases.Resolve(field, ds.Columns())
	if err != nil {
		return nil, err
	}

	var opts PlotOptions
	if s.cfg != nil {
		opts = PlotOptions{
			Width:     s.cfg.Plot.Width,
			Height:    s.cfg.Plot.Height,
			MaxPoints: s.cfg.Plot.MaxPoints,
		}
	}
	return renderLinePlot(ds, column, opts)
}

// PlotFields returns the logical fields the service can plot.
func (s *Service) PlotFields() []string {
	return s.aliases.Fields()
}

// DatasetID returns the id of the current Dataset, or "" when none is
// loaded. Clients can use it to detect replacement between queries.
func (s *Service) DatasetID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID.String()
}

func (s *Service) dataset() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

func (s *Service) maxFileSize() int64 {
	if s.cfg == nil {
		return 0
	}
	return s.cfg.Upload.MaxFileSize
}

func (s *Service) previewRows() int {
	if s.cfg != nil && s.cfg.Upload.PreviewRows > 0 {
		return s.cfg.Upload.PreviewRows
	}
	return 5
}
