package web

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/flightline/dronelog/internal/core"
	"github.com/go-chi/chi/v5"
)

// uploadResponse is the envelope for POST /upload.
type uploadResponse struct {
	Success bool              `json:"success"`
	Info    *core.DatasetInfo `json:"info,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// plotResponse is the envelope for GET /plot/{field}.
type plotResponse struct {
	Plot  string `json:"plot,omitempty"` // base64-encoded PNG
	Error string `json:"error,omitempty"`
}

// summaryResponse is the envelope for GET /data/summary.
type summaryResponse struct {
	Shape       [2]int             `json:"shape"`
	Columns     []string           `json:"columns"`
	Stats       []core.ColumnStats `json:"stats,omitempty"`
	Description string             `json:"description,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// handleUpload ingests a multipart file upload and replaces the current
// dataset on success.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1024) // slack for the multipart framing

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrFileTooLarge, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, &core.ParseError{Reason: "no file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, &core.ParseError{Reason: "failed to read upload", Err: err})
		return
	}

	info, err := s.service.Load(r.Context(), header.Filename, data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Info: &info})
}

// handlePlot renders the requested logical field ("altitude" or "speed")
// as a PNG chart, base64-encoded into the JSON envelope.
func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")

	png, err := s.service.Plot(field)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, plotResponse{
		Plot: base64.StdEncoding.EncodeToString(png),
	})
}

// handleSummary returns shape, column names and descriptive statistics of
// the current dataset.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summarize()
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Shape:       summary.Shape,
		Columns:     summary.Columns,
		Stats:       summary.Stats,
		Description: summary.Description,
	})
}

// handlePreview returns the first rows of the current dataset.
// The rows query parameter overrides the configured default, capped at 100.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("rows"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondError(w, r, &core.ParseError{Reason: fmt.Sprintf("invalid rows parameter %q", raw)})
			return
		}
		n = v
	}
	if n > 100 {
		n = 100
	}

	preview, err := s.service.Preview(n)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}
