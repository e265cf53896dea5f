package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error flows through respondError, which:
//   - logs the full technical error with the request ID for correlation
//   - maps it to a coded user message via core.MapError
//   - picks the HTTP status from the error's place in the core taxonomy
//
// No error here is fatal to the process; the service stays usable for the
// next upload after any failure.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/flightline/dronelog/internal/core"
	"github.com/go-chi/chi/v5/middleware"
)

// errorResponse is the JSON envelope for failed requests. Success is
// always present (and false) so upload clients can branch on one field.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped user message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, errorResponse{
		Success: false,
		Error:   userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor places a core error in the HTTP status space.
func statusFor(err error) int {
	var parseErr *core.ParseError
	var colErr *core.ColumnNotFoundError

	switch {
	case errors.Is(err, core.ErrNoDataset):
		return http.StatusConflict
	case errors.As(err, &colErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooFewPoints):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrUnsupportedType),
		errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
