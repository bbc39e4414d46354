package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/gyeh/deptstats/internal/ingest"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an ingestion error to a status and a machine-readable code.
func classify(err error) (int, string) {
	var execErr *ingest.ExecutionError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, ingest.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &execErr):
		return http.StatusInternalServerError, "worker_fault"
	case errors.Is(err, ingest.ErrNoDatabase):
		return http.StatusServiceUnavailable, "no_database"
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, "too_large"
	}
	return http.StatusInternalServerError, "internal"
}

// respondError logs err with the request id and writes the JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	ev := s.log.Warn()
	if status >= http.StatusInternalServerError {
		ev = s.log.Error()
	}
	ev.Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("code", code).
		Msg("request error")

	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
