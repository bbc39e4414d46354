package web

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gyeh/deptstats/internal/report"
	"github.com/gyeh/deptstats/internal/source"
)

// handleHealth reports liveness and whether an ingest is in flight.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		Busy   bool   `json:"busy"`
	}{"ok", s.svc.Busy()})
}

// handleIngest replaces the cached data set of a source with the raw
// delimited text in the request body.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceID")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	summary, err := s.svc.Ingest(r.Context(), source.FromBytes(sourceID, "http", body))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleRecords returns the active records of a source that pass the query
// filter.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ActiveRecords(r.Context(), chi.URLParam(r, "sourceID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filterFromQuery(r).Apply(records))
}

// handleSummary rolls up the filtered active records of a source.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ActiveRecords(r.Context(), chi.URLParam(r, "sourceID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Summarize(filterFromQuery(r).Apply(records), s.targets))
}

func filterFromQuery(r *http.Request) report.Filter {
	q := r.URL.Query()
	return report.Filter{
		From:        q.Get("from"),
		To:          q.Get("to"),
		DeptCode:    q.Get("dept"),
		Doctor:      q.Get("doctor"),
		PatientType: q.Get("patientType"),
	}
}
