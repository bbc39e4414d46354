// Package web serves the cached department records over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/gyeh/deptstats/internal/model"
	"github.com/gyeh/deptstats/internal/source"
)

// MaxUploadBytes caps the body of an ingest request.
var MaxUploadBytes int64 = 64 << 20

// Ingester is the part of ingest.Service the handlers need.
type Ingester interface {
	Ingest(ctx context.Context, src *source.Text) (*model.IngestSummary, error)
	ActiveRecords(ctx context.Context, sourceID string) ([]model.Record, error)
	Busy() bool
}

// Server is the HTTP API of the dashboard cache.
type Server struct {
	svc     Ingester
	log     zerolog.Logger
	targets map[string]float64
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. targets feeds the summary progress figures.
func NewServer(svc Ingester, log zerolog.Logger, targets map[string]float64) *Server {
	s := &Server{
		svc:     svc,
		log:     log,
		targets: targets,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/sources/{sourceID}", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Get("/records", s.handleRecords)
		r.Get("/summary", s.handleSummary)
	})
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("starting server")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down server")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
