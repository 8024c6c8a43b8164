// Package api exposes the HTTP interface for the scraper service.
//
// Routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/sources for the loaded source registry.
//   - POST /v1/scrape to run sources on demand.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/metrics"
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Runner processes a single source end to end.
type Runner interface {
	ProcessSource(ctx context.Context, src warn.SourceConfig) (int, error)
}

// Server wires HTTP handlers to the source registry and a pipeline runner.
type Server struct {
	router  chi.Router
	sources []warn.SourceConfig
	runner  Runner
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(sources []warn.SourceConfig, runner Runner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		sources: sources,
		runner:  runner,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/sources", s.listSources)
		r.Post("/scrape", s.scrape)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type sourceDTO struct {
	State        string `json:"state"`
	Abbreviation string `json:"abbreviation"`
	URL          string `json:"archive_url"`
	Format       string `json:"format,omitempty"`
	JobLink      bool   `json:"joblink,omitempty"`
	Dynamic      bool   `json:"dynamic,omitempty"`
	Adapter      string `json:"adapter,omitempty"`
}

func (s *Server) listSources(w http.ResponseWriter, _ *http.Request) {
	out := make([]sourceDTO, 0, len(s.sources))
	for _, src := range s.sources {
		out = append(out, sourceDTO{
			State:        src.StateName,
			Abbreviation: src.StateAbbrev,
			URL:          src.URL,
			Format:       string(src.Format),
			JobLink:      src.JobLink,
			Dynamic:      src.Dynamic,
			Adapter:      src.Adapter,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": out})
}

type scrapeRequest struct {
	// States selects sources by abbreviation. Empty means all sources.
	States []string `json:"states"`
}

func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "scrape runner unavailable")
		return
	}

	var req scrapeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	selected, unknown := s.selectSources(req.States)
	if len(unknown) > 0 {
		writeError(w, http.StatusBadRequest, "unknown states: "+strings.Join(unknown, ", "))
		return
	}
	if len(selected) == 0 {
		writeError(w, http.StatusBadRequest, "no sources selected")
		return
	}

	// Runs proceed in the background; clients poll metrics or output files.
	go s.runSources(selected)

	abbrevs := make([]string, 0, len(selected))
	for _, src := range selected {
		abbrevs = append(abbrevs, src.StateAbbrev)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"states": abbrevs})
}

func (s *Server) selectSources(states []string) ([]warn.SourceConfig, []string) {
	if len(states) == 0 {
		return s.sources, nil
	}
	byAbbrev := make(map[string]warn.SourceConfig, len(s.sources))
	for _, src := range s.sources {
		byAbbrev[strings.ToUpper(src.StateAbbrev)] = src
	}
	var (
		selected []warn.SourceConfig
		unknown  []string
	)
	for _, state := range states {
		src, ok := byAbbrev[strings.ToUpper(strings.TrimSpace(state))]
		if !ok {
			unknown = append(unknown, state)
			continue
		}
		selected = append(selected, src)
	}
	return selected, unknown
}

func (s *Server) runSources(sources []warn.SourceConfig) {
	ctx := context.Background()
	for _, src := range sources {
		if _, err := s.runner.ProcessSource(ctx, src); err != nil {
			s.logger.Error("scrape failed",
				zap.String("state", src.StateAbbrev),
				zap.Error(err),
			)
		}
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
