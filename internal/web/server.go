// Package web exposes the aggregation results over an HTTP API in serve mode.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/trendpulse/trendpulse/internal/filter"
	"github.com/trendpulse/trendpulse/internal/model"
	"github.com/trendpulse/trendpulse/internal/report"
)

// Provider supplies the server with aggregation results.
type Provider interface {
	// Latest returns the most recent report, or false when no run happened yet.
	Latest() (*report.Report, bool)

	// Refresh runs one aggregation and returns its report.
	Refresh(ctx context.Context) (*report.Report, error)

	// KeywordStats summarizes the active keyword configuration.
	KeywordStats() filter.Stats
}

// Server serves the HTTP API.
type Server struct {
	server   *http.Server
	router   *chi.Mux
	provider Provider
	log      zerolog.Logger
}

// NewServer builds the HTTP server. reportsDir, when non-empty, is served
// under /reports/ so the rendered HTML output is browsable.
func NewServer(cfg model.WebConfig, provider Provider, reportsDir string, log zerolog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{
		provider: provider,
		router:   router,
		log:      log,
	}

	router.Get("/healthz", s.handleHealth)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/trends", s.handleTrends)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/keywords", s.handleKeywords)
	})
	if reportsDir != "" {
		router.Handle("/reports/*", http.StripPrefix("/reports/", http.FileServer(http.Dir(reportsDir))))
	}

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	return s.server.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.provider.Latest()
	if !ok {
		respondWithError(w, http.StatusNotFound, "no aggregation run yet")
		return
	}
	respondWithJSON(w, http.StatusOK, rep)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	rep, err := s.provider.Refresh(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("refresh failed")
		respondWithError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	respondWithJSON(w, http.StatusOK, rep)
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.provider.KeywordStats())
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
