// Package server exposes step-by-step searches over HTTP for the browser
// visualiser.
package server

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdrpinto/gridastar/internal/config"
)

//go:embed static/index.html
var staticFS embed.FS

const (
	maxBodyBytes = 1 << 20
	maxCells     = 500 * 500
	maxStepBatch = 10_000
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and session records.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMazeDefaults sets the board used when a create request leaves fields out.
func WithMazeDefaults(maze config.MazeConfig) Option {
	return func(s *Server) { s.defaults = maze }
}

// Server holds the chi router and the session store.
type Server struct {
	router   chi.Router
	store    *Store
	logger   *slog.Logger
	defaults config.MazeConfig
}

// New creates a Server with all routes configured.
func New(store *Store, options ...Option) *Server {
	s := &Server{
		store:    store,
		logger:   slog.Default(),
		defaults: config.Default().Maze,
	}
	for _, option := range options {
		option(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/step", s.handleStep)
		r.Post("/{id}/run", s.handleRun)
		r.Delete("/{id}", s.handleDeleteSession)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler by delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(started),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(staticFS, "static/index.html")
	if err != nil {
		http.Error(w, "index.html not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
}
