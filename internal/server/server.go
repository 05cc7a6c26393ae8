// Package server exposes a live blueprint graph over HTTP.
//
// The server owns no scheduling loop of its own: pin writes and structural
// edits request a pass from the [engine.Trigger], and whoever drives the
// trigger (the serve command ticks it) runs it.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/history"
)

// Server serves one graph.
type Server struct {
	graph    *graph.Graph
	registry *graph.Registry
	trigger  *engine.Trigger
	history  history.Store
	metrics  http.Handler
	logger   *log.Logger
	base     context.Context

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHistory enables the /history routes.
func WithHistory(h history.Store) Option {
	return func(s *Server) { s.history = h }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithBaseContext sets the context passes started by /run inherit. Request
// contexts are not used so that a client hanging up does not cancel a pass.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) { s.base = ctx }
}

// New creates a server for g. reg constructs nodes added through the API.
func New(g *graph.Graph, reg *graph.Registry, t *engine.Trigger, opts ...Option) *Server {
	s := &Server{
		graph:    g,
		registry: reg,
		trigger:  t,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		base:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)

	r.Get("/graph", s.handleGraph)
	r.Get("/graph.svg", s.handleRender)
	r.Get("/cycles", s.handleCycles)
	r.Get("/types", s.handleTypes)

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.handleNodes)
		r.Post("/", s.handleAddNode)
		r.Get("/{id}", s.handleNode)
		r.Delete("/{id}", s.handleRemoveNode)
	})
	r.Put("/pins/{id}", s.handleSetPin)
	r.Route("/links", func(r chi.Router) {
		r.Post("/", s.handleAddLink)
		r.Delete("/{id}", s.handleRemoveLink)
	})

	r.Post("/run", s.handleRun)
	r.Get("/status", s.handleStatus)
	r.Get("/report", s.handleReport)
	if s.history != nil {
		r.Get("/history", s.handleHistory)
		r.Get("/history/{pass}", s.handleHistoryPass)
	}
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down within
// timeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, timeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
