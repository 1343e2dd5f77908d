// Package server serves the emissions treemap over HTTP.
//
// The dataset is loaded once at start. Every request lays out and renders
// from that tree through a [pipeline.Runner], so a resize or a repeated
// request costs at most one layout and hits the runner's cache afterwards.
//
// # Routes
//
//	GET    /                          interactive HTML page
//	GET    /chart.svg                 interactive SVG fragment for the page
//	GET    /treemap.{format}          svg, png, pdf or json snapshot
//	GET    /layout.json               raw layout
//	GET    /hierarchy.{format}        node-link diagram (svg, png, pdf, dot)
//	POST   /views                     create a zoom view
//	GET    /views/{id}                view state and current frame
//	POST   /views/{id}/toggle         press the Zoom/Back button
//	POST   /views/{id}/click/{name}   click a tile
//	GET    /views/{id}/treemap.{fmt}  render the view in its current state
//	DELETE /views/{id}                drop a view
//	GET    /healthz                   liveness and build info
//
// Snapshot routes accept width, height and state (normal|zoomed) query
// parameters.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ghgmap/pkg/cache"
	"github.com/matzehuels/ghgmap/pkg/config"
	"github.com/matzehuels/ghgmap/pkg/hierarchy"
	"github.com/matzehuels/ghgmap/pkg/pipeline"
	"github.com/matzehuels/ghgmap/pkg/session"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Server handles HTTP requests for one dataset.
type Server struct {
	cfg    config.Config
	tree   *hierarchy.Tree
	runner *pipeline.Runner
	store  session.Store
	ttl    time.Duration
	logger *log.Logger
	title  string

	mu    sync.RWMutex
	views map[string]*liveView

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and event logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRunner sets the pipeline runner, and with it the artifact cache.
func WithRunner(r *pipeline.Runner) Option {
	return func(s *Server) { s.runner = r }
}

// WithStore sets where zoom views are persisted.
func WithStore(st session.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithTitle sets the HTML page title.
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// New creates a server for tree. Without options it renders uncached and
// keeps views in memory.
func New(cfg config.Config, tree *hierarchy.Tree, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		tree:   tree,
		ttl:    cfg.SessionTTL(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		views:  make(map[string]*liveView),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.store == nil {
		s.store = session.NewCacheStore(cache.NewMemoryCache(), nil, s.ttl)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/chart.svg", s.handleChart)
	r.Get("/treemap.{format}", s.handleTreemap)
	r.Get("/layout.json", s.handleLayout)
	r.Get("/hierarchy.{format}", s.handleHierarchy)
	r.Get("/healthz", s.handleHealth)

	r.Route("/views", func(r chi.Router) {
		r.Post("/", s.handleCreateView)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetView)
			r.Delete("/", s.handleDeleteView)
			r.Post("/toggle", s.handleToggle)
			r.Post("/click/{name}", s.handleClick)
			r.Get("/treemap.{format}", s.handleViewTreemap)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "categories", s.tree.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
