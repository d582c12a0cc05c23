// Package server exposes the recipe pipeline over HTTP.
//
// Routes:
//
//	GET    /v1/recipe?source=&units=&cache=&scope=&format=json|html
//	DELETE /v1/recipe?source=&scope=
//	GET    /healthz
//	GET    /metrics
//
// The recipe endpoint runs the same [pipeline.Runner] as the CLI, so both
// share cache entries when they use the same backend.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/matzehuels/beerxml/pkg/config"
	"github.com/matzehuels/beerxml/pkg/pipeline"
)

// Options configures a Server.
type Options struct {
	Addr string

	// RateLimit is the sustained request rate for /v1 routes in requests
	// per second. Zero disables limiting.
	RateLimit float64
	RateBurst int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// AllowFileSources permits file paths as sources. Off by default so
	// clients cannot read the server's filesystem.
	AllowFileSources bool

	// Defaults seed the pipeline options of every request.
	Defaults pipeline.Options
}

// OptionsFromConfig builds server options from the configuration file.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Addr:            cfg.Server.Addr,
		RateLimit:       cfg.Server.RateLimit,
		RateBurst:       cfg.Server.RateBurst,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Defaults:        cfg.PipelineOptions(),
	}
}

// Server serves recipes over HTTP.
type Server struct {
	opts    Options
	runner  *pipeline.Runner
	limiter *rate.Limiter
	logger  *log.Logger
	router  chi.Router

	mu    sync.RWMutex
	ready bool
}

// New creates a server over runner. A nil logger uses log.Default().
func New(runner *pipeline.Runner, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		opts:    opts,
		runner:  runner,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.recoverer)
	r.Use(s.metrics)
	r.Use(s.logging)

	// System endpoints are not rate limited.
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/recipe", s.handleRecipe)
		r.Delete("/recipe", s.handleInvalidate)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no such route", false)
	})
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// SetReady marks the server as ready to serve traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Run listens on opts.Addr until ctx is canceled, then shuts down
// gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.opts.Addr)
		s.SetReady(true)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.SetReady(false)
		s.logger.Info("shutting down")

		timeout := s.opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
