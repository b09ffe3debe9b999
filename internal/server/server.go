// Package server wires the mock Piston server: router, middleware and graceful
// shutdown.
//
// ROUTES:
// GET  /runtimes  → installed runtimes (JSON array)
// POST /execute   → run a request on the backend
//
// The same routes are mounted under /api/v2/piston so a client pointed at
// "http://host:port/api/v2/piston" sees the same layout as the public instance.
//
// MIDDLEWARE ORDER:
// 1. RequestID: tags every request so log lines can be correlated
// 2. RealIP: the rate limiter keys on the real client address
// 3. Recoverer: a panicking backend yields 500 instead of a dead server
// 4. Logger: one slog line per request
// 5. API key and rate limit checks, only in front of the Piston routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/sakif/piston-go/internal/executor"
	"github.com/sakif/piston-go/internal/handler"
	"github.com/sakif/piston-go/internal/middleware"
)

// Config holds server configuration.
type Config struct {
	Port int
	// APIKeyHash is the bcrypt hash of the accepted key. Empty disables the check.
	APIKeyHash string
	// RateLimit is requests per second per client IP. Zero disables limiting.
	RateLimit rate.Limit
	RateBurst int
	// MaxJobs bounds concurrent executions. Zero leaves the backend unbounded.
	MaxJobs int
}

// Server is the mock Piston HTTP server.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

// New creates a Server answering from backend. keys verifies API keys when
// cfg.APIKeyHash is set.
func New(cfg Config, logger *slog.Logger, backend executor.Backend, keys middleware.KeyVerifier) (*Server, error) {
	if backend == nil {
		return nil, errors.New("server: backend is required")
	}
	if cfg.APIKeyHash != "" && keys == nil {
		return nil, errors.New("server: api key hash set without a key verifier")
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	if cfg.MaxJobs > 0 {
		backend = executor.NewQueue(backend, cfg.MaxJobs, logger)
	}
	s.setupRoutes(backend, keys)
	return s, nil
}

// Handler exposes the router, for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(backend executor.Backend, keys middleware.KeyVerifier) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	h := handler.NewExecuteHandler(backend, s.logger)

	// One limiter for both mounts, so a client cannot double its quota by switching paths.
	var limiter *middleware.RateLimiter
	if s.config.RateLimit > 0 {
		burst := s.config.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = middleware.NewRateLimiter(s.config.RateLimit, burst)
	}

	piston := func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(keys, s.config.APIKeyHash))
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Get("/runtimes", h.HandleRuntimes)
		r.Post("/execute", h.HandleExecute)
	}

	s.router.Group(piston)
	s.router.Route("/api/v2/piston", piston)
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("mock piston server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Bool("api_key", s.config.APIKeyHash != ""),
			slog.Float64("rate_limit", float64(s.config.RateLimit)),
			slog.Int("max_jobs", s.config.MaxJobs),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
