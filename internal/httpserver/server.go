package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coastwatch-labs/catalog/internal/config"
	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/httpserver/mw"
	"github.com/coastwatch-labs/catalog/internal/httpserver/routes"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// New builds the HTTP server (router, middlewares, route registration).
func New(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.ListenPort,
			Handler:           NewRouter(loggerClient, d),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger: loggerClient,
	}
}

// NewRouter builds the handler tree on its own, for tests and embedding.
func NewRouter(loggerClient logger.Logger, d deps.Deps) http.Handler {
	r := chi.NewRouter()

	// --- Global middlewares (safe defaults)
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)                        // X-Request-ID on each request
	r.Use(middleware.Recoverer)                        // never crash the process on panic
	r.Use(middleware.Timeout(10 * time.Second))        // catalog listings read every dataset
	r.Use(mw.Log(loggerClient, "/healthz", "/readyz")) // structured access logs, probes at debug

	// Routes register themselves from their init()
	routes.RegisterAll(r, d)
	return r
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", logger.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
