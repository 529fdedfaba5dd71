// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server is the HTTP façade: a form page, a JSON query endpoint that
// runs the digest pipeline, health and metrics.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/logging"
	"github.com/pdiddy/research-digest/internal/pipeline"
	"github.com/pdiddy/research-digest/pkg/types"
)

//go:embed templates/index.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const (
	defaultMaxResults = 3
	defaultBullets    = 5

	defaultShutdownTimeout = 10 * time.Second
)

// Runner executes one digest task.
type Runner interface {
	Run(ctx context.Context, task pipeline.Task) (pipeline.Report, error)
}

// Server serves the web form and the query API.
type Server struct {
	runner  Runner
	cfg     types.ServerConfig
	logger  *zap.Logger
	version string

	maxResults int
	bullets    int

	handler http.Handler
}

// Option customizes a Server.
type Option func(*Server)

// WithDefaults sets the values used when a form omits max_results or bullets.
func WithDefaults(maxResults, bullets int) Option {
	return func(s *Server) {
		if maxResults > 0 {
			s.maxResults = maxResults
		}
		if bullets > 0 {
			s.bullets = bullets
		}
	}
}

// WithVersion sets the version reported by /health and the form page.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New builds a Server around runner.
func New(runner Runner, cfg types.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		runner:     runner,
		cfg:        cfg,
		logger:     logging.OrNop(logger),
		version:    "dev",
		maxResults: defaultMaxResults,
		bullets:    defaultBullets,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static assets: %v", err))
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	var h http.Handler = mux
	h = corsMiddleware(s.cfg.CORSOrigins)(h)
	h = accessLogMiddleware(s.logger)(h)
	h = requestIDMiddleware(h)
	h = recoverMiddleware(s.logger)(h)
	return h
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Server shutting down")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
