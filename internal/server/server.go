// Package server exposes the evaluator over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/bigcalc/internal/config"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/history"
	"github.com/agbru/bigcalc/internal/logging"
	"github.com/agbru/bigcalc/internal/metrics"
	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/tracing"
)

// HistoryReader lists recent evaluations. It is satisfied by *history.Store.
type HistoryReader interface {
	Recent(n int) ([]history.Record, error)
}

// Server serves the bigcalc HTTP API.
type Server struct {
	evaluator      orchestration.Evaluator
	history        HistoryReader
	metrics        *metrics.Recorder
	logger         logging.Logger
	tracer         trace.Tracer
	securityConfig SecurityConfig
	timeouts       Timeouts
	router         chi.Router
	httpServer     *http.Server
}

// NewServer builds a server around ev. The body limit comes from the
// security config; the listen address from cfg.Port.
func NewServer(ev orchestration.Evaluator, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		evaluator:      ev,
		logger:         logging.NewLogger(os.Stderr, "server"),
		tracer:         tracing.Tracer(),
		securityConfig: DefaultSecurityConfig(),
		timeouts:       DefaultServerTimeouts(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRecorder()
	}

	s.router = s.routes()

	port := cfg.Port
	if port == "" {
		port = config.DefaultPort
	}
	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.tracingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(securityHandler(s.securityConfig))

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/evaluate", s.handleEvaluate)
		r.Get("/history", s.handleHistory)
	})
	return r
}

// Handler returns the routed handler with every middleware applied.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured port and serves until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return apperrors.WrapError(err, "listening on %s", s.httpServer.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return apperrors.WrapError(err, "server failed")
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutdown requested, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeouts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.WrapError(err, "graceful shutdown")
	}
	s.logger.Info("server stopped")
	return nil
}
