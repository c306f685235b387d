package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"mercator-hq/formgate/pkg/config"
	"mercator-hq/formgate/pkg/form/ast"
	"mercator-hq/formgate/pkg/logic/engine"
	"mercator-hq/formgate/pkg/logic/manager"
	"mercator-hq/formgate/pkg/telemetry/health"
	"mercator-hq/formgate/pkg/telemetry/metrics"
	"mercator-hq/formgate/pkg/telemetry/tracing"
)

// FormService is the subset of *manager.Manager the HTTP API uses.
type FormService interface {
	Metadata() []manager.FormMetadata
	Version() string
	Form(id string) (*ast.Form, error)
	ValidateFields(ctx context.Context, formID string, data engine.Submission, fieldIDs ...string) (*engine.EvaluationResult, error)
	ValidateSubmission(ctx context.Context, formID string, data engine.Submission) (*engine.EvaluationResult, error)
}

// Options holds the collaborators served by the HTTP API. Nil collaborators
// disable their routes.
type Options struct {
	Forms   FormService
	Health  *health.Checker
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Version health.VersionInfo
	Logger  *slog.Logger
}

// Server is the formgate HTTP server.
type Server struct {
	config       *config.Config
	opts         Options
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
}

// NewServer creates a server.
func NewServer(cfg *config.Config, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: cfg,
		opts:   opts,
		logger: logger.With("component", "server"),
	}
}

// Start listens on the configured address and blocks until ctx is cancelled or
// the server fails. Cancellation triggers a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	cfg := s.config.Server
	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.addr = listener.Addr()
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "address", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		timeout := s.config.Server.ShutdownTimeout
		s.logger.Info("Initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("HTTP server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound listener address once Start has begun serving.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the HTTP handler with every route and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware(s.logger))
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(s.logger))
	if s.opts.Tracer.Enabled() {
		r.Use(tracing.Middleware(s.opts.Tracer))
	}

	if s.opts.Health != nil {
		s.opts.Health.Mount(r, s.config.Telemetry.Health, s.opts.Version)
	}

	if s.opts.Metrics.Enabled() {
		r.Handle(s.config.Telemetry.Metrics.Path, s.opts.Metrics.Handler())
	}

	if s.opts.Forms != nil {
		h := &formHandlers{forms: s.opts.Forms, maxBody: s.config.Server.MaxBodyBytes, logger: s.logger}
		r.Route("/forms", func(r chi.Router) {
			r.Get("/", h.list)
			r.Get("/{formID}", h.get)
			r.Post("/{formID}/validate", h.validate)
			r.Post("/{formID}/submit", h.submit)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method "+r.Method+" is not allowed")
	})

	return r
}
