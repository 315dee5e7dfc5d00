package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"switchyard-ai/switchyard/pkg/config"
	"switchyard-ai/switchyard/pkg/health"
	"switchyard-ai/switchyard/pkg/routing"
)

// HealthSource supplies the aggregate health view served by the
// diagnostics endpoints. *health.Monitor satisfies it.
type HealthSource interface {
	GetSystemHealth() *health.SystemHealth
}

// StatsSource supplies the routing statistics served at /stats.
// *routing.Router satisfies it.
type StatsSource interface {
	Stats() routing.StatsSnapshot
}

// Server is the local diagnostics HTTP server. It exposes the aggregate
// health view, the per-provider records and the prometheus exposition.
type Server struct {
	cfg         config.ServerConfig
	health      HealthSource
	stats       StatsSource
	metrics     http.Handler
	metricsPath string
	logger      *slog.Logger

	httpServer *http.Server
	listener   net.Listener

	mu           sync.RWMutex
	running      bool
	shutdownOnce sync.Once
	shutdownChan chan struct{}
}

// NewServer creates a diagnostics server. metricsHandler may be nil, in
// which case /metrics is not registered.
func NewServer(cfg config.ServerConfig, source HealthSource, metricsHandler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:          cfg,
		health:       source,
		metrics:      metricsHandler,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start binds the listen address and serves until ctx is cancelled or
// Shutdown is called. The bind happens synchronously, so an occupied
// port is reported by Start itself.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	listener, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddress, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.running = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("diagnostics server listening",
			"address", listener.Addr().String(),
			"metrics", s.metrics != nil,
		)
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case <-s.shutdownChan:
		return nil
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server, waiting up to ShutdownTimeout
// for in-flight requests. Shutdown is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		srv := s.httpServer
		s.mu.Unlock()

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}

		s.logger.Info("shutting down diagnostics server", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if srv != nil {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("diagnostics server shutdown failed", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		close(s.shutdownChan)
		s.logger.Info("diagnostics server stopped")
	})

	return shutdownErr
}

// SetStatsSource installs the routing statistics source, enabling the
// /stats endpoint. Must be called before Start.
func (s *Server) SetStatsSource(src StatsSource) {
	s.stats = src
}

// SetMetricsPath overrides the prometheus exposition path. Empty keeps
// the default "/metrics". Must be called before Start.
func (s *Server) SetMetricsPath(path string) {
	s.metricsPath = path
}

// Handler returns the HTTP handler with the middleware chain applied.
// Useful for serving through an existing listener or in tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/healthz/providers", s.handleProviders)
	if s.stats != nil {
		mux.HandleFunc("/stats", s.handleStats)
	}
	if s.metrics != nil {
		path := s.metricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.metrics)
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}

// Addr returns the bound listen address, or "" before Start. With a
// ":0" listen address this reports the kernel-assigned port.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.running
}
