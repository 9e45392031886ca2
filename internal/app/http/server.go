package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spounge-ai/postgresql-connector/internal/infra/config"
	"github.com/spounge-ai/postgresql-connector/pkg/patterns/lifecycle"
)

// Server serves the connector routes and implements
// lifecycle.ManagedResource.
type Server struct {
	httpServer *http.Server
	lis        net.Listener
	logger     *slog.Logger

	started   atomic.Bool
	serving   atomic.Bool
	errCh     chan error
	startOnce sync.Once
}

var _ lifecycle.ManagedResource = (*Server)(nil)

// New binds the listening socket. A non-nil tlsConfig makes the server
// speak TLS.
func New(cfg config.ServerConfig, handler http.Handler, tlsConfig *tls.Config, logger *slog.Logger) (*Server, int, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to listen: %w", err)
	}
	if tlsConfig != nil {
		lis = tls.NewListener(lis, tlsConfig)
	}

	port := lis.Addr().(*net.TCPAddr).Port

	return &Server{
		httpServer: &http.Server{
			Handler:           handler,
			TLSConfig:         tlsConfig,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		lis:    lis,
		logger: logger,
		errCh:  make(chan error, 1),
	}, port, nil
}

// Start serves in the background and returns once the server is accepting
// connections.
func (s *Server) Start(_ context.Context) error {
	s.startOnce.Do(func() {
		s.logger.Info("HTTP server listening", "address", s.lis.Addr().String())
		s.started.Store(true)
		s.serving.Store(true)
		go func() {
			err := s.httpServer.Serve(s.lis)
			s.serving.Store(false)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.errCh <- err
			}
			close(s.errCh)
		}()
	})
	return nil
}

// Errors reports a serve failure. It is closed when the server stops.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	s.serving.Store(false)
	if !s.started.Load() {
		return s.lis.Close()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) Health(_ context.Context) lifecycle.HealthStatus {
	if s.serving.Load() {
		return lifecycle.HealthStatus{Ready: true}
	}
	return lifecycle.HealthStatus{Ready: false, Message: "not serving"}
}

func (s *Server) Addr() string {
	return s.lis.Addr().String()
}
