package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/turtacn/risknet/internal/config"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
)

// Server wraps the net/http server around the assembled route tree.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

// NewServer builds the server from the configured tunables.
func NewServer(cfg config.ServerConfig, handler http.Handler, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNopLogger()
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 60 * time.Second
	}

	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		logger: log.Named("http-server"),
	}
}

// Start serves until Shutdown is called. A closed listener is a clean exit,
// not an error.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.srv.Shutdown(ctx)
}
