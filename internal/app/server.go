package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samvad-hq/wire-scout/internal/api"
	"github.com/samvad-hq/wire-scout/internal/logger"
	"github.com/samvad-hq/wire-scout/internal/metrics"
	"github.com/samvad-hq/wire-scout/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Server runs the query API.
type Server struct {
	srv *http.Server
	log logger.Logger
}

// NewServer builds the API server. gatherer backs /metrics when non-nil.
func NewServer(addr string, store storage.Store, m *metrics.Metrics, gatherer prometheus.Gatherer, log logger.Logger) *Server {
	log = logger.Ensure(log)
	gin.SetMode(gin.ReleaseMode)

	opts := api.RouterOptions{Logger: log, Metrics: m}
	if gatherer != nil {
		opts.MetricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           api.NewRouter(store, opts),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("api server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	s.log.InfoObj("api server stopped", "addr", s.srv.Addr)
	return nil
}
