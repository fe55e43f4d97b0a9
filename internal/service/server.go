package service

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatoly-dev/go-store-sync/pkg/config"
	"github.com/anatoly-dev/go-store-sync/pkg/handlers"
	"github.com/anatoly-dev/go-store-sync/pkg/metrics"
	"go.uber.org/zap"
)

type Server struct {
	server         *http.Server
	healthHandler  *handlers.HealthCheckHandler
	metricsHandler *metrics.MetricsHandler
	syncService    *SyncService
	logger         *zap.Logger
	cfg            *config.ServerConfig
}

func NewServer(
	healthHandler *handlers.HealthCheckHandler,
	metricsHandler *metrics.MetricsHandler,
	syncService *SyncService,
	logger *zap.Logger,
	cfg *config.ServerConfig,
) *Server {
	return &Server{
		healthHandler:  healthHandler,
		metricsHandler: metricsHandler,
		syncService:    syncService,
		logger:         logger,
		cfg:            cfg,
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler.HandleHealthCheck)
	mux.Handle("/metrics", s.metricsHandler.Handler())

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      mux,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	if err := s.syncService.Start(); err != nil {
		return fmt.Errorf("failed to start sync service: %w", err)
	}

	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.cfg.Port))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	s.logger.Info("Received shutdown signal")

	shutdownTimeout := 30 * time.Second
	if s.cfg.ShutdownTimeout > 0 {
		shutdownTimeout = s.cfg.ShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down services", zap.Duration("timeout", shutdownTimeout))

	s.syncService.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Performing controlled shutdown")

	s.syncService.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shutdown completed")
	return nil
}
