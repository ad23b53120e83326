package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/leave-tracker/api"
	"github.com/warp/leave-tracker/config"
	"github.com/warp/leave-tracker/leave"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// serve runs the HTTP API until ctx is done or SIGINT/SIGTERM arrives, then
// waits for active requests to complete.
func serve(ctx context.Context, cfg *config.Config, svc *leave.Service, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := api.NewRouter(api.NewHandler(svc, logger), api.RouterOptions{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server starting", zap.String("addr", cfg.HTTP.Addr))

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
