// Package app provides application lifecycle management for the console server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stacklok/dbcluster-console/internal/config"
)

// ConsoleApp encapsulates all components needed to run the console API server
// It provides lifecycle management and graceful shutdown capabilities
type ConsoleApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start runs the HTTP server and, when configured, the cache watcher.
// It blocks until both have stopped. A failing watcher shuts the server down.
func (app *ConsoleApp) Start() error {
	g, gctx := errgroup.WithContext(app.ctx)

	if app.components.Watcher != nil {
		g.Go(func() error {
			if err := app.components.Watcher.Start(gctx); err != nil {
				return fmt.Errorf("cache watcher failed: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			if app.ctx.Err() != nil {
				// Stop owns the shutdown
				return nil
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.GetShutdownTimeout())
			defer cancel()
			return app.httpServer.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		slog.Info("Server listening", "address", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Stop gracefully stops the application with the given timeout
// It stops the cache watcher and then shuts down the HTTP server
func (app *ConsoleApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	// Cancel the application context, this stops the watcher
	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	// Graceful HTTP server shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}

	if app.components.Telemetry != nil {
		if err := app.components.Telemetry.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown telemetry: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *ConsoleApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *ConsoleApp) GetHTTPServer() *http.Server {
	return app.httpServer
}
