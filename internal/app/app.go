// Package app provides application lifecycle management for the dashboard API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/devpulse/devpulse-api/internal/config"
)

// DashboardApp encapsulates all components needed to run the dashboard API server.
// It provides lifecycle management and graceful shutdown capabilities.
type DashboardApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server
	listener   net.Listener

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the cache sweep, the scheduler and the HTTP server.
// It blocks until the HTTP server stops or encounters an error.
func (app *DashboardApp) Start() error {
	app.components.Cache.Start(app.ctx)
	app.components.Scheduler.Start(app.ctx)

	slog.Info("Server listening", "address", app.httpServer.Addr)

	var err error
	if app.listener != nil {
		err = app.httpServer.Serve(app.listener)
	} else {
		err = app.httpServer.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the application with the given timeout. Timers stop
// first so no new sync starts while the server drains.
func (app *DashboardApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	app.components.Scheduler.Stop()
	app.components.SyncEngine.Shutdown()
	app.components.Cache.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := app.httpServer.Shutdown(shutdownCtx)

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *DashboardApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *DashboardApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired components
func (app *DashboardApp) Components() *AppComponents {
	return app.components
}
