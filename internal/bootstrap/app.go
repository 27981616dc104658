package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/avallejos/visitauth/internal/infra/config"
	"github.com/avallejos/visitauth/internal/infra/userstore"
)

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	store  userstore.Store
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, store userstore.Store) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, store: store}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address, "adapter", a.cfg.Store.Adapter)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return a.closeStore()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return a.closeStore()
		}
		return err
	}
}

func (a *App) closeStore() error {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
		return err
	}
	return nil
}
