package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/services"
	"reelsync/internal/workflow"
)

// Daemon ties the sync loop and the API server to a single-instance file
// lock. Run blocks until the context is cancelled.
type Daemon struct {
	cfg     *config.Config
	manager *workflow.Manager
	logger  *slog.Logger
}

// New creates a Daemon.
func New(cfg *config.Config, manager *workflow.Manager, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Daemon{
		cfg:     cfg,
		manager: manager,
		logger:  logger.With(logging.String(logging.FieldComponent, "daemon")),
	}
}

// LockPath returns the lock file location for a config.
func LockPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "reelsyncd.lock")
}

// Run acquires the instance lock, starts the sync loop and the API server,
// and blocks until ctx is cancelled. The lock is released on return.
func (d *Daemon) Run(ctx context.Context) error {
	lockPath := LockPath(d.cfg)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return services.Wrap(services.ErrValidation, "daemon", "lock",
			"another reelsyncd instance is already running", nil)
	}
	defer lock.Unlock()

	if err := d.manager.Start(ctx); err != nil {
		return err
	}

	api := NewAPIServer(d.cfg.Paths.APIBind, d.manager, d.logger)
	if err := api.Start(); err != nil {
		d.manager.Stop()
		return fmt.Errorf("start api server: %w", err)
	}

	d.logger.Info("daemon running", logging.String("api_addr", api.Addr()))
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		d.logger.Error("api shutdown failed", logging.Error(err))
	}
	d.manager.Stop()
	d.logger.Info("daemon stopped")
	return nil
}
