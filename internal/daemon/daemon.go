package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"autotex/internal/annocache"
	"autotex/internal/compiler"
	"autotex/internal/config"
	"autotex/internal/logging"
	"autotex/internal/texlog"
)

// Daemon coordinates the annotation service and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *annocache.Store
	compiler  *compiler.Client
	annotator *texlog.Annotator
	logPath   string

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running            bool
	CacheDBPath        string
	CacheEntries       int64
	LockFilePath       string
	CompilerConfigured bool
}

// New constructs a daemon with initialized dependencies. The cache store may
// be nil when caching is disabled.
func New(cfg *config.Config, store *annocache.Store, client *compiler.Client, annotator *texlog.Annotator, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || client == nil || annotator == nil || logger == nil {
		return nil, errors.New("daemon requires config, compiler client, annotator, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "autotexd.lock")
	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		compiler:  client,
		annotator: annotator,
		logPath:   filepath.Join(cfg.Paths.LogDir, "autotex.log"),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another autotex daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}
	if d.store != nil {
		go d.pruneLoop(d.ctx)
	}

	d.running.Store(true)
	d.logger.Info("autotex daemon started", slog.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("autotex daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr returns the bound API address, or empty when the server is not running.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:            d.running.Load(),
		LockFilePath:       d.lockPath,
		CompilerConfigured: d.compiler.Configured(),
	}
	if d.store != nil {
		status.CacheDBPath = d.store.Path()
		if count, err := d.store.Count(ctx); err == nil {
			status.CacheEntries = count
		}
	}
	return status
}

// pruneLoop evicts expired cache entries until the context is cancelled.
func (d *Daemon) pruneLoop(ctx context.Context) {
	retention := time.Duration(d.cfg.Cache.RetentionDays) * 24 * time.Hour
	if retention <= 0 {
		return
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := d.store.Prune(ctx, retention)
			if err != nil {
				d.logger.Warn("cache prune failed", logging.Error(err))
				continue
			}
			if deleted > 0 {
				d.logger.Info("pruned cached annotations", slog.Int64("deleted", deleted))
			}
		}
	}
}
