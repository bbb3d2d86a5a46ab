package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"bindery/internal/config"
	"bindery/internal/logging"
	"bindery/internal/notifications"
	"bindery/internal/queue"
	"bindery/internal/services/calibreweb"
	"bindery/internal/workflow"
)

// Daemon coordinates the background workflow and enforces single-instance
// execution through a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	logPath  string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Workflow     workflow.StatusSummary
	QueueDBPath  string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager, logPath string) (*Daemon, error) {
	if cfg == nil || store == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, and workflow manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "binderyd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		workflow: wf,
		logPath:  logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the workflow manager.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another bindery daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.workflow.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start workflow: %w", err)
	}
	d.cancel = cancel

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// AddItem places a new entry on the wishlist.
func (d *Daemon) AddItem(ctx context.Context, author, title, shelfName, addedVia string) (*queue.Item, error) {
	author = strings.TrimSpace(author)
	title = strings.TrimSpace(title)
	if author == "" || title == "" {
		return nil, errors.New("author and title are required")
	}
	if addedVia == "" {
		addedVia = "ipc"
	}
	item, err := d.store.Add(ctx, author, title, strings.TrimSpace(shelfName), addedVia)
	if err != nil {
		return nil, err
	}
	d.logger.Info("wishlist item added",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("author", author),
		logging.String("title", title),
	)
	return item, nil
}

// ListQueue returns wishlist items filtered by optional statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Item, error) {
	return d.store.List(ctx, statuses...)
}

// GetQueueItem returns a single wishlist item, or nil when absent.
func (d *Daemon) GetQueueItem(ctx context.Context, id int64) (*queue.Item, error) {
	return d.store.GetByID(ctx, id)
}

// RetryItems returns searching or failed items to the pending pool.
func (d *Daemon) RetryItems(ctx context.Context, ids []int64) (int64, error) {
	return d.store.Retry(ctx, ids...)
}

// RemoveItem deletes a wishlist item and its activity log.
func (d *Daemon) RemoveItem(ctx context.Context, id int64) (bool, error) {
	return d.store.Remove(ctx, id)
}

// TriggerSearch requests an immediate search sweep from the workflow.
func (d *Daemon) TriggerSearch() error {
	return d.workflow.TriggerSearch()
}

// Shelves lists the shelves known to the catalog.
func (d *Daemon) Shelves(ctx context.Context) ([]calibreweb.Shelf, error) {
	catalog := d.workflow.Catalog()
	if catalog == nil {
		return nil, errors.New("catalog integration is not configured")
	}
	return catalog.Shelves(ctx)
}

// ItemLogs returns activity log lines, optionally scoped to one item.
func (d *Daemon) ItemLogs(ctx context.Context, itemID *int64, limit int) ([]queue.LogEntry, error) {
	return d.store.Logs(ctx, itemID, limit)
}

// QueueHealth returns aggregate wishlist diagnostics.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	return d.store.CheckHealth(ctx)
}

// TestNotification triggers a test notification using the current
// configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Workflow:     d.workflow.Status(ctx),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
	}
}
