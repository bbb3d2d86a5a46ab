package workflow

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"bindery/internal/config"
	"bindery/internal/logging"
	"bindery/internal/notifications"
	"bindery/internal/queue"
	"bindery/internal/services/calibreweb"
	"bindery/internal/services/sabnzbd"
	"bindery/internal/services/spotweb"
)

// Searcher finds a downloadable release for a wishlist entry.
type Searcher interface {
	Search(ctx context.Context, author, title string) (*spotweb.Release, error)
}

// Submitter hands a release off to the download manager.
type Submitter interface {
	Submit(ctx context.Context, nzbURL, jobName string) error
}

// Catalog locates finished imports and files them onto shelves.
type Catalog = calibreweb.Catalog

// Manager drives wishlist items through the acquisition lifecycle on two
// timers: a search sweep over pending items and an import sweep over items
// waiting to appear in the catalog.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	notifier notifications.Service

	searcher  Searcher
	submitter Submitter
	catalog   Catalog

	searchInterval time.Duration
	importInterval time.Duration
	itemPause      time.Duration
	errorRetry     time.Duration

	// searchRunning serializes search sweeps between the timer and the
	// user-facing trigger.
	searchRunning atomic.Bool
	searchTrigger chan struct{}

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// NewManager constructs a workflow manager wired to the real external
// services. The catalog client is only created when catalog integration is
// configured.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	var catalog Catalog
	if cfg.CalibrewebConfigured() {
		catalog = calibreweb.New(cfg.Calibreweb)
	}
	return NewManagerWithClients(
		cfg,
		store,
		logger,
		notifications.NewService(cfg),
		spotweb.New(cfg.Spotweb, logger),
		sabnzbd.New(cfg.Sabnzbd),
		catalog,
	)
}

// NewManagerWithClients constructs a workflow manager with explicit service
// clients (used in tests).
func NewManagerWithClients(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service, searcher Searcher, submitter Submitter, catalog Catalog) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:            cfg,
		store:          store,
		logger:         logging.NewComponentLogger(logger, "workflow"),
		notifier:       notifier,
		searcher:       searcher,
		submitter:      submitter,
		catalog:        catalog,
		searchInterval: time.Duration(cfg.Workflow.SearchIntervalSeconds) * time.Second,
		importInterval: time.Duration(cfg.Workflow.ImportIntervalSeconds) * time.Second,
		itemPause:      time.Duration(cfg.Workflow.ItemPauseSeconds) * time.Second,
		errorRetry:     time.Duration(cfg.Workflow.ErrorRetrySeconds) * time.Second,
		searchTrigger:  make(chan struct{}, 1),
	}
}

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running       bool
	SearchRunning bool
	LastError     string
	LastItem      *queue.Item
	QueueStats    map[queue.Status]int
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastItem := m.lastItem
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read wishlist stats", logging.Error(err))
	}

	summary := StatusSummary{
		Running:       running,
		SearchRunning: m.searchRunning.Load(),
		QueueStats:    stats,
	}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastItem != nil {
		copied := *lastItem
		summary.LastItem = &copied
	}
	return summary
}

// Catalog exposes the catalog client, or nil when integration is not
// configured.
func (m *Manager) Catalog() Catalog {
	return m.catalog
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *queue.Item) {
	m.mu.Lock()
	if item != nil {
		copied := *item
		m.lastItem = &copied
	} else {
		m.lastItem = nil
	}
	m.mu.Unlock()
}
