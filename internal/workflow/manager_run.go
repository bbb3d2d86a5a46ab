package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bindery/internal/logging"
	"bindery/internal/services"
)

// ErrSearchRunning is returned by TriggerSearch when a search sweep is
// already in flight. Triggers are rejected rather than queued.
var ErrSearchRunning = errors.New("search already running")

// ErrNotRunning is returned by TriggerSearch when the workflow is stopped.
var ErrNotRunning = errors.New("workflow not running")

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(2)
	m.mu.Unlock()

	// Items left mid-search by a previous run can never progress on their
	// own; put them back in the pool before sweeping.
	if reset, err := m.store.ResetStuckSearching(runCtx); err != nil {
		m.logger.Warn("reset of interrupted searches failed", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("reset interrupted searches", logging.Int64("count", reset))
	}

	go m.runSearchLoop(runCtx)
	go m.runImportLoop(runCtx)

	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// TriggerSearch requests an immediate search sweep. A sweep already in
// flight rejects the trigger; callers report "already running" to the user
// rather than queueing the request.
func (m *Manager) TriggerSearch() error {
	m.mu.RLock()
	running := m.running
	m.mu.RUnlock()
	if !running {
		return ErrNotRunning
	}
	if m.searchRunning.Load() {
		return ErrSearchRunning
	}
	select {
	case m.searchTrigger <- struct{}{}:
		return nil
	default:
		return ErrSearchRunning
	}
}

func (m *Manager) runSearchLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.searchInterval)
	defer ticker.Stop()

	// Run one sweep immediately on startup rather than waiting out the
	// first interval.
	m.runSearchSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runSearchSweep(ctx)
		case <-m.searchTrigger:
			m.runSearchSweep(ctx)
		}
	}
}

func (m *Manager) runImportLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.importInterval)
	defer ticker.Stop()

	m.runImportSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runImportSweep(ctx)
		}
	}
}

// runSearchSweep wraps the sweep body in the mutual-exclusion guard shared
// with TriggerSearch.
func (m *Manager) runSearchSweep(ctx context.Context) {
	if !m.searchRunning.CompareAndSwap(false, true) {
		return
	}
	defer m.searchRunning.Store(false)

	sweepCtx := services.WithSweep(ctx, "search")
	sweepCtx = services.WithRequestID(sweepCtx, uuid.NewString())
	m.searchSweep(sweepCtx)
}

func (m *Manager) runImportSweep(ctx context.Context) {
	sweepCtx := services.WithSweep(ctx, "import")
	sweepCtx = services.WithRequestID(sweepCtx, uuid.NewString())
	m.importSweep(sweepCtx)
}

// pauseBetweenItems spaces out requests against external services.
func (m *Manager) pauseBetweenItems(ctx context.Context) {
	if m.itemPause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(m.itemPause):
	}
}
