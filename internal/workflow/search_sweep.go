package workflow

import (
	"context"
	"time"

	"bindery/internal/logging"
	"bindery/internal/queue"
	"bindery/internal/services"
)

// searchSweep runs one pass over all pending items. Every failure stays
// inside the sweep: item failures transition that item and move on, store
// failures are logged system-wide and the sweep simply runs again on the
// next tick.
func (m *Manager) searchSweep(ctx context.Context) {
	logger := logging.WithContext(ctx, m.logger)

	items, err := m.store.ItemsByStatus(ctx, queue.StatusPending)
	if err != nil {
		m.setLastError(err)
		logger.Error("search sweep could not list pending items", logging.Error(err))
		_ = m.store.AppendLog(ctx, nil, "error", "search sweep failed: "+err.Error())
		return
	}
	if len(items) == 0 {
		return
	}

	logger.Info("search sweep started", logging.Int("items", len(items)))
	for i, item := range items {
		if ctx.Err() != nil {
			return
		}
		m.processSearchItem(ctx, item)
		if i < len(items)-1 {
			m.pauseBetweenItems(ctx)
		}
	}
}

func (m *Manager) processSearchItem(ctx context.Context, item *queue.Item) {
	ctx = services.WithItemID(ctx, item.ID)
	logger := logging.WithContext(ctx, m.logger)
	m.setLastItem(item)

	now := time.Now().UTC()
	item.Status = queue.StatusSearching
	item.LastSearch = &now
	if err := m.store.Update(ctx, item); err != nil {
		m.setLastError(err)
		logger.Error("could not mark item searching", logging.Error(err))
		return
	}

	release, err := m.searcher.Search(ctx, item.Author, item.Title)
	if err != nil {
		m.failItem(ctx, item, "search", err)
		return
	}
	if release == nil {
		item.Status = queue.StatusPending
		item.ErrorMessage = "no matching release found"
		if err := m.store.Update(ctx, item); err != nil {
			m.setLastError(err)
			logger.Error("could not return item to pending", logging.Error(err))
			return
		}
		_ = m.store.AppendLog(ctx, &item.ID, "info", "no matching release found")
		logger.Info("no matching release", logging.String("author", item.Author), logging.String("title", item.Title))
		return
	}

	item.NzbURL = release.NzbURL
	jobName := item.Author + " - " + item.Title
	if err := m.submitter.Submit(ctx, release.NzbURL, jobName); err != nil {
		// The located link is kept on the failed item so an explicit retry
		// can resubmit without repeating the search.
		m.failItem(ctx, item, "download submission", err)
		return
	}

	item.ErrorMessage = ""
	if item.ShelfName != "" && m.catalog != nil {
		item.Status = queue.StatusImporting
	} else {
		if item.ShelfName != "" {
			logger.Warn("shelf requested but catalog integration is not configured",
				logging.String("shelf", item.ShelfName))
		}
		item.Status = queue.StatusFound
	}
	if err := m.store.Update(ctx, item); err != nil {
		m.setLastError(err)
		logger.Error("could not record submission", logging.Error(err))
		return
	}
	_ = m.store.AppendLog(ctx, &item.ID, "info", "release found and queued for download")
	logger.Info("release queued",
		logging.String("release", release.Title),
		logging.String("status", string(item.Status)),
	)
	if err := m.notifier.NotifyBookFound(ctx, item.Author, item.Title); err != nil {
		logger.Warn("found notification failed", logging.Error(err))
	}
}

// failItem transitions an item to failed with the error recorded, and
// notifies. Used for per-item failures in both sweeps.
func (m *Manager) failItem(ctx context.Context, item *queue.Item, operation string, cause error) {
	logger := logging.WithContext(ctx, m.logger)

	item.Status = queue.StatusFailed
	item.ErrorMessage = cause.Error()
	if err := m.store.Update(ctx, item); err != nil {
		m.setLastError(err)
		logger.Error("could not mark item failed", logging.Error(err))
		return
	}
	_ = m.store.AppendLog(ctx, &item.ID, "error", operation+" failed: "+cause.Error())
	logger.Error(operation+" failed",
		logging.String("author", item.Author),
		logging.String("title", item.Title),
		logging.Error(cause),
	)
	if err := m.notifier.NotifyItemFailed(ctx, item.Author, item.Title, cause.Error()); err != nil {
		logger.Warn("failure notification failed", logging.Error(err))
	}
}
