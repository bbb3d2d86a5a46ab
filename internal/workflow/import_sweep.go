package workflow

import (
	"context"
	"fmt"

	"bindery/internal/logging"
	"bindery/internal/queue"
	"bindery/internal/services"
)

// importSweep runs one pass over items whose download was submitted and
// which wait for the book to surface in the catalog.
func (m *Manager) importSweep(ctx context.Context) {
	if m.catalog == nil {
		return
	}
	logger := logging.WithContext(ctx, m.logger)

	items, err := m.store.ItemsByStatus(ctx, queue.StatusImporting)
	if err != nil {
		m.setLastError(err)
		logger.Error("import sweep could not list importing items", logging.Error(err))
		_ = m.store.AppendLog(ctx, nil, "error", "import sweep failed: "+err.Error())
		return
	}
	if len(items) == 0 {
		return
	}

	logger.Info("import sweep started", logging.Int("items", len(items)))
	for i, item := range items {
		if ctx.Err() != nil {
			return
		}
		m.processImportItem(ctx, item)
		if i < len(items)-1 {
			m.pauseBetweenItems(ctx)
		}
	}
}

func (m *Manager) processImportItem(ctx context.Context, item *queue.Item) {
	ctx = services.WithItemID(ctx, item.ID)
	logger := logging.WithContext(ctx, m.logger)
	m.setLastItem(item)

	if item.ShelfName == "" {
		item.Status = queue.StatusFound
		item.ErrorMessage = ""
		if err := m.store.Update(ctx, item); err != nil {
			m.setLastError(err)
			logger.Error("could not resolve item without shelf", logging.Error(err))
			return
		}
		_ = m.store.AppendLog(ctx, &item.ID, "info", "no shelf requested, download complete")
		return
	}

	book, err := m.catalog.FindBook(ctx, item.Author, item.Title)
	if err != nil {
		m.handleImportError(ctx, item, "catalog search", err)
		return
	}
	if book == nil {
		// Not imported yet; the next sweep tries again.
		logger.Debug("not in catalog yet",
			logging.String("author", item.Author),
			logging.String("title", item.Title),
		)
		return
	}

	shelf, err := m.catalog.ResolveShelf(ctx, item.ShelfName)
	if err != nil {
		m.handleImportError(ctx, item, "shelf resolution", err)
		return
	}
	if shelf == nil {
		// The shelf may be created later; keep retrying but surface the
		// problem on the item.
		message := fmt.Sprintf("shelf %q not found in catalog", item.ShelfName)
		if item.ErrorMessage != message {
			item.ErrorMessage = message
			if err := m.store.Update(ctx, item); err != nil {
				m.setLastError(err)
				return
			}
			_ = m.store.AppendLog(ctx, &item.ID, "warn", message)
		}
		logger.Warn("requested shelf not found", logging.String("shelf", item.ShelfName))
		return
	}

	if err := m.catalog.AddToShelf(ctx, book.ID, shelf.ID); err != nil {
		m.handleImportError(ctx, item, "shelf assignment", err)
		return
	}

	item.Status = queue.StatusShelved
	item.ErrorMessage = ""
	if err := m.store.Update(ctx, item); err != nil {
		m.setLastError(err)
		logger.Error("could not mark item shelved", logging.Error(err))
		return
	}
	_ = m.store.AppendLog(ctx, &item.ID, "info", fmt.Sprintf("added to shelf %q", shelf.Name))
	logger.Info("book shelved",
		logging.String("author", item.Author),
		logging.String("title", item.Title),
		logging.String("shelf", shelf.Name),
	)
	if err := m.notifier.NotifyBookShelved(ctx, item.Author, item.Title, shelf.Name); err != nil {
		logger.Warn("shelved notification failed", logging.Error(err))
	}
}

// handleImportError keeps items with recoverable catalog problems in the
// importing state for the next sweep; anything else fails the item.
func (m *Manager) handleImportError(ctx context.Context, item *queue.Item, operation string, cause error) {
	if !services.IsRetryable(cause) {
		m.failItem(ctx, item, operation, cause)
		return
	}

	logger := logging.WithContext(ctx, m.logger)
	item.ErrorMessage = cause.Error()
	if err := m.store.Update(ctx, item); err != nil {
		m.setLastError(err)
		logger.Error("could not record import error", logging.Error(err))
		return
	}
	_ = m.store.AppendLog(ctx, &item.ID, "warn", operation+" failed: "+cause.Error())
	logger.Warn(operation+" failed, will retry next sweep", logging.Error(cause))
}
