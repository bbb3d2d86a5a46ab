package api

import (
	"bindery/internal/queue"
	"bindery/internal/services/calibreweb"
	"bindery/internal/workflow"
)

// FromQueueItem converts a wishlist record to its API representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}

	dto := QueueItem{
		ID:           item.ID,
		Author:       item.Author,
		Title:        item.Title,
		ShelfName:    item.ShelfName,
		Status:       string(item.Status),
		NzbURL:       item.NzbURL,
		ErrorMessage: item.ErrorMessage,
		AddedVia:     item.AddedVia,
	}
	if item.LastSearch != nil && !item.LastSearch.IsZero() {
		dto.LastSearch = item.LastSearch.UTC().Format(dateTimeFormat)
	}
	if !item.CreatedAt.IsZero() {
		dto.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromQueueItems converts a slice of wishlist records into API DTOs.
func FromQueueItems(items []*queue.Item) []QueueItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromLogEntry converts a stored activity log line to its API representation.
func FromLogEntry(entry queue.LogEntry) ItemLog {
	dto := ItemLog{
		ID:      entry.ID,
		ItemID:  entry.ItemID,
		Level:   entry.Level,
		Message: entry.Message,
	}
	if !entry.CreatedAt.IsZero() {
		dto.CreatedAt = entry.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromLogEntries converts stored activity log lines into API DTOs.
func FromLogEntries(entries []queue.LogEntry) []ItemLog {
	if len(entries) == 0 {
		return nil
	}
	out := make([]ItemLog, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromLogEntry(entry))
	}
	return out
}

// FromShelves converts catalog shelves into API DTOs.
func FromShelves(shelves []calibreweb.Shelf) []ShelfInfo {
	if len(shelves) == 0 {
		return nil
	}
	out := make([]ShelfInfo, 0, len(shelves))
	for _, shelf := range shelves {
		out = append(out, ShelfInfo{ID: shelf.ID, Name: shelf.Name})
	}
	return out
}

// FromWorkflowStatus converts a workflow summary into its API representation.
func FromWorkflowStatus(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:       summary.Running,
		SearchRunning: summary.SearchRunning,
		LastError:     summary.LastError,
	}
	if len(summary.QueueStats) > 0 {
		status.QueueStats = make(map[string]int, len(summary.QueueStats))
		for key, count := range summary.QueueStats {
			status.QueueStats[string(key)] = count
		}
	}
	if summary.LastItem != nil {
		item := FromQueueItem(summary.LastItem)
		status.LastItem = &item
	}
	return status
}
