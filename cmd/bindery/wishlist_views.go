package main

import (
	"strconv"
	"strings"

	"bindery/internal/ipc"
	"bindery/internal/queue"
)

// statusDisplayOrder fixes the row order in status tables to the lifecycle
// order rather than map iteration order.
var statusDisplayOrder = []queue.Status{
	queue.StatusPending,
	queue.StatusSearching,
	queue.StatusFound,
	queue.StatusImporting,
	queue.StatusShelved,
	queue.StatusFailed,
}

func buildQueueStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(stats))
	seen := make(map[string]bool, len(stats))
	for _, status := range statusDisplayOrder {
		key := string(status)
		if count, ok := stats[key]; ok {
			rows = append(rows, []string{key, strconv.Itoa(count)})
			seen[key] = true
		}
	}
	for key, count := range stats {
		if !seen[key] {
			rows = append(rows, []string{key, strconv.Itoa(count)})
		}
	}
	return rows
}

func buildWishlistRows(items []ipc.QueueItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		shelf := item.ShelfName
		if shelf == "" {
			shelf = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.Author,
			item.Title,
			item.Status,
			shelf,
			truncate(item.ErrorMessage, 48),
		})
	}
	return rows
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
