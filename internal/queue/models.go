package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a wishlist item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSearching Status = "searching"
	StatusFound     Status = "found"
	StatusImporting Status = "importing"
	StatusShelved   Status = "shelved"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusSearching,
	StatusFound,
	StatusImporting,
	StatusShelved,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus validates a status string from user input.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// Active reports whether the status denotes an item the daemon is still
// working on.
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusSearching, StatusFound, StatusImporting:
		return true
	default:
		return false
	}
}

// Item represents a wishlist entry persisted in SQLite.
type Item struct {
	ID           int64
	Author       string
	Title        string
	ShelfName    string
	Status       Status
	NzbURL       string
	ErrorMessage string
	AddedVia     string
	LastSearch   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LogEntry is an audit record attached to an item, or to the daemon as a
// whole when ItemID is nil.
type LogEntry struct {
	ID        int64
	ItemID    *int64
	Level     string
	Message   string
	CreatedAt time.Time
}

// HealthSummary describes aggregated wishlist counts per key lifecycle states.
type HealthSummary struct {
	Total     int
	Pending   int
	Searching int
	Found     int
	Importing int
	Shelved   int
	Failed    int
}

// DatabaseHealth captures diagnostic information about the wishlist database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}
