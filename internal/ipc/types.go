package ipc

import "bindery/internal/api"

// StartRequest triggers daemon workflow startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon workflow.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// QueueItem mirrors the API wishlist DTO for IPC callers.
type QueueItem = api.QueueItem

// ItemLog mirrors the API activity log DTO for IPC callers.
type ItemLog = api.ItemLog

// ShelfInfo mirrors the API shelf DTO for IPC callers.
type ShelfInfo = api.ShelfInfo

// StatusResponse represents combined daemon/workflow status information.
type StatusResponse struct {
	Running       bool           `json:"running"`
	SearchRunning bool           `json:"search_running"`
	QueueStats    map[string]int `json:"queue_stats"`
	LastError     string         `json:"last_error"`
	LastItem      *QueueItem     `json:"last_item"`
	LockPath      string         `json:"lock_path"`
	QueueDBPath   string         `json:"queue_db_path"`
	PID           int            `json:"pid"`
}

// AddRequest places a new entry on the wishlist.
type AddRequest struct {
	Author    string `json:"author"`
	Title     string `json:"title"`
	ShelfName string `json:"shelf_name"`
}

// AddResponse returns the created wishlist entry.
type AddResponse struct {
	Item QueueItem `json:"item"`
}

// QueueListRequest filters wishlist listing by status.
type QueueListRequest struct {
	Statuses []string `json:"statuses"`
}

// QueueListResponse contains wishlist entries.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueDescribeRequest fetches a single wishlist entry by id.
type QueueDescribeRequest struct {
	ID int64 `json:"id"`
}

// QueueDescribeResponse contains a single wishlist entry.
type QueueDescribeResponse struct {
	Item QueueItem `json:"item"`
}

// QueueRetryRequest returns searching or failed items to the pending pool.
// An empty list means all eligible items.
type QueueRetryRequest struct {
	IDs []int64 `json:"ids"`
}

// QueueRetryResponse reports number of retried items.
type QueueRetryResponse struct {
	Updated int64 `json:"updated"`
}

// QueueRemoveRequest removes a wishlist entry by ID.
type QueueRemoveRequest struct {
	ID int64 `json:"id"`
}

// QueueRemoveResponse reports whether the entry existed.
type QueueRemoveResponse struct {
	Removed bool `json:"removed"`
}

// SearchNowRequest asks for an immediate search sweep.
type SearchNowRequest struct{}

// SearchNowResponse reports whether the sweep was accepted.
type SearchNowResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// ShelvesRequest lists the catalog shelves.
type ShelvesRequest struct{}

// ShelvesResponse contains catalog shelves.
type ShelvesResponse struct {
	Shelves []ShelfInfo `json:"shelves"`
}

// ItemLogsRequest fetches activity log lines, optionally for one item.
type ItemLogsRequest struct {
	ItemID *int64 `json:"item_id,omitempty"`
	Limit  int    `json:"limit"`
}

// ItemLogsResponse contains activity log lines, newest first.
type ItemLogsResponse struct {
	Logs []ItemLog `json:"logs"`
}

// LogTailRequest fetches daemon log lines based on offset and follow
// semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns daemon log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// QueueHealthRequest fetches aggregate diagnostics.
type QueueHealthRequest struct{}

// QueueHealthResponse reports wishlist health information.
type QueueHealthResponse struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Searching int `json:"searching"`
	Found     int `json:"found"`
	Importing int `json:"importing"`
	Shelved   int `json:"shelved"`
	Failed    int `json:"failed"`
}

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath           string `json:"db_path"`
	DatabaseExists   bool   `json:"database_exists"`
	DatabaseReadable bool   `json:"database_readable"`
	SchemaVersion    string `json:"schema_version"`
	TableExists      bool   `json:"table_exists"`
	IntegrityCheck   bool   `json:"integrity_check"`
	TotalItems       int    `json:"total_items"`
	Error            string `json:"error"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
