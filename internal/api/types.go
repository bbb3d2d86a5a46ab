package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a wishlist entry in a transport-friendly format.
type QueueItem struct {
	ID           int64  `json:"id"`
	Author       string `json:"author"`
	Title        string `json:"title"`
	ShelfName    string `json:"shelfName,omitempty"`
	Status       string `json:"status"`
	NzbURL       string `json:"nzbUrl,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	AddedVia     string `json:"addedVia,omitempty"`
	LastSearch   string `json:"lastSearch,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// ItemLog is a single activity log line attached to a wishlist entry.
type ItemLog struct {
	ID        int64  `json:"id"`
	ItemID    *int64 `json:"itemId,omitempty"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ShelfInfo describes a catalog shelf.
type ShelfInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running       bool           `json:"running"`
	SearchRunning bool           `json:"searchRunning"`
	QueueStats    map[string]int `json:"queueStats"`
	LastError     string         `json:"lastError,omitempty"`
	LastItem      *QueueItem     `json:"lastItem,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	QueueDBPath  string         `json:"queueDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// QueueListResponse wraps a collection of wishlist entries for API responses.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single wishlist entry.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}
