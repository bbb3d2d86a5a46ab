package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"bindery/internal/config"
)

// ErrDuplicate is returned by Add when an author and title pair is already
// on the wishlist.
var ErrDuplicate = errors.New("item already on wishlist")

// Store manages wishlist persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the wishlist database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "bindery.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Add inserts a new wishlist item in the pending state. The author and
// title pair is unique, compared case-insensitively.
func (s *Store) Add(ctx context.Context, author, title, shelfName, addedVia string) (*Item, error) {
	author = strings.TrimSpace(author)
	title = strings.TrimSpace(title)
	if author == "" || title == "" {
		return nil, errors.New("author and title are required")
	}

	var count int
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM wishlist_items WHERE lower(author) = lower(?) AND lower(title) = lower(?)`,
		author,
		title,
	)
	if err := row.Scan(&count); err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicate
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO wishlist_items (
            author, title, shelf_name, status, added_via, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		author,
		title,
		nullableString(strings.TrimSpace(shelfName)),
		StatusPending,
		nullableString(addedVia),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.AppendLog(ctx, &id, "info", fmt.Sprintf("added to wishlist: %s / %s", author, title))
	return item, nil
}

// GetByID fetches a wishlist item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM wishlist_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing wishlist item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE wishlist_items
         SET author = ?, title = ?, shelf_name = ?, status = ?, nzb_url = ?,
             error_message = ?, added_via = ?, last_search = ?, updated_at = ?
         WHERE id = ?`,
		item.Author,
		item.Title,
		nullableString(item.ShelfName),
		item.Status,
		nullableString(item.NzbURL),
		nullableString(item.ErrorMessage),
		nullableString(item.AddedVia),
		nullableTime(item.LastSearch),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// ItemsByStatus returns items matching a status ordered by creation time.
func (s *Store) ItemsByStatus(ctx context.Context, status Status) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM wishlist_items WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("query by status: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns wishlist items filtered by status set (or all items when no
// status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM wishlist_items`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Retry moves failed or stuck-searching items back to pending. With no ids
// every retryable item is reset. The stored NZB link is kept so a retried
// import does not repeat the search.
func (s *Store) Retry(ctx context.Context, ids ...int64) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE wishlist_items
            SET status = ?, error_message = NULL, updated_at = ?
            WHERE status IN (?, ?)`,
			StatusPending,
			timestamp,
			StatusSearching,
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry items: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+4)
	args = append(args, StatusPending, timestamp, StatusSearching, StatusFailed)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE wishlist_items
        SET status = ?, error_message = NULL, updated_at = ?
        WHERE status IN (?, ?) AND id IN (` + placeholders + `)`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}

// ResetStuckSearching returns items left mid-search by an interrupted
// daemon back to pending.
func (s *Store) ResetStuckSearching(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE wishlist_items SET status = ?, updated_at = ? WHERE status = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusSearching,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

// Remove deletes an item by identifier. Attached log entries are removed
// with it.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wishlist_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// AppendLog records an audit entry. A nil itemID attaches the entry to the
// daemon rather than a specific item.
func (s *Store) AppendLog(ctx context.Context, itemID *int64, level, message string) error {
	var idValue any
	if itemID != nil {
		idValue = *itemID
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO wishlist_logs (item_id, level, message, created_at) VALUES (?, ?, ?, ?)`,
		idValue,
		level,
		message,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// Logs returns the most recent audit entries, newest first. A nil itemID
// returns entries across all items.
func (s *Store) Logs(ctx context.Context, itemID *int64, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows *sql.Rows
		err  error
	)
	if itemID != nil {
		rows, err = s.db.QueryContext(
			ctx,
			`SELECT id, item_id, level, message, created_at FROM wishlist_logs WHERE item_id = ? ORDER BY id DESC LIMIT ?`,
			*itemID,
			limit,
		)
	} else {
		rows, err = s.db.QueryContext(
			ctx,
			`SELECT id, item_id, level, message, created_at FROM wishlist_logs ORDER BY id DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var (
			entry      LogEntry
			itemIDCol  sql.NullInt64
			createdRaw string
		)
		if err := rows.Scan(&entry.ID, &itemIDCol, &entry.Level, &entry.Message, &createdRaw); err != nil {
			return nil, err
		}
		if itemIDCol.Valid {
			id := itemIDCol.Int64
			entry.ItemID = &id
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			entry.CreatedAt = created
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats returns a count of items grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM wishlist_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("wishlist stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates wishlist state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusSearching:
			health.Searching += count
		case StatusFound:
			health.Found += count
		case StatusImporting:
			health.Importing += count
		case StatusShelved:
			health.Shelved += count
		case StatusFailed:
			health.Failed += count
		}
	}
	return health, nil
}

// CheckHealth returns diagnostic information about the wishlist database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("wishlist database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat wishlist database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("wishlist database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("wishlist database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping wishlist database: %w", err)
	}
	health.DatabaseReadable = true

	var version sql.NullString
	row := s.db.QueryRowContext(connCtx, "SELECT MAX(version) FROM schema_migrations")
	if err := row.Scan(&version); err == nil && version.Valid {
		health.SchemaVersion = version.String
	}

	var tableName string
	row = s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'wishlist_items'")
	if err := row.Scan(&tableName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			health.TableExists = false
		} else {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM wishlist_items")
		if err := row.Scan(&health.TotalItems); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count wishlist items: %w", err)
		}
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

const itemColumns = "id, author, title, shelf_name, status, nzb_url, error_message, added_via, last_search, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id            int64
		author        string
		title         string
		shelfName     sql.NullString
		statusStr     string
		nzbURL        sql.NullString
		errorMessage  sql.NullString
		addedVia      sql.NullString
		lastSearchRaw sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&author,
		&title,
		&shelfName,
		&statusStr,
		&nzbURL,
		&errorMessage,
		&addedVia,
		&lastSearchRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:           id,
		Author:       author,
		Title:        title,
		ShelfName:    shelfName.String,
		Status:       Status(statusStr),
		NzbURL:       nzbURL.String,
		ErrorMessage: errorMessage.String,
		AddedVia:     addedVia.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if lastSearchRaw.Valid {
		if searched, err := parseTimeString(lastSearchRaw.String); err == nil {
			item.LastSearch = &searched
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
