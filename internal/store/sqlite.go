package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/foodbridge/cli/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertListings inserts or replaces a batch of cached listings. The
// full listing is kept as JSON; the indexed columns exist only for
// filtering.
func (s *SQLiteStore) UpsertListings(ctx context.Context, listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO listings (
			id, name, description, type, category, status,
			quantity_value, quantity_unit,
			prepared_at, expires_at, created_at, updated_at, fetched_at,
			raw_data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, l := range listings {
		raw, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("marshaling listing %s: %w", l.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			l.ID, l.Name, l.Description, string(l.Type), l.Category, string(l.Status),
			l.Quantity.Value, l.Quantity.Unit,
			l.PreparedAt.UTC(), l.ExpiresAt.UTC(), l.CreatedAt.UTC(), l.UpdatedAt.UTC(), now,
			string(raw),
		)
		if err != nil {
			return fmt.Errorf("upserting listing %s: %w", l.ID, err)
		}
	}

	return tx.Commit()
}

// GetListings retrieves cached listings matching the filter, newest
// first by update time.
func (s *SQLiteStore) GetListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*filter.Type))
	}

	query := "SELECT raw_data FROM listings"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning listing row: %w", err)
		}
		var l model.Listing
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			return nil, fmt.Errorf("unmarshaling cached listing: %w", err)
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// GetListingByID retrieves a single cached listing.
func (s *SQLiteStore) GetListingByID(ctx context.Context, id string) (*model.Listing, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, "SELECT raw_data FROM listings WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting listing %s: %w", id, err)
	}

	var l model.Listing
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return nil, fmt.Errorf("unmarshaling cached listing %s: %w", id, err)
	}

	return &l, nil
}

// DeleteListing removes a cached listing by ID.
func (s *SQLiteStore) DeleteListing(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM listings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting listing %s: %w", id, err)
	}
	return nil
}

// AppendNotification inserts a notification history record.
func (s *SQLiteStore) AppendNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	payload := string(n.Payload)
	if payload == "" {
		payload = "{}"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, event, payload, read, received_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.ID, string(n.Event), payload, boolToInt(n.Read), n.ReceivedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("appending notification: %w", err)
	}

	return nil
}

// GetNotifications retrieves history entries, newest first.
func (s *SQLiteStore) GetNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	query := "SELECT id, event, payload, read, received_at FROM notifications ORDER BY received_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var (
			n          model.Notification
			event      string
			payload    string
			readInt    int
			receivedAt time.Time
		)
		if err := rows.Scan(&n.ID, &event, &payload, &readInt, &receivedAt); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Event = model.EventName(event)
		n.Payload = json.RawMessage(payload)
		n.Read = readInt != 0
		n.ReceivedAt = receivedAt
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkAllNotificationsRead marks every history entry as read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1")
	if err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	return nil
}

// ClearNotifications drops the entire history, as happens on logout.
func (s *SQLiteStore) ClearNotifications(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM notifications")
	if err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}
	return nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
