// Package local provides the device-local SQLite store backing guest mode
// and the persisted session hint. Guest records never leave the device and
// are wiped in full when the guest session ends.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"expensetrack/internal/models"
	"expensetrack/internal/storage"
)

// Ensure Store implements storage.RecordStore.
var _ storage.RecordStore = (*Store)(nil)

// Keys in the local_kv table. The guest marker is the presence of keyGuestID.
const (
	keyGuestID      = "guest_id"
	keySessionToken = "session_token"
)

// Store is the device-local persistence layer. All failures surface as
// models.ErrPersistence; there is no network involved.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates (or reopens) the local database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create local store directory: %v", models.ErrPersistence, err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open local store: %v", models.ErrPersistence, err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate local store: %v", models.ErrPersistence, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock overrides the time source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// SessionToken returns the persisted session hint, or "" when none is
// stored. The hint mirrors "a server session is believed active" and is
// never trusted over an actual server check.
func (s *Store) SessionToken(ctx context.Context) (string, error) {
	return s.kvGet(ctx, keySessionToken)
}

// SetSessionToken persists the session hint.
func (s *Store) SetSessionToken(ctx context.Context, token string) error {
	return s.kvSet(ctx, keySessionToken, token)
}

// ClearSessionToken removes the session hint.
func (s *Store) ClearSessionToken(ctx context.Context) error {
	return s.kvDelete(ctx, keySessionToken)
}

// GuestID returns the synthetic guest identity, or "" when guest mode has
// never been entered on this device.
func (s *Store) GuestID(ctx context.Context) (string, error) {
	return s.kvGet(ctx, keyGuestID)
}

// CreateGuest stores the guest marker with the given synthetic id.
func (s *Store) CreateGuest(ctx context.Context, guestID string) error {
	return s.kvSet(ctx, keyGuestID, guestID)
}

// ClearGuest erases the guest marker and every guest record. Guest data is
// ephemeral per definition; this is permanent.
func (s *Store) ClearGuest(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin clear: %v", models.ErrPersistence, err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM guest_expenses"); err != nil {
		return fmt.Errorf("%w: clear guest records: %v", models.ErrPersistence, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM local_kv WHERE key = ?", keyGuestID); err != nil {
		return fmt.Errorf("%w: clear guest marker: %v", models.ErrPersistence, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit clear: %v", models.ErrPersistence, err)
	}
	return nil
}

// CreateRecord persists a new guest record. With no server to assign an
// id, one is synthesized locally.
func (s *Store) CreateRecord(ctx context.Context, rec models.ExpenseRecord) (models.ExpenseRecord, error) {
	rec.ID = uuid.New().String()
	rec.Date = civilDate(rec.Date)
	now := s.now().Unix()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guest_expenses (id, owner_id, title, amount_cents, category, date, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, rec.Title, rec.Amount.Cents, string(rec.Category),
		rec.Date.Format(models.DateLayout), rec.Description, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("%w: insert guest record: %v", models.ErrPersistence, err)
	}
	return rec, nil
}

// ListRecordsForOwner returns every guest record owned by ownerID.
func (s *Store) ListRecordsForOwner(ctx context.Context, ownerID string) ([]models.ExpenseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, amount_cents, category, date, description, created_at, updated_at
		FROM guest_expenses WHERE owner_id = ?`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list guest records: %v", models.ErrPersistence, err)
	}
	defer rows.Close()

	var records []models.ExpenseRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate guest records: %v", models.ErrPersistence, err)
	}
	return records, nil
}

// UpdateRecord replaces the stored record and stamps UpdatedAt.
func (s *Store) UpdateRecord(ctx context.Context, rec models.ExpenseRecord) (models.ExpenseRecord, error) {
	rec.Date = civilDate(rec.Date)
	rec.UpdatedAt = s.now().Unix()
	res, err := s.db.ExecContext(ctx, `
		UPDATE guest_expenses
		SET title = ?, amount_cents = ?, category = ?, date = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		rec.Title, rec.Amount.Cents, string(rec.Category),
		rec.Date.Format(models.DateLayout), rec.Description, rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("%w: update guest record: %v", models.ErrPersistence, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("%w: update guest record: %v", models.ErrPersistence, err)
	}
	if affected == 0 {
		return models.ExpenseRecord{}, fmt.Errorf("%w: record %s", models.ErrNotFound, rec.ID)
	}
	return rec, nil
}

// DeleteRecord removes the record with the given id.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM guest_expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: delete guest record: %v", models.ErrPersistence, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete guest record: %v", models.ErrPersistence, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: record %s", models.ErrNotFound, id)
	}
	return nil
}

func (s *Store) kvGet(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM local_kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", models.ErrPersistence, key, err)
	}
	return value, nil
}

func (s *Store) kvSet(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO local_kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", models.ErrPersistence, key, err)
	}
	return nil
}

func (s *Store) kvDelete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM local_kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: delete %s: %v", models.ErrPersistence, key, err)
	}
	return nil
}

// civilDate truncates to the calendar day that actually gets persisted,
// so a returned record equals what a later reload yields.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scanRecord(rows *sql.Rows) (models.ExpenseRecord, error) {
	var rec models.ExpenseRecord
	var category, date string
	if err := rows.Scan(
		&rec.ID, &rec.OwnerID, &rec.Title, &rec.Amount.Cents, &category,
		&date, &rec.Description, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("%w: scan guest record: %v", models.ErrPersistence, err)
	}
	rec.Category = models.Category(category)
	parsed, err := models.ParseDate(date)
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("%w: corrupt date %q", models.ErrPersistence, date)
	}
	rec.Date = parsed
	return rec, nil
}
