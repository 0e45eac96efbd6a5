// Package storage provides abstractions for expense record persistence.
package storage

import (
	"context"

	"expensetrack/internal/models"
)

// RecordStore defines the CRUD surface a backing store must offer for one
// identity's expense records. Two implementations exist: the remote store
// bound to an authenticated session, and the device-local guest store.
// The expense core holds exactly one RecordStore at a time, selected by
// the session manager, and never branches on identity kind itself.
type RecordStore interface {
	// CreateRecord persists a new record and returns the authoritative
	// result with the store-assigned ID and timestamps.
	CreateRecord(ctx context.Context, rec models.ExpenseRecord) (models.ExpenseRecord, error)

	// ListRecordsForOwner returns all records whose OwnerID equals ownerID.
	ListRecordsForOwner(ctx context.Context, ownerID string) ([]models.ExpenseRecord, error)

	// UpdateRecord persists rec over the stored record with the same ID and
	// returns the authoritative result (store-assigned UpdatedAt wins).
	// Returns models.ErrNotFound if no such record exists.
	UpdateRecord(ctx context.Context, rec models.ExpenseRecord) (models.ExpenseRecord, error)

	// DeleteRecord removes the record with the given ID.
	// Returns models.ErrNotFound if no such record exists.
	DeleteRecord(ctx context.Context, id string) error
}
