// Package expense holds the in-memory authoritative expense collection for
// the active identity. The collection mutates only as a reaction to a
// confirmed backing-store result, never optimistically, so memory always
// matches the last known backing-store state.
package expense

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"expensetrack/internal/metrics"
	"expensetrack/internal/models"
	"expensetrack/internal/storage"
)

// Store owns the expense collection for exactly one identity at a time.
// Activating a new identity replaces the collection wholesale; results of
// operations issued under a previous identity are discarded when they
// arrive late (stale-result guard).
type Store struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *metrics.Metrics

	identity models.Identity
	backing  storage.RecordStore
	records  map[string]models.ExpenseRecord
	loaded   bool
	// epoch increments on every activation change; in-flight operations
	// capture it and discard their result if it moved.
	epoch uint64
	// inflight serializes concurrent operations per record id.
	inflight map[string]struct{}
}

// NewStore creates an empty, deactivated store. logger and m may be nil.
func NewStore(logger *slog.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:   logger,
		metrics:  m,
		records:  make(map[string]models.ExpenseRecord),
		inflight: make(map[string]struct{}),
	}
}

// Activate binds the store to an identity and its backing store, discarding
// whatever collection was held before. Call Load before issuing CRUD.
func (s *Store) Activate(identity models.Identity, backing storage.RecordStore) error {
	if !identity.IsActive() {
		return fmt.Errorf("%w: cannot activate an anonymous identity", models.ErrNotAuthenticated)
	}
	if backing == nil {
		return fmt.Errorf("%w: no backing store selected", models.ErrNotAuthenticated)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.backing = backing
	s.records = make(map[string]models.ExpenseRecord)
	s.inflight = make(map[string]struct{})
	s.loaded = false
	s.epoch++
	return nil
}

// Deactivate discards the collection and detaches from the backing store,
// leaving the store unusable until the next Activate.
func (s *Store) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = models.AnonymousIdentity
	s.backing = nil
	s.records = make(map[string]models.ExpenseRecord)
	s.inflight = make(map[string]struct{})
	s.loaded = false
	s.epoch++
}

// Load fetches every record owned by the active identity and replaces the
// in-memory collection wholesale. It must run once per activation before
// any CRUD call.
func (s *Store) Load(ctx context.Context) (err error) {
	defer func() { s.metrics.Operation("load", err) }()

	s.mu.Lock()
	if !s.identity.IsActive() {
		s.mu.Unlock()
		return fmt.Errorf("%w: no active identity", models.ErrNotAuthenticated)
	}
	epoch, backing, ownerID := s.epoch, s.backing, s.identity.UserID
	s.mu.Unlock()

	fetched, err := backing.ListRecordsForOwner(ctx, ownerID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return staleErr()
	}
	records := make(map[string]models.ExpenseRecord, len(fetched))
	for _, rec := range fetched {
		records[rec.ID] = rec
	}
	s.records = records
	s.loaded = true
	s.logger.Debug("collection loaded", "owner_id", ownerID, "records", len(records))
	return nil
}

// Add validates the draft, persists it, and appends the authoritative
// result to memory. A failed write leaves memory untouched.
func (s *Store) Add(ctx context.Context, input models.ExpenseInput) (rec models.ExpenseRecord, err error) {
	defer func() { s.metrics.Operation("add", err) }()

	amount, date, err := input.Validate()
	if err != nil {
		return models.ExpenseRecord{}, err
	}

	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return models.ExpenseRecord{}, err
	}
	epoch, backing := s.epoch, s.backing
	draft := models.ExpenseRecord{
		OwnerID:     s.identity.UserID,
		Title:       input.Title,
		Amount:      amount,
		Category:    input.Category,
		Date:        date,
		Description: input.Description,
	}
	s.mu.Unlock()

	created, err := backing.CreateRecord(ctx, draft)
	if err != nil {
		return models.ExpenseRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return models.ExpenseRecord{}, staleErr()
	}
	s.records[created.ID] = created
	return created, nil
}

// Update merges the patch into the record with the given id, persists the
// merge, and only on success adopts the store's authoritative result.
func (s *Store) Update(ctx context.Context, id string, patch models.ExpensePatch) (rec models.ExpenseRecord, err error) {
	defer func() { s.metrics.Operation("update", err) }()

	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return models.ExpenseRecord{}, err
	}
	current, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return models.ExpenseRecord{}, fmt.Errorf("%w: record %s", models.ErrNotFound, id)
	}
	if err := s.claimLocked(id); err != nil {
		s.mu.Unlock()
		return models.ExpenseRecord{}, err
	}
	epoch, backing := s.epoch, s.backing
	s.mu.Unlock()

	merged, err := patch.Apply(current)
	if err != nil {
		s.release(id, epoch)
		return models.ExpenseRecord{}, err
	}

	updated, err := backing.UpdateRecord(ctx, merged)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// The inflight map was swapped on activation together with the
		// collection; the claim taken under the old epoch is gone, and the
		// current map may hold a claim owned by the new identity.
		return models.ExpenseRecord{}, staleErr()
	}
	delete(s.inflight, id)
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	s.records[id] = updated
	return updated, nil
}

// Remove deletes the record with the given id. The record stays visible
// until the backing store confirms the deletion; a failed delete never
// drops data from memory.
func (s *Store) Remove(ctx context.Context, id string) (err error) {
	defer func() { s.metrics.Operation("remove", err) }()

	s.mu.Lock()
	if err := s.readyLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := s.records[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: record %s", models.ErrNotFound, id)
	}
	if err := s.claimLocked(id); err != nil {
		s.mu.Unlock()
		return err
	}
	epoch, backing := s.epoch, s.backing
	s.mu.Unlock()

	err = backing.DeleteRecord(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return staleErr()
	}
	delete(s.inflight, id)
	if err != nil {
		return err
	}
	delete(s.records, id)
	return nil
}

// Records returns a copy of the current collection. Order is unspecified.
func (s *Store) Records() []models.ExpenseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ExpenseRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out
}

// Get returns the record with the given id, if present.
func (s *Store) Get(id string) (models.ExpenseRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// readyLocked checks that the store is activated and loaded. Callers must
// hold s.mu.
func (s *Store) readyLocked() error {
	if !s.identity.IsActive() || s.backing == nil {
		return fmt.Errorf("%w: no active identity", models.ErrNotAuthenticated)
	}
	if !s.loaded {
		return fmt.Errorf("%w: collection not loaded for this identity", models.ErrConflict)
	}
	return nil
}

// claimLocked marks id as having an in-flight operation. A second
// operation on the same id fails fast instead of interleaving partial
// writes. Callers must hold s.mu.
func (s *Store) claimLocked(id string) error {
	if _, busy := s.inflight[id]; busy {
		return fmt.Errorf("%w: record %s has an operation in flight", models.ErrConflict, id)
	}
	s.inflight[id] = struct{}{}
	return nil
}

// release drops the in-flight claim for id, but only when the claim still
// belongs to the epoch it was taken under.
func (s *Store) release(id string, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		delete(s.inflight, id)
	}
}

// staleErr marks a result that arrived after the identity it was issued
// under was replaced. The result is discarded to prevent cross-identity
// leakage into memory.
func staleErr() error {
	return fmt.Errorf("%w: identity changed while the operation was in flight", models.ErrConflict)
}
