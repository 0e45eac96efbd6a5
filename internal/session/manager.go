// Package session resolves and owns the active identity. The manager is
// the only component that decides which backing store subsequent data
// operations go to; everything downstream works against the
// storage.RecordStore it hands out.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"expensetrack/internal/metrics"
	"expensetrack/internal/models"
	"expensetrack/internal/remote"
	"expensetrack/internal/storage"
	"expensetrack/internal/storage/local"
)

const minPasswordLength = 8

// Manager drives the identity state machine:
//
//	Anonymous -> Authenticated (login)
//	Anonymous -> Guest         (enter guest mode)
//	Authenticated/Guest -> Anonymous (end session)
//
// There is no direct Authenticated <-> Guest transition; callers must end
// the current session first.
type Manager struct {
	mu      sync.Mutex
	remote  remote.Store
	local   *local.Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	identity models.Identity
	token    string
}

// NewManager creates a session manager over the given remote backend and
// local store. logger may be nil; metrics may be nil.
func NewManager(remoteStore remote.Store, localStore *local.Store, logger *slog.Logger, m *metrics.Metrics) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		remote:   remoteStore,
		local:    localStore,
		logger:   logger,
		metrics:  m,
		identity: models.AnonymousIdentity,
	}
}

// Identity returns the currently active identity.
func (m *Manager) Identity() models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// RecordStore returns the backing store for the active identity: the
// remote store bound to the current session token when authenticated, the
// local guest store in guest mode. Fails with models.ErrNotAuthenticated
// when anonymous.
func (m *Manager) RecordStore() (storage.RecordStore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.identity.Kind {
	case models.Authenticated:
		return &remoteRecordStore{remote: m.remote, token: m.token}, nil
	case models.Guest:
		return m.local, nil
	default:
		return nil, fmt.Errorf("%w: no active session", models.ErrNotAuthenticated)
	}
}

// Resolve determines the identity at startup. It fails soft: any failure
// resolving the server session degrades to Anonymous after clearing the
// stale local session hint, so the app always starts in a usable state.
func (m *Manager) Resolve(ctx context.Context) models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.local.SessionToken(ctx)
	if err != nil {
		m.logger.Warn("failed to read session hint, treating as absent", "error", err)
		token = ""
	}
	if token != "" {
		sess, err := m.remote.CurrentSession(ctx, token)
		if err == nil {
			m.token = sess.Token
			m.setIdentity(models.Identity{
				Kind:        models.Authenticated,
				UserID:      sess.UserID,
				DisplayName: sess.DisplayName,
			})
			return m.identity
		}
		// Stale or unreachable session: drop the hint and degrade.
		if clearErr := m.local.ClearSessionToken(ctx); clearErr != nil {
			m.logger.Warn("failed to clear stale session hint", "error", clearErr)
		}
		if errors.Is(err, models.ErrTransport) || errors.Is(err, models.ErrRateLimited) {
			m.logger.Warn("session check unreachable, starting anonymous", "error", err)
		} else {
			m.logger.Info("stored session no longer valid", "error", err)
		}
	}

	guestID, err := m.local.GuestID(ctx)
	if err != nil {
		m.logger.Warn("failed to read guest marker, treating as absent", "error", err)
		guestID = ""
	}
	if guestID != "" {
		m.setIdentity(guestIdentity(guestID))
		return m.identity
	}

	m.setIdentity(models.AnonymousIdentity)
	return m.identity
}

// Login authenticates against the remote store. On failure no local state
// is mutated.
func (m *Manager) Login(ctx context.Context, email, password string) (models.Identity, error) {
	if email == "" {
		return models.AnonymousIdentity, &models.ValidationError{Field: "email", Reason: "empty"}
	}
	if password == "" {
		return models.AnonymousIdentity, &models.ValidationError{Field: "password", Reason: "empty"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity.Kind != models.Anonymous {
		return m.identity, fmt.Errorf("%w: a %s session is already active", models.ErrConflict, m.identity.Kind)
	}

	sess, err := m.remote.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn("login failed", "email", email, "error", err)
		return models.AnonymousIdentity, err
	}

	m.token = sess.Token
	// The persisted hint is an optimization; failing to write it must not
	// fail the login.
	if err := m.local.SetSessionToken(ctx, sess.Token); err != nil {
		m.logger.Warn("failed to persist session hint", "error", err)
	}
	m.setIdentity(models.Identity{
		Kind:        models.Authenticated,
		UserID:      sess.UserID,
		DisplayName: sess.DisplayName,
	})
	m.logger.Info("logged in", "user_id", sess.UserID)
	return m.identity, nil
}

// Register creates a new remote account. It does not establish a session;
// the caller logs in afterwards.
func (m *Manager) Register(ctx context.Context, email, password, confirm, displayName string) error {
	if email == "" {
		return &models.ValidationError{Field: "email", Reason: "empty"}
	}
	if displayName == "" {
		return &models.ValidationError{Field: "display name", Reason: "empty"}
	}
	if len(password) < minPasswordLength {
		return &models.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if password != confirm {
		return &models.ValidationError{Field: "password", Reason: "confirmation does not match"}
	}

	account, err := m.remote.CreateAccount(ctx, email, password, displayName)
	if err != nil {
		m.logger.Warn("registration failed", "email", email, "error", err)
		return err
	}
	m.logger.Info("account registered", "user_id", account.UserID, "email", account.Email)
	return nil
}

// EnterGuest activates the synthetic guest identity, creating it and
// seeding example records on first entry. Re-entering while already in
// guest mode is a no-op and never wipes existing guest data.
func (m *Manager) EnterGuest(ctx context.Context) (models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity.Kind == models.Guest {
		return m.identity, nil
	}
	if m.identity.Kind == models.Authenticated {
		return m.identity, fmt.Errorf("%w: an authenticated session is already active", models.ErrConflict)
	}

	guestID, err := m.local.GuestID(ctx)
	if err != nil {
		return models.AnonymousIdentity, err
	}
	if guestID == "" {
		guestID = "guest-" + uuid.New().String()
		if err := m.local.CreateGuest(ctx, guestID); err != nil {
			return models.AnonymousIdentity, err
		}
		m.seedGuestData(ctx, guestID)
	}

	m.setIdentity(guestIdentity(guestID))
	m.logger.Info("guest mode active", "guest_id", guestID)
	return m.identity, nil
}

// EndSession drives the identity back to Anonymous. The transition always
// happens: a failed remote invalidation or local cleanup is returned for
// reporting but never blocks it. Ending an anonymous session is a no-op.
func (m *Manager) EndSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var reported error
	switch m.identity.Kind {
	case models.Anonymous:
		return nil
	case models.Authenticated:
		if err := m.remote.EndAllSessions(ctx, m.token); err != nil {
			m.logger.Warn("remote session invalidation failed", "error", err)
			reported = fmt.Errorf("remote session invalidation failed: %w", err)
		}
		if err := m.local.ClearSessionToken(ctx); err != nil {
			m.logger.Warn("failed to clear session hint", "error", err)
		}
		m.token = ""
	case models.Guest:
		if err := m.local.ClearGuest(ctx); err != nil {
			m.logger.Warn("failed to clear guest data", "error", err)
			reported = fmt.Errorf("guest data cleanup failed: %w", err)
		}
	}

	m.setIdentity(models.AnonymousIdentity)
	m.logger.Info("session ended")
	return reported
}

// setIdentity records the transition. Callers must hold m.mu.
func (m *Manager) setIdentity(identity models.Identity) {
	m.identity = identity
	m.metrics.Transition(identity.Kind)
}

// seedGuestData populates a brand-new guest collection with a few example
// records so the UI has something to show. Seeding failures are logged and
// skipped; an empty guest collection is still usable.
func (m *Manager) seedGuestData(ctx context.Context, guestID string) {
	examples := []models.ExpenseRecord{
		{Title: "Groceries", Amount: models.Money{Cents: 4250}, Category: models.Food},
		{Title: "Bus ticket", Amount: models.Money{Cents: 275}, Category: models.Travel},
		{Title: "Streaming subscription", Amount: models.Money{Cents: 1299}, Category: models.Entertainment},
	}
	now := time.Now().UTC()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, rec := range examples {
		rec.OwnerID = guestID
		rec.Date = date
		if _, err := m.local.CreateRecord(ctx, rec); err != nil {
			m.logger.Warn("failed to seed guest record", "title", rec.Title, "error", err)
		}
	}
}

func guestIdentity(guestID string) models.Identity {
	return models.Identity{Kind: models.Guest, UserID: guestID, DisplayName: "Guest"}
}

// remoteRecordStore binds the remote store to a session token so it
// satisfies storage.RecordStore.
type remoteRecordStore struct {
	remote remote.Store
	token  string
}

var _ storage.RecordStore = (*remoteRecordStore)(nil)

func (r *remoteRecordStore) CreateRecord(ctx context.Context, rec models.ExpenseRecord) (models.ExpenseRecord, error) {
	return r.remote.CreateRecord(ctx, r.token, rec)
}

func (r *remoteRecordStore) ListRecordsForOwner(ctx context.Context, ownerID string) ([]models.ExpenseRecord, error) {
	return r.remote.ListRecordsForOwner(ctx, r.token, ownerID)
}

func (r *remoteRecordStore) UpdateRecord(ctx context.Context, rec models.ExpenseRecord) (models.ExpenseRecord, error) {
	return r.remote.UpdateRecord(ctx, r.token, rec)
}

func (r *remoteRecordStore) DeleteRecord(ctx context.Context, id string) error {
	return r.remote.DeleteRecord(ctx, r.token, id)
}
