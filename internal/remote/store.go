// Package remote defines the contract for the remote persistent service
// that backs authenticated sessions. The wire protocol, retries, and other
// transport details of a production backend live behind this interface and
// are out of scope here; Memory provides a complete in-process reference
// implementation for tests and local development.
package remote

import (
	"context"

	"expensetrack/internal/models"
)

// Account is a registered remote account.
type Account struct {
	UserID      string
	Email       string
	DisplayName string
	CreatedAt   int64
}

// Session is an active remote session. Token authenticates subsequent
// record operations until the session is ended or expires.
type Session struct {
	Token       string
	UserID      string
	Email       string
	DisplayName string
}

// Store is the remote persistent service. Implementations classify their
// native failures into the models error taxonomy: models.ErrConflict for a
// duplicate email, models.ErrNotAuthenticated for a rejected credential or
// token, models.ErrNotFound for a missing record, models.ErrRateLimited
// for throttling, and models.ErrTransport for anything network-shaped.
type Store interface {
	// CreateAccount registers a new account. It does not establish a
	// session; the caller logs in separately.
	CreateAccount(ctx context.Context, email, password, displayName string) (Account, error)

	// Login verifies credentials and opens a new session.
	Login(ctx context.Context, email, password string) (Session, error)

	// CurrentSession validates token and returns the session it belongs
	// to. An invalid or expired token yields models.ErrNotAuthenticated.
	CurrentSession(ctx context.Context, token string) (Session, error)

	// EndAllSessions invalidates every session of the token's account.
	EndAllSessions(ctx context.Context, token string) error

	// Record operations mirror storage.RecordStore but additionally carry
	// the session token; every call is authorized against it.
	CreateRecord(ctx context.Context, token string, rec models.ExpenseRecord) (models.ExpenseRecord, error)
	ListRecordsForOwner(ctx context.Context, token, ownerID string) ([]models.ExpenseRecord, error)
	UpdateRecord(ctx context.Context, token string, rec models.ExpenseRecord) (models.ExpenseRecord, error)
	DeleteRecord(ctx context.Context, token, id string) error
}
