package remote

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"expensetrack/internal/models"
)

// Ensure Memory implements Store.
var _ Store = (*Memory)(nil)

// Memory is an in-process reference implementation of Store used by unit
// tests and local development. Accounts are held in maps, passwords are
// bcrypt-hashed, and sessions are HS256 JWTs so the token handling matches
// what a real backend would do. An injected error (SetError) lets tests
// exercise transport and rate-limit failure paths.
type Memory struct {
	mu     sync.Mutex
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	// users is keyed by email; records by owner id, then record id.
	users   map[string]*memoryAccount
	records map[string]map[string]models.ExpenseRecord
	err     error
}

type memoryAccount struct {
	account      Account
	passwordHash []byte
	// sessionEpoch is embedded in issued tokens; bumping it invalidates
	// every outstanding session for the account.
	sessionEpoch int64
}

type sessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Epoch  int64  `json:"session_epoch"`
	jwt.RegisteredClaims
}

// NewMemory creates an empty in-memory backend. secret signs session
// tokens; ttl bounds their lifetime.
func NewMemory(secret string, ttl time.Duration) *Memory {
	return &Memory{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		users:   make(map[string]*memoryAccount),
		records: make(map[string]map[string]models.ExpenseRecord),
	}
}

// SetError makes every subsequent call fail with err until cleared with
// SetError(nil). Pass models.ErrTransport or models.ErrRateLimited to
// simulate the corresponding backend condition.
func (m *Memory) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetClock overrides the time source, for tests that exercise expiry.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// CreateAccount registers a new account without opening a session.
func (m *Memory) CreateAccount(_ context.Context, email, password, displayName string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Account{}, m.err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, exists := m.users[email]; exists {
		return Account{}, fmt.Errorf("%w: email already registered", models.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("failed to hash password: %w", err)
	}
	account := Account{
		UserID:      uuid.New().String(),
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   m.now().Unix(),
	}
	m.users[email] = &memoryAccount{account: account, passwordHash: hash}
	return account, nil
}

// Login verifies credentials and issues a fresh session token.
func (m *Memory) Login(_ context.Context, email, password string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Session{}, m.err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	user, ok := m.users[email]
	if !ok {
		return Session{}, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)); err != nil {
		return Session{}, models.ErrInvalidCredentials
	}
	token, err := m.signToken(user)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:       token,
		UserID:      user.account.UserID,
		Email:       user.account.Email,
		DisplayName: user.account.DisplayName,
	}, nil
}

// CurrentSession validates token and returns its session.
func (m *Memory) CurrentSession(_ context.Context, token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Session{}, m.err
	}
	user, err := m.authorize(token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:       token,
		UserID:      user.account.UserID,
		Email:       user.account.Email,
		DisplayName: user.account.DisplayName,
	}, nil
}

// EndAllSessions invalidates every outstanding token for the account.
func (m *Memory) EndAllSessions(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	user, err := m.authorize(token)
	if err != nil {
		return err
	}
	user.sessionEpoch++
	return nil
}

// CreateRecord persists a new record for the token's account.
func (m *Memory) CreateRecord(_ context.Context, token string, rec models.ExpenseRecord) (models.ExpenseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.ExpenseRecord{}, m.err
	}
	user, err := m.authorize(token)
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	rec.ID = uuid.New().String()
	rec.OwnerID = user.account.UserID
	rec.CreatedAt = m.now().Unix()
	rec.UpdatedAt = rec.CreatedAt
	owned := m.records[rec.OwnerID]
	if owned == nil {
		owned = make(map[string]models.ExpenseRecord)
		m.records[rec.OwnerID] = owned
	}
	owned[rec.ID] = rec
	return rec, nil
}

// ListRecordsForOwner returns all records owned by ownerID.
func (m *Memory) ListRecordsForOwner(_ context.Context, token, ownerID string) ([]models.ExpenseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	user, err := m.authorize(token)
	if err != nil {
		return nil, err
	}
	if user.account.UserID != ownerID {
		return nil, fmt.Errorf("%w: records belong to another account", models.ErrNotAuthenticated)
	}
	owned := m.records[ownerID]
	out := make([]models.ExpenseRecord, 0, len(owned))
	for _, rec := range owned {
		out = append(out, rec)
	}
	return out, nil
}

// UpdateRecord replaces the stored record and stamps UpdatedAt.
func (m *Memory) UpdateRecord(_ context.Context, token string, rec models.ExpenseRecord) (models.ExpenseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.ExpenseRecord{}, m.err
	}
	user, err := m.authorize(token)
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	owned := m.records[user.account.UserID]
	stored, ok := owned[rec.ID]
	if !ok {
		return models.ExpenseRecord{}, fmt.Errorf("%w: record %s", models.ErrNotFound, rec.ID)
	}
	rec.OwnerID = stored.OwnerID
	rec.CreatedAt = stored.CreatedAt
	rec.UpdatedAt = m.now().Unix()
	owned[rec.ID] = rec
	return rec, nil
}

// DeleteRecord removes the record with the given ID.
func (m *Memory) DeleteRecord(_ context.Context, token, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	user, err := m.authorize(token)
	if err != nil {
		return err
	}
	owned := m.records[user.account.UserID]
	if _, ok := owned[id]; !ok {
		return fmt.Errorf("%w: record %s", models.ErrNotFound, id)
	}
	delete(owned, id)
	return nil
}

func (m *Memory) signToken(user *memoryAccount) (string, error) {
	now := m.now()
	claims := &sessionClaims{
		UserID: user.account.UserID,
		Email:  user.account.Email,
		Epoch:  user.sessionEpoch,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// authorize validates the token and returns the account it belongs to.
// Callers must hold m.mu.
func (m *Memory) authorize(tokenString string) (*memoryAccount, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing session token", models.ErrNotAuthenticated)
	}
	token, err := jwt.ParseWithClaims(
		tokenString,
		&sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrNotAuthenticated, err)
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid session token", models.ErrNotAuthenticated)
	}
	user, ok := m.users[claims.Email]
	if !ok || user.account.UserID != claims.UserID {
		return nil, fmt.Errorf("%w: unknown account", models.ErrNotAuthenticated)
	}
	if user.sessionEpoch != claims.Epoch {
		return nil, fmt.Errorf("%w: session revoked", models.ErrNotAuthenticated)
	}
	return user, nil
}
