// Package expensetrack is the session-and-data synchronization core of a
// personal expense tracker. It resolves an identity (account session or
// device-local guest), keeps an in-memory expense collection consistent
// with the backing store for that identity, and derives aggregate views on
// demand. The UI layer consumes it in-process; there is no server or CLI
// surface.
package expensetrack

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"expensetrack/internal/config"
	"expensetrack/internal/expense"
	"expensetrack/internal/metrics"
	"expensetrack/internal/models"
	"expensetrack/internal/remote"
	"expensetrack/internal/session"
	"expensetrack/internal/storage/local"
	"expensetrack/internal/summary"
	"expensetrack/pkg/logging"
)

// Tracker wires the session manager and the expense store together and
// keeps them in step: every identity transition replaces the active
// collection before any data operation can observe the new identity.
type Tracker struct {
	logger   *slog.Logger
	local    *local.Store
	Sessions *session.Manager
	Expenses *expense.Store
}

// Options configures Open. Zero values are usable: configuration comes
// from the environment, logging from a tint handler at the configured
// level, and metrics stay unregistered.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry prometheus.Registerer
}

// Open builds a tracker over the given remote backend. The caller supplies
// whichever remote.Store implementation talks to its backend; tests and
// local development use remote.NewMemory.
func Open(remoteStore remote.Store, opts Options) (*Tracker, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Load()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(logging.ParseLevel(cfg.LogLevel))
	}

	localStore, err := local.Open(cfg.LocalDBPath)
	if err != nil {
		return nil, err
	}

	m := metrics.New(opts.Registry)
	return &Tracker{
		logger:   logger,
		local:    localStore,
		Sessions: session.NewManager(remoteStore, localStore, logger, m),
		Expenses: expense.NewStore(logger, m),
	}, nil
}

// Close releases the local store.
func (t *Tracker) Close() error {
	return t.local.Close()
}

// Start resolves the startup identity and, when one is active, loads its
// expense collection. Resolution fails soft, so Start only errors when the
// collection load for a resolved identity fails.
func (t *Tracker) Start(ctx context.Context) (models.Identity, error) {
	identity := t.Sessions.Resolve(ctx)
	if !identity.IsActive() {
		return identity, nil
	}
	return identity, t.activate(ctx, identity)
}

// Login authenticates and loads the account's expense collection.
func (t *Tracker) Login(ctx context.Context, email, password string) (models.Identity, error) {
	identity, err := t.Sessions.Login(ctx, email, password)
	if err != nil {
		return identity, err
	}
	return identity, t.activate(ctx, identity)
}

// Register creates a new remote account. No session is established; call
// Login afterwards.
func (t *Tracker) Register(ctx context.Context, email, password, confirm, displayName string) error {
	return t.Sessions.Register(ctx, email, password, confirm, displayName)
}

// EnterGuest activates guest mode and loads the guest collection.
func (t *Tracker) EnterGuest(ctx context.Context) (models.Identity, error) {
	identity, err := t.Sessions.EnterGuest(ctx)
	if err != nil {
		return identity, err
	}
	return identity, t.activate(ctx, identity)
}

// Logout ends the active session. The collection is discarded first so a
// late-arriving operation result cannot leak into the next identity; the
// identity always lands on Anonymous even if remote cleanup fails.
func (t *Tracker) Logout(ctx context.Context) error {
	t.Expenses.Deactivate()
	return t.Sessions.EndSession(ctx)
}

// Total returns the sum of all expenses in the active collection.
func (t *Tracker) Total() models.Money {
	return summary.Total(t.Expenses.Records())
}

// TotalsByCategory returns per-category totals for the active collection.
func (t *Tracker) TotalsByCategory() map[models.Category]models.Money {
	return summary.TotalsByCategory(t.Expenses.Records())
}

// TopCategory returns the category with the largest total spend.
func (t *Tracker) TopCategory() summary.CategoryTotal {
	return summary.TopCategory(t.Expenses.Records())
}

// activate swaps the expense collection to the given identity's backing
// store and loads it.
func (t *Tracker) activate(ctx context.Context, identity models.Identity) error {
	backing, err := t.Sessions.RecordStore()
	if err != nil {
		return err
	}
	if err := t.Expenses.Activate(identity, backing); err != nil {
		return err
	}
	return t.Expenses.Load(ctx)
}
