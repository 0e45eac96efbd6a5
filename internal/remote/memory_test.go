package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"expensetrack/internal/models"
)

func newTestBackend() *Memory {
	return NewMemory("test-secret", time.Hour)
}

func mustSession(t *testing.T, m *Memory) Session {
	t.Helper()
	ctx := context.Background()
	if _, err := m.CreateAccount(ctx, "alice@example.com", "correct-horse", "Alice"); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	sess, err := m.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return sess
}

func TestMemoryAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate email conflicts", func(t *testing.T) {
		m := newTestBackend()
		if _, err := m.CreateAccount(ctx, "alice@example.com", "password123", "Alice"); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
		_, err := m.CreateAccount(ctx, "Alice@Example.com", "password456", "Alice Again")
		if !errors.Is(err, models.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		m := newTestBackend()
		mustSession(t, m)
		_, err := m.Login(ctx, "alice@example.com", "wrong")
		if !errors.Is(err, models.ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		m := newTestBackend()
		_, err := m.Login(ctx, "nobody@example.com", "whatever")
		if !errors.Is(err, models.ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated", err)
		}
	})
}

func TestMemorySessions(t *testing.T) {
	ctx := context.Background()

	t.Run("token round trip", func(t *testing.T) {
		m := newTestBackend()
		sess := mustSession(t, m)
		current, err := m.CurrentSession(ctx, sess.Token)
		if err != nil {
			t.Fatalf("CurrentSession failed: %v", err)
		}
		if current.UserID != sess.UserID || current.DisplayName != "Alice" {
			t.Errorf("session = %+v, want user %s", current, sess.UserID)
		}
	})

	t.Run("end all sessions revokes tokens", func(t *testing.T) {
		m := newTestBackend()
		sess := mustSession(t, m)
		if err := m.EndAllSessions(ctx, sess.Token); err != nil {
			t.Fatalf("EndAllSessions failed: %v", err)
		}
		if _, err := m.CurrentSession(ctx, sess.Token); !errors.Is(err, models.ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated after revocation", err)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		m := newTestBackend()
		sess := mustSession(t, m)
		m.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
		if _, err := m.CurrentSession(ctx, sess.Token); !errors.Is(err, models.ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated after expiry", err)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		m := newTestBackend()
		mustSession(t, m)
		if _, err := m.CurrentSession(ctx, "not-a-jwt"); !errors.Is(err, models.ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated", err)
		}
	})
}

func TestMemoryRecords(t *testing.T) {
	ctx := context.Background()

	draft := models.ExpenseRecord{
		Title:    "Coffee",
		Amount:   models.Money{Cents: 350},
		Category: models.Food,
		Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("create assigns id, owner and timestamps", func(t *testing.T) {
		m := newTestBackend()
		sess := mustSession(t, m)
		created, err := m.CreateRecord(ctx, sess.Token, draft)
		if err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
		if created.ID == "" || created.OwnerID != sess.UserID || created.CreatedAt == 0 {
			t.Errorf("created = %+v, want assigned id/owner/timestamps", created)
		}
	})

	t.Run("list scoped to owner", func(t *testing.T) {
		m := newTestBackend()
		sess := mustSession(t, m)
		if _, err := m.CreateRecord(ctx, sess.Token, draft); err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
		records, err := m.ListRecordsForOwner(ctx, sess.Token, sess.UserID)
		if err != nil {
			t.Fatalf("ListRecordsForOwner failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if _, err := m.ListRecordsForOwner(ctx, sess.Token, "someone-else"); !errors.Is(err, models.ErrNotAuthenticated) {
			t.Errorf("cross-owner list error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("update stamps UpdatedAt and keeps CreatedAt", func(t *testing.T) {
		m := newTestBackend()
		sess := mustSession(t, m)
		created, err := m.CreateRecord(ctx, sess.Token, draft)
		if err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
		m.SetClock(func() time.Time { return time.Now().Add(time.Minute) })
		created.Title = "Espresso"
		updated, err := m.UpdateRecord(ctx, sess.Token, created)
		if err != nil {
			t.Fatalf("UpdateRecord failed: %v", err)
		}
		if updated.CreatedAt != created.CreatedAt {
			t.Errorf("CreatedAt changed: %d -> %d", created.CreatedAt, updated.CreatedAt)
		}
		if updated.UpdatedAt <= created.CreatedAt {
			t.Errorf("UpdatedAt = %d, want later than CreatedAt %d", updated.UpdatedAt, created.CreatedAt)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		m := newTestBackend()
		sess := mustSession(t, m)
		if _, err := m.UpdateRecord(ctx, sess.Token, models.ExpenseRecord{ID: "missing"}); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("update error = %v, want ErrNotFound", err)
		}
		if err := m.DeleteRecord(ctx, sess.Token, "missing"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("injected failures", func(t *testing.T) {
		m := newTestBackend()
		sess := mustSession(t, m)
		m.SetError(models.ErrTransport)
		if _, err := m.CreateRecord(ctx, sess.Token, draft); !errors.Is(err, models.ErrTransport) {
			t.Errorf("error = %v, want ErrTransport", err)
		}
		m.SetError(models.ErrRateLimited)
		if _, err := m.ListRecordsForOwner(ctx, sess.Token, sess.UserID); !errors.Is(err, models.ErrRateLimited) {
			t.Errorf("error = %v, want ErrRateLimited", err)
		}
		m.SetError(nil)
		if _, err := m.CreateRecord(ctx, sess.Token, draft); err != nil {
			t.Errorf("error after clearing injection: %v", err)
		}
	})
}
