package sessions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newSession(id string, now time.Time, idle time.Duration) Session {
	return Session{
		ID:         id,
		UserID:     "user-1",
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(idle),
	}
}

func TestMemoryStore_GetTouchExpire(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore().WithClock(clock.Now)

	if err := store.Create(ctx, newSession("s1", clock.Now(), time.Hour)); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("get fresh session: %v", err)
	}

	clock.Advance(50 * time.Minute)
	if err := store.Touch(ctx, "s1", clock.Now(), clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("touch: %v", err)
	}

	// past the original deadline but within the slid one
	clock.Advance(30 * time.Minute)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("expected touched session to be alive: %v", err)
	}

	clock.Advance(31 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after idle expiry, got %v", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.Create(ctx, newSession("s1", time.Now(), time.Hour))

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete must be idempotent, got %v", err)
	}
	if err := store.Touch(ctx, "s1", time.Now(), time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("touch on deleted session: expected ErrNotFound, got %v", err)
	}
}

func TestSweeper_SweepOnce(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore().WithClock(clock.Now)

	_ = store.Create(ctx, newSession("short", clock.Now(), time.Minute))
	_ = store.Create(ctx, newSession("long", clock.Now(), time.Hour))

	clock.Advance(2 * time.Minute)

	sweeper := NewSweeper(SweeperConfig{Interval: time.Hour}, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	removed, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d sessions, want 1", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("store has %d sessions, want 1", store.Len())
	}
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sweeper := NewSweeper(SweeperConfig{Interval: time.Millisecond}, NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("sweeper did not stop after cancel")
	}
}
