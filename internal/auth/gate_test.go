package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kamusku/kamus/internal/auth"
	"github.com/kamusku/kamus/internal/domain/user"
	"github.com/kamusku/kamus/internal/repo/memory"
	"github.com/kamusku/kamus/internal/security"
	"github.com/kamusku/kamus/internal/sessions"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newGate(t *testing.T) (*auth.Gate, *memory.UsersRepo, *clock) {
	t.Helper()

	c := &clock{t: time.Now()}
	users := memory.NewUsersRepo()
	store := sessions.NewMemoryStore().WithClock(c.now)
	tokens := auth.NewTokenManager("test-secret", 7*24*time.Hour)

	g, err := auth.NewGate(users, store, tokens, auth.GateConfig{IdleTTL: time.Hour})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	hash, err := security.HashPassword("admin123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := users.Create(context.Background(), "admin", "admin123@gmail.com", hash); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	return g.WithClock(c.now), users, c
}

func TestGate_Login(t *testing.T) {
	g, _, _ := newGate(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "success", email: "admin123@gmail.com", password: "admin123"},
		{name: "email_is_normalized", email: "  Admin123@Gmail.com ", password: "admin123"},
		{name: "wrong_password", email: "admin123@gmail.com", password: "nope", wantErr: auth.ErrInvalidCredentials},
		{name: "unknown_email", email: "ghost@example.com", password: "admin123", wantErr: auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ticket, err := g.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got err %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if u.Username != "admin" {
				t.Fatalf("unexpected user: %+v", u)
			}
			if ticket.Token == "" {
				t.Fatalf("expected a session token")
			}
		})
	}
}

func TestGate_RequireAuthenticated(t *testing.T) {
	g, _, c := newGate(t)
	ctx := context.Background()

	_, ticket, err := g.Login(ctx, "admin123@gmail.com", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	u, err := g.RequireAuthenticated(ctx, ticket.Token)
	if err != nil {
		t.Fatalf("require: %v", err)
	}
	if u.Email != "admin123@gmail.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	for _, token := range []string{"", "garbage"} {
		if _, err := g.RequireAuthenticated(ctx, token); !errors.Is(err, auth.ErrAuthRequired) {
			t.Fatalf("token %q: expected ErrAuthRequired, got %v", token, err)
		}
	}

	// activity slides the idle deadline
	c.t = c.t.Add(50 * time.Minute)
	if _, err := g.RequireAuthenticated(ctx, ticket.Token); err != nil {
		t.Fatalf("require after 50m: %v", err)
	}
	c.t = c.t.Add(50 * time.Minute)
	if _, err := g.RequireAuthenticated(ctx, ticket.Token); err != nil {
		t.Fatalf("require after another 50m: %v", err)
	}

	c.t = c.t.Add(61 * time.Minute)
	if _, err := g.RequireAuthenticated(ctx, ticket.Token); !errors.Is(err, auth.ErrAuthRequired) {
		t.Fatalf("idle session: expected ErrAuthRequired, got %v", err)
	}
}

func TestGate_Logout(t *testing.T) {
	g, _, _ := newGate(t)
	ctx := context.Background()

	_, ticket, err := g.Login(ctx, "admin123@gmail.com", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := g.Logout(ctx, ticket.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := g.RequireAuthenticated(ctx, ticket.Token); !errors.Is(err, auth.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired after logout, got %v", err)
	}

	if err := g.Logout(ctx, ticket.Token); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := g.Logout(ctx, "garbage"); err != nil {
		t.Fatalf("logout with garbage token: %v", err)
	}
}

func TestGate_Register(t *testing.T) {
	g, users, _ := newGate(t)
	ctx := context.Background()

	u, ticket, err := g.Register(ctx, "editor", "Editor@Example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "editor@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash == "password123" || u.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	stored, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if err := security.CheckPassword(stored.PasswordHash, "password123"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	if _, err := g.RequireAuthenticated(ctx, ticket.Token); err != nil {
		t.Fatalf("registration should log the user in: %v", err)
	}

	if _, _, err := g.Register(ctx, "editor", "new@example.com", "password123"); !errors.Is(err, user.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, _, err := g.Register(ctx, "someone", "ADMIN123@gmail.com", "password123"); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGate_RegisterReportsUsernameBeforeEmail(t *testing.T) {
	g, _, _ := newGate(t)
	ctx := context.Background()

	if _, _, err := g.Register(ctx, "editor", "editor@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// username belongs to admin, email to editor
	if _, _, err := g.Register(ctx, "admin", "editor@example.com", "password123"); !errors.Is(err, user.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestGate_RegisterRejectsPasswordOverByteLimit(t *testing.T) {
	g, users, _ := newGate(t)
	ctx := context.Background()

	_, _, err := g.Register(ctx, "editor", "editor@example.com", strings.Repeat("é", 40))
	if !errors.Is(err, security.ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if _, err := users.GetByUsername(ctx, "editor"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("no account should be created, got %v", err)
	}
}

func TestGate_SessionNeverOutlivesToken(t *testing.T) {
	c := &clock{t: time.Now()}
	users := memory.NewUsersRepo()
	store := sessions.NewMemoryStore().WithClock(c.now)
	tokens := auth.NewTokenManager("test-secret", 30*time.Minute)

	g, err := auth.NewGate(users, store, tokens, auth.GateConfig{IdleTTL: 24 * time.Hour})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	g.WithClock(c.now)

	ctx := context.Background()
	_, ticket, err := g.Register(ctx, "editor", "editor@example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if n, _ := store.DeleteExpired(ctx); n != 0 {
		t.Fatalf("fresh session swept")
	}

	c.t = c.t.Add(31 * time.Minute)
	if n, _ := store.DeleteExpired(ctx); n != 1 {
		t.Fatalf("session should expire with its token, swept %d", n)
	}
	if _, err := g.RequireAuthenticated(ctx, ticket.Token); !errors.Is(err, auth.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}
