package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kamusku/kamus/internal/domain/user"
	"github.com/kamusku/kamus/internal/security"
	"github.com/kamusku/kamus/internal/sessions"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthRequired       = errors.New("authentication required")
)

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

// Ticket is what the HTTP layer needs to set the session cookie.
type Ticket struct {
	Token     string
	ExpiresAt time.Time
}

type GateConfig struct {
	IdleTTL time.Duration
}

// Gate checks credentials, opens server-side sessions and resolves session
// tokens back to users.
type Gate struct {
	users     UserStore
	sessions  sessions.Store
	tokens    *TokenManager
	idleTTL   time.Duration
	now       func() time.Time
	dummyHash string
}

func NewGate(users UserStore, store sessions.Store, tokens *TokenManager, cfg GateConfig) (*Gate, error) {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 24 * time.Hour
	}

	// compared against when the email is unknown so both paths pay for bcrypt
	dummy, err := security.HashPassword(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &Gate{
		users:     users,
		sessions:  store,
		tokens:    tokens,
		idleTTL:   cfg.IdleTTL,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// WithClock replaces the time source used for session deadlines.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

func (g *Gate) Login(ctx context.Context, email, password string) (user.User, Ticket, error) {
	u, err := g.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_ = security.CheckPassword(g.dummyHash, password)
			return user.User{}, Ticket{}, ErrInvalidCredentials
		}
		return user.User{}, Ticket{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return user.User{}, Ticket{}, ErrInvalidCredentials
	}

	ticket, err := g.openSession(ctx, u.ID)
	if err != nil {
		return user.User{}, Ticket{}, err
	}

	return u, ticket, nil
}

// Register creates the account and logs it in. A taken username is reported
// before a taken email. Passwords over security.MaxPasswordBytes fail with
// security.ErrPasswordTooLong.
func (g *Gate) Register(ctx context.Context, username, email, password string) (user.User, Ticket, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if err := g.checkAvailable(ctx, username, email); err != nil {
		return user.User{}, Ticket{}, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return user.User{}, Ticket{}, fmt.Errorf("hash password: %w", err)
	}

	// Create still enforces uniqueness for concurrent registrations.
	u, err := g.users.Create(ctx, username, email, hash)
	if err != nil {
		return user.User{}, Ticket{}, err
	}

	ticket, err := g.openSession(ctx, u.ID)
	if err != nil {
		return user.User{}, Ticket{}, err
	}

	return u, ticket, nil
}

func (g *Gate) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := g.users.GetByUsername(ctx, username); err == nil {
		return user.ErrUsernameTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("lookup username: %w", err)
	}

	if _, err := g.users.GetByEmail(ctx, email); err == nil {
		return user.ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("lookup email: %w", err)
	}

	return nil
}

// RequireAuthenticated resolves a session token to its user and slides the
// session's idle deadline. Any missing, forged or expired token yields
// ErrAuthRequired; other errors are infrastructure failures.
func (g *Gate) RequireAuthenticated(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, ErrAuthRequired
	}

	claims, err := g.tokens.Parse(token)
	if err != nil {
		return user.User{}, ErrAuthRequired
	}

	s, err := g.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return user.User{}, ErrAuthRequired
		}
		return user.User{}, fmt.Errorf("load session: %w", err)
	}

	if s.UserID != claims.UserID {
		return user.User{}, ErrAuthRequired
	}

	now := g.now().UTC()
	if err := g.sessions.Touch(ctx, s.ID, now, now.Add(g.idleTTL)); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return user.User{}, ErrAuthRequired
		}
		return user.User{}, fmt.Errorf("touch session: %w", err)
	}

	u, err := g.users.GetByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrAuthRequired
		}
		return user.User{}, fmt.Errorf("load user: %w", err)
	}

	return u, nil
}

// Logout destroys the session behind token. Unknown or invalid tokens are
// ignored.
func (g *Gate) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := g.tokens.Parse(token)
	if err != nil {
		return nil
	}

	if err := g.sessions.Delete(ctx, claims.ID); err != nil && !errors.Is(err, sessions.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (g *Gate) openSession(ctx context.Context, userID string) (Ticket, error) {
	now := g.now().UTC()

	s := sessions.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(min(g.idleTTL, g.tokens.MaxAge())),
	}

	if err := g.sessions.Create(ctx, s); err != nil {
		return Ticket{}, fmt.Errorf("create session: %w", err)
	}

	token, expiresAt, err := g.tokens.Issue(userID, s.ID, now)
	if err != nil {
		_ = g.sessions.Delete(ctx, s.ID)
		return Ticket{}, fmt.Errorf("issue session token: %w", err)
	}

	return Ticket{Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
