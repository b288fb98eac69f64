// Package sessions holds server-side login sessions. A session is referenced
// by the id carried in the signed session cookie and expires after an idle
// period.
package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound covers both unknown and expired sessions.
var ErrNotFound = errors.New("session not found")

type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	// Touch records activity and moves the idle deadline to expiresAt.
	Touch(ctx context.Context, id string, seenAt, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}
