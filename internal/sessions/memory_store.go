package sessions

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu    sync.Mutex
	items map[string]Session
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Session),
		now:   time.Now,
	}
}

// WithClock replaces the time source; tests use it to expire sessions.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Create(_ context.Context, s Session) error {
	m.mu.Lock()
	m.items[s.ID] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if s.Expired(m.now()) {
		delete(m.items, id)
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Touch(_ context.Context, id string, seenAt, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	s.LastSeenAt = seenAt
	s.ExpiresAt = expiresAt
	m.items[id] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

// DeleteExpired prunes sessions past their idle deadline and reports how many
// were removed.
func (m *MemoryStore) DeleteExpired(_ context.Context) (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.items {
		if s.Expired(now) {
			delete(m.items, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
