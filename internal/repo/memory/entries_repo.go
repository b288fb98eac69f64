package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/kamusku/kamus/internal/domain/dictionary"
)

type EntriesRepo struct {
	mu    sync.RWMutex
	items map[string]dictionary.Entry
	order []string // insertion order of ids
}

func NewEntriesRepo() *EntriesRepo {
	return &EntriesRepo{
		items: make(map[string]dictionary.Entry),
	}
}

func (r *EntriesRepo) Create(_ context.Context, req dictionary.CreateEntryRequest) (dictionary.Entry, error) {
	e := dictionary.NewFromCreateRequest(req)

	r.mu.Lock()
	r.items[e.ID] = e
	r.order = append(r.order, e.ID)
	r.mu.Unlock()

	return e.Clone(), nil
}

func (r *EntriesRepo) GetByID(_ context.Context, id string) (dictionary.Entry, error) {
	r.mu.RLock()
	e, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return dictionary.Entry{}, dictionary.ErrNotFound
	}

	return e.Clone(), nil
}

// List returns entries in insertion order, restricted to category when given.
func (r *EntriesRepo) List(_ context.Context, category *dictionary.Category) ([]dictionary.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dictionary.Entry, 0, len(r.order))
	for _, id := range r.order {
		e := r.items[id]
		if category != nil && e.Category != *category {
			continue
		}
		out = append(out, e.Clone())
	}

	return out, nil
}

func (r *EntriesRepo) Update(_ context.Context, id string, req dictionary.UpdateEntryRequest) (dictionary.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[id]
	if !ok {
		return dictionary.Entry{}, dictionary.ErrNotFound
	}

	updated := dictionary.ApplyUpdate(existing, req)
	r.items[id] = updated

	return updated.Clone(), nil
}

func (r *EntriesRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return dictionary.ErrNotFound
	}

	delete(r.items, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}

	return nil
}

func (r *EntriesRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

func (r *EntriesRepo) Ping(_ context.Context) error {
	return nil
}
