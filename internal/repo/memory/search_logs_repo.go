package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/kamusku/kamus/internal/domain/searchlog"
)

const defaultMaxSearchLogs = 10000

// SearchLogsRepo keeps the most recent search logs; the oldest are dropped
// once max is reached.
type SearchLogsRepo struct {
	mu   sync.RWMutex
	max  int
	logs []searchlog.SearchLog
}

func NewSearchLogsRepo(max int) *SearchLogsRepo {
	if max <= 0 {
		max = defaultMaxSearchLogs
	}
	return &SearchLogsRepo{max: max}
}

func (r *SearchLogsRepo) Record(_ context.Context, l searchlog.SearchLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logs = append(r.logs, l)
	if over := len(r.logs) - r.max; over > 0 {
		r.logs = slices.Delete(r.logs, 0, over)
	}
	return nil
}

// ListRecent returns up to limit logs, newest first.
func (r *SearchLogsRepo) ListRecent(_ context.Context, limit int) ([]searchlog.SearchLog, error) {
	if limit <= 0 {
		return []searchlog.SearchLog{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := min(limit, len(r.logs))
	out := make([]searchlog.SearchLog, 0, n)
	for i := len(r.logs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.logs[i])
	}
	return out, nil
}

// Popular aggregates queries case-insensitively, most frequent first.
func (r *SearchLogsRepo) Popular(_ context.Context, limit int) ([]searchlog.PopularQuery, error) {
	if limit <= 0 {
		return []searchlog.PopularQuery{}, nil
	}

	r.mu.RLock()
	counts := make(map[string]int)
	for _, l := range r.logs {
		counts[strings.ToLower(strings.TrimSpace(l.Query))]++
	}
	r.mu.RUnlock()

	out := make([]searchlog.PopularQuery, 0, len(counts))
	for q, c := range counts {
		out = append(out, searchlog.PopularQuery{Query: q, Count: c})
	}

	slices.SortFunc(out, func(a, b searchlog.PopularQuery) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Query, b.Query)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
