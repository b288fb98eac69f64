package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kamusku/kamus/internal/domain/searchlog"
	"github.com/kamusku/kamus/internal/observability"
)

type SearchLogsRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewSearchLogsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SearchLogsRepo {
	return &SearchLogsRepo{
		observer: observer{prom: prom},
		pool:     pool,
	}
}

func (r *SearchLogsRepo) Record(ctx context.Context, l searchlog.SearchLog) error {
	var dictType *string
	if l.DictionaryType != "" {
		dictType = &l.DictionaryType
	}

	return r.observe("search_logs.record", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO search_logs (id, query, results_count, dictionary_type, timestamp) VALUES ($1, $2, $3, $4, $5)`,
			l.ID, l.Query, l.ResultsCount, dictType, l.Timestamp,
		)
		return err
	})
}

// ListRecent returns up to limit logs, newest first.
func (r *SearchLogsRepo) ListRecent(ctx context.Context, limit int) ([]searchlog.SearchLog, error) {
	out := make([]searchlog.SearchLog, 0)
	if limit <= 0 {
		return out, nil
	}

	err := r.observe("search_logs.list_recent", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, query, results_count, COALESCE(dictionary_type, ''), timestamp
			FROM search_logs
			ORDER BY seq DESC
			LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var l searchlog.SearchLog
			if err := rows.Scan(&l.ID, &l.Query, &l.ResultsCount, &l.DictionaryType, &l.Timestamp); err != nil {
				return err
			}
			l.Timestamp = l.Timestamp.UTC()
			out = append(out, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Popular aggregates queries case-insensitively, most frequent first.
func (r *SearchLogsRepo) Popular(ctx context.Context, limit int) ([]searchlog.PopularQuery, error) {
	out := make([]searchlog.PopularQuery, 0)
	if limit <= 0 {
		return out, nil
	}

	err := r.observe("search_logs.popular", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT lower(btrim(query)) AS q, COUNT(*) AS n
			FROM search_logs
			GROUP BY q
			ORDER BY n DESC, q ASC
			LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p searchlog.PopularQuery
			if err := rows.Scan(&p.Query, &p.Count); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
