package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kamusku/kamus/internal/domain/dictionary"
	"github.com/kamusku/kamus/internal/observability"
)

const entryColumns = `id, word, type, pronunciation, definition, example, synonyms, dictionary_type, created_at`

type EntriesRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewEntriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *EntriesRepo {
	return &EntriesRepo{
		observer: observer{prom: prom},
		pool:     pool,
	}
}

func (r *EntriesRepo) Create(ctx context.Context, req dictionary.CreateEntryRequest) (dictionary.Entry, error) {
	e := dictionary.NewFromCreateRequest(req)

	err := r.observe("entries.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO dictionaries (id, word, type, pronunciation, definition, example, synonyms, dictionary_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.Word, e.Type, e.Pronunciation, e.Definition, e.Example, synonymsParam(e.Synonyms), string(e.Category), e.CreatedAt,
		)
		return err
	})
	if err != nil {
		return dictionary.Entry{}, err
	}

	return e, nil
}

func (r *EntriesRepo) GetByID(ctx context.Context, id string) (dictionary.Entry, error) {
	var e dictionary.Entry

	err := r.observe("entries.get_by_id", func() error {
		row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM dictionaries WHERE id = $1`, id)
		var err error
		e, err = scanEntry(row)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dictionary.Entry{}, dictionary.ErrNotFound
		}
		return dictionary.Entry{}, err
	}

	return e, nil
}

// List returns entries in insertion order (seq), restricted to category when given.
func (r *EntriesRepo) List(ctx context.Context, category *dictionary.Category) ([]dictionary.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM dictionaries`
	var args []any

	if category != nil {
		query += ` WHERE dictionary_type = $1`
		args = append(args, string(*category))
	}
	query += ` ORDER BY seq ASC`

	out := make([]dictionary.Entry, 0)

	err := r.observe("entries.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Update applies a partial patch under a row lock so concurrent patches to
// the same entry do not lose fields.
func (r *EntriesRepo) Update(ctx context.Context, id string, req dictionary.UpdateEntryRequest) (updated dictionary.Entry, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return dictionary.Entry{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var existing dictionary.Entry
	err = r.observe("entries.update.lock", func() error {
		row := tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM dictionaries WHERE id = $1 FOR UPDATE`, id)
		var scanErr error
		existing, scanErr = scanEntry(row)
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = dictionary.ErrNotFound
		}
		return dictionary.Entry{}, err
	}

	updated = dictionary.ApplyUpdate(existing, req)

	err = r.observe("entries.update.write", func() error {
		_, execErr := tx.Exec(ctx,
			`UPDATE dictionaries
			SET word = $2, type = $3, pronunciation = $4, definition = $5, example = $6, synonyms = $7, dictionary_type = $8
			WHERE id = $1`,
			id, updated.Word, updated.Type, updated.Pronunciation, updated.Definition, updated.Example,
			synonymsParam(updated.Synonyms), string(updated.Category),
		)
		return execErr
	})
	if err != nil {
		return dictionary.Entry{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return dictionary.Entry{}, fmt.Errorf("commit entry update: %w", err)
	}

	return updated, nil
}

func (r *EntriesRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("entries.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM dictionaries WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return dictionary.ErrNotFound
	}
	return nil
}

func (r *EntriesRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.observe("entries.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM dictionaries`).Scan(&n)
	})
	return n, err
}

func (r *EntriesRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanEntry(row pgx.Row) (dictionary.Entry, error) {
	var (
		e        dictionary.Entry
		category string
	)

	err := row.Scan(&e.ID, &e.Word, &e.Type, &e.Pronunciation, &e.Definition, &e.Example, &e.Synonyms, &category, &e.CreatedAt)
	if err != nil {
		return dictionary.Entry{}, err
	}

	e.Category = dictionary.Category(category)
	if len(e.Synonyms) == 0 {
		e.Synonyms = nil
	}
	e.CreatedAt = e.CreatedAt.UTC()

	return e, nil
}

// synonymsParam keeps the NOT NULL array column satisfied.
func synonymsParam(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
