package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kamusku/kamus/internal/auth"
	"github.com/kamusku/kamus/internal/config"
	"github.com/kamusku/kamus/internal/db"
	httpx "github.com/kamusku/kamus/internal/http"
	"github.com/kamusku/kamus/internal/http/handlers"
	"github.com/kamusku/kamus/internal/observability"
	"github.com/kamusku/kamus/internal/redisclient"
	"github.com/kamusku/kamus/internal/repo/memory"
	"github.com/kamusku/kamus/internal/repo/postgres"
	"github.com/kamusku/kamus/internal/sessions"
)

const maxMemorySearchLogs = 10000

type entryStore interface {
	handlers.EntryStore
	db.EntrySeeder
}

type userStore interface {
	auth.UserStore
	db.AdminUserStore
}

type stores struct {
	entries     entryStore
	users       userStore
	searchLogs  httpx.SearchLogStore
	readyChecks map[string]handlers.Pinger
	close       func()
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (stores, error) {
	switch cfg.StoreDriver {
	case "", "memory":
		return stores{
			entries:     memory.NewEntriesRepo(),
			users:       memory.NewUsersRepo(),
			searchLogs:  memory.NewSearchLogsRepo(maxMemorySearchLogs),
			readyChecks: map[string]handlers.Pinger{},
			close:       func() {},
		}, nil

	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("migrate: %w", err)
		}
		log.Info("postgres ready")

		entries := postgres.NewEntriesRepo(pool, prom)
		return stores{
			entries:     entries,
			users:       postgres.NewUsersRepo(pool, prom),
			searchLogs:  postgres.NewSearchLogsRepo(pool, prom),
			readyChecks: map[string]handlers.Pinger{"db": entries.Ping},
			close:       pool.Close,
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

type sessionBackend struct {
	store       sessions.Store
	readyChecks map[string]handlers.Pinger
	close       func()
}

func openSessions(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (sessionBackend, error) {
	switch cfg.SessionBackend {
	case "", "memory":
		store := sessions.NewMemoryStore()

		sweeper := sessions.NewSweeper(sessions.SweeperConfig{
			Interval: cfg.SessionSweepInterval,
			OnSwept:  prom.ObserveSwept,
		}, store, log)

		go func() {
			if err := sweeper.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("session sweeper stopped", "err", err)
			}
		}()

		return sessionBackend{store: store, close: func() {}}, nil

	case "redis":
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			_ = rc.Close()
			return sessionBackend{}, fmt.Errorf("ping redis: %w", err)
		}

		return sessionBackend{
			store:       sessions.NewRedisStore(rc.Raw()),
			readyChecks: map[string]handlers.Pinger{"redis": rc.Ping},
			close:       func() { _ = rc.Close() },
		}, nil

	default:
		return sessionBackend{}, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}

func seed(ctx context.Context, cfg config.Config, st stores, log *slog.Logger) error {
	password := cfg.AdminPassword
	if password == "" && cfg.IsDev() {
		password = "admin123"
	}

	if password == "" {
		log.Warn("ADMIN_PASSWORD not set, skipping admin seed")
	} else {
		_, err := db.EnsureAdminUser(ctx, st.users, db.AdminSeed{
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: password,
		}, log)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	if cfg.SeedSampleData {
		if _, err := db.SeedSampleEntries(ctx, st.entries, log); err != nil {
			return fmt.Errorf("seed sample entries: %w", err)
		}
	}

	if cfg.ImportFile != "" {
		if _, err := db.ImportFile(ctx, cfg.ImportFile, st.entries, log); err != nil {
			return fmt.Errorf("import %s: %w", cfg.ImportFile, err)
		}
	}

	return nil
}
