package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamusku/kamus/internal/auth"
	"github.com/kamusku/kamus/internal/config"
	"github.com/kamusku/kamus/internal/db"
	apphttp "github.com/kamusku/kamus/internal/http"
	"github.com/kamusku/kamus/internal/http/middlewares"
	"github.com/kamusku/kamus/internal/notifications"
	"github.com/kamusku/kamus/internal/repo/memory"
	"github.com/kamusku/kamus/internal/sessions"
)

const (
	adminEmail    = "admin123@gmail.com"
	adminPassword = "admin123"
)

type testApp struct {
	router  *gin.Engine
	entries *memory.EntriesRepo
	store   *sessions.MemoryStore
}

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		SessionSecret:  "test-secret-key",
		SessionIdleTTL: time.Hour,
		SessionMaxAge:  24 * time.Hour,
		AdminUsername:  "admin",
		AdminEmail:     adminEmail,
		AdminPassword:  adminPassword,
		SeedSampleData: true,
		CacheTTL:       time.Minute,
		MaxBodyBytes:   1 << 20,
	}
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	entries := memory.NewEntriesRepo()
	users := memory.NewUsersRepo()
	logs := memory.NewSearchLogsRepo(100)
	store := sessions.NewMemoryStore()

	if _, err := db.EnsureAdminUser(ctx, users, db.AdminSeed{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, logger); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := db.SeedSampleEntries(ctx, entries, logger); err != nil {
		t.Fatalf("seed entries: %v", err)
	}

	gate, err := auth.NewGate(users, store, auth.NewTokenManager(cfg.SessionSecret, cfg.SessionMaxAge), auth.GateConfig{IdleTTL: cfg.SessionIdleTTL})
	if err != nil {
		t.Fatalf("gate: %v", err)
	}

	router := apphttp.NewRouter(logger, apphttp.Dependencies{
		Entries:    entries,
		SearchLogs: logs,
		Gate:       gate,
		Notifier:   notifications.NewLogNotifier(logger),
	}, cfg)

	return &testApp{router: router, entries: entries, store: store}
}

// helpers

func (a *testApp) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T) *http.Cookie {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/login", map[string]string{"email": adminEmail, "password": adminPassword}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	return extractSessionCookie(t, w)
}

func extractSessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", middlewares.SessionCookieName)
	return nil
}

func (a *testApp) entryCount(t *testing.T) int {
	t.Helper()

	n, err := a.entries.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
