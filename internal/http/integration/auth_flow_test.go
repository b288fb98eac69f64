package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kamusku/kamus/internal/domain/user"
)

func TestLoginCurrentUserLogout(t *testing.T) {
	app := setupTestApp(t)

	if w := app.do(t, http.MethodGet, "/api/user", nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /api/user: expected 401, got %d", w.Code)
	}

	w := app.do(t, http.MethodPost, "/api/login", map[string]string{"email": adminEmail, "password": "wrong"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", w.Code)
	}

	cookie := app.login(t)
	if app.store.Len() != 1 {
		t.Fatalf("expected one server-side session, got %d", app.store.Len())
	}

	w = app.do(t, http.MethodGet, "/api/user", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("/api/user: expected 200, got %d", w.Code)
	}
	var me user.User
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Email != adminEmail || me.Username != "admin" {
		t.Fatalf("unexpected user %+v", me)
	}

	w = app.do(t, http.MethodPost, "/api/logout", nil, cookie)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", w.Code)
	}
	if app.store.Len() != 0 {
		t.Fatalf("logout should destroy the session")
	}

	// the old cookie is useless now
	if w := app.do(t, http.MethodGet, "/api/user", nil, cookie); w.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", w.Code)
	}
}

func TestRegisterLogsIn(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": "editor",
		"email":    "editor@example.com",
		"password": "rahasia123",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	cookie := extractSessionCookie(t, w)

	if w := app.do(t, http.MethodGet, "/api/user", nil, cookie); w.Code != http.StatusOK {
		t.Fatalf("registered user should be logged in, got %d", w.Code)
	}

	w = app.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": "editor",
		"email":    "other@example.com",
		"password": "rahasia123",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate username: expected 400, got %d", w.Code)
	}
}
