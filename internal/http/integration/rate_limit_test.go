package integration_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	app := setupTestApp(t)

	last := 0
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"email":"ghost@example.com","password":"salah"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.RemoteAddr = "192.0.2.10:40000"

		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)
		last = w.Code
	}

	if last != http.StatusTooManyRequests {
		t.Fatalf("11th attempt from one socket address should be limited, got %d", last)
	}
}
