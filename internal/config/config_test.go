package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_SECRET", "")

	cfg := Load()

	if cfg.Port != 8080 || cfg.StoreDriver != "memory" || cfg.SessionBackend != "memory" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionIdleTTL != 24*time.Hour || cfg.SessionMaxAge != 7*24*time.Hour {
		t.Fatalf("unexpected session durations: %v %v", cfg.SessionIdleTTL, cfg.SessionMaxAge)
	}
	if cfg.SessionSecret == "" {
		t.Fatalf("dev should fall back to a session secret")
	}
	if !cfg.SeedSampleData {
		t.Fatalf("sample data seeding should default to true")
	}
	if cfg.AdminEmail != "admin123@gmail.com" {
		t.Fatalf("unexpected admin email %q", cfg.AdminEmail)
	}
	if cfg.SecureCookies() {
		t.Fatalf("dev cookies must not be Secure")
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Fatalf("no proxy should be trusted by default, got %v", cfg.TrustedProxies)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_IDLE_TTL", "90m")
	t.Setenv("SEED_SAMPLE_DATA", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://kamus.id, https://www.kamus.id ,")
	t.Setenv("PUBLIC_BASE_URL", "https://kamus.id/")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")

	cfg := Load()

	if cfg.Port != 9090 || cfg.SessionSecret != "s3cret" || cfg.SessionIdleTTL != 90*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.SeedSampleData {
		t.Fatalf("SEED_SAMPLE_DATA=false not applied")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://www.kamus.id" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.PublicBaseURL != "https://kamus.id" {
		t.Fatalf("trailing slash should be trimmed, got %q", cfg.PublicBaseURL)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("invalid int should fall back, got %d", cfg.RedisDB)
	}
	if len(cfg.TrustedProxies) != 1 || cfg.TrustedProxies[0] != "10.0.0.0/8" {
		t.Fatalf("unexpected trusted proxies %v", cfg.TrustedProxies)
	}
	if !cfg.SecureCookies() {
		t.Fatalf("prod cookies must be Secure")
	}
}
