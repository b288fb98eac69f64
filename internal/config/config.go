package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// STORE_DRIVER: memory|postgres
	StoreDriver string
	DBURL       string

	// SESSION_BACKEND: memory|redis
	SessionBackend       string
	SessionSecret        string
	SessionIdleTTL       time.Duration
	SessionMaxAge        time.Duration
	SessionSweepInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	SeedSampleData bool
	ImportFile     string

	PublicBaseURL      string
	CORSAllowedOrigins []string
	// TRUSTED_PROXIES: addresses/CIDRs allowed to set X-Forwarded-For.
	// Empty means the socket address is the client address.
	TrustedProxies []string

	OTelEnabled  bool
	OTelEndpoint string

	CacheTTL     time.Duration
	MaxBodyBytes int64
}

const devSessionSecret = "dev-only-session-secret-change-me"

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars win over it.
func Load() Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")

	cfg := Config{
		Env:         env,
		Port:        getEnvInt("PORT", 8080),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "memory")),
		DBURL:       buildDBURL(),

		SessionBackend:       strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionIdleTTL:       getEnvDuration("SESSION_IDLE_TTL", 24*time.Hour),
		SessionMaxAge:        getEnvDuration("SESSION_MAX_AGE", 7*24*time.Hour),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:    strings.ToLower(getEnv("ADMIN_EMAIL", "admin123@gmail.com")),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		SeedSampleData: getEnvBool("SEED_SAMPLE_DATA", true),
		ImportFile:     getEnv("IMPORT_FILE", ""),

		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES", nil),

		OTelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		CacheTTL:     getEnvDuration("CACHE_TTL", 30*time.Second),
		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}

	if cfg.SessionSecret == "" && cfg.IsDev() {
		cfg.SessionSecret = devSessionSecret
	}

	return cfg
}

func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "test"
}

// SecureCookies reports whether session cookies carry the Secure flag.
func (c Config) SecureCookies() bool {
	return c.Env == "prod"
}

func buildDBURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "kamus")
	pass := getEnv("DB_PASSWORD", "kamus")
	name := getEnv("DB_NAME", "kamus")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid int env var, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid bool env var, using default", "key", key, "value", v)
			return fallback
		}

		return b
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90m", "24h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v)
			return fallback
		}

		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
