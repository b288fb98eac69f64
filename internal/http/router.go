package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamusku/kamus/internal/cache"
	"github.com/kamusku/kamus/internal/config"
	"github.com/kamusku/kamus/internal/http/handlers"
	"github.com/kamusku/kamus/internal/http/middlewares"
	"github.com/kamusku/kamus/internal/notifications"
	"github.com/kamusku/kamus/internal/observability"
	"github.com/kamusku/kamus/internal/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Gate is the session auth surface the router needs.
type Gate interface {
	handlers.SessionGate
	middlewares.SessionAuthenticator
}

type SearchLogStore interface {
	handlers.SearchLogRecorder
	handlers.SearchLogReader
}

// Dependencies are the stores and collaborators wired in by main (or tests).
type Dependencies struct {
	Entries    handlers.EntryStore
	SearchLogs SearchLogStore
	Gate       Gate
	Notifier   notifications.Notifier

	// Optional: metrics are skipped when nil.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	ReadyChecks map[string]handlers.Pinger
}

func NewRouter(log *slog.Logger, deps Dependencies, cfg config.Config) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// ClientIP keys the rate limiters, so only configured proxies may
	// override it with X-Forwarded-For.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error("invalid TRUSTED_PROXIES, trusting none", "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	if cfg.OTelEnabled {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	// health
	h := handlers.NewHealthHandler(deps.ReadyChecks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	responses := cache.New(cfg.CacheTTL)

	engine := search.NewEngine(deps.Entries)
	searchHandler := handlers.NewSearchHandler(engine, deps.SearchLogs, responses, deps.Prom, log)
	dictionariesHandler := handlers.NewDictionariesHandler(deps.Entries, responses, deps.Prom, log)
	searchLogsHandler := handlers.NewSearchLogsHandler(deps.SearchLogs, log)
	authHandler := handlers.NewAuthHandler(deps.Gate, handlers.CookieConfig{Secure: cfg.SecureCookies()}, deps.Prom, log)
	contactHandler := handlers.NewContactHandler(deps.Notifier, log)
	sitemapHandler := handlers.NewSitemapHandler(deps.Entries, cfg.PublicBaseURL, responses, log)

	authMw := middlewares.NewAuthMiddleware(deps.Gate)
	formLimiter := middlewares.NewRateLimiter(10, time.Minute)
	adminLimiter := middlewares.NewRateLimiter(120, time.Minute)

	r.GET("/sitemap.xml", sitemapHandler.Sitemap)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	// public
	api.GET("/search", searchHandler.Search)
	api.GET("/suggestions", searchHandler.Suggestions)
	api.GET("/words/:word", searchHandler.Lookup)
	api.GET("/word-of-the-day", searchHandler.WordOfTheDay)
	api.POST("/contact", formLimiter.Limit(middlewares.KeyByIP), contactHandler.Submit)

	// session
	api.POST("/register", formLimiter.Limit(middlewares.KeyByIP), authHandler.Register)
	api.POST("/login", formLimiter.Limit(middlewares.KeyByIP), authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/user", authMw.RequireAuth(), authHandler.CurrentUser)

	// admin
	admin := api.Group("/admin")
	admin.Use(authMw.RequireAuth(), adminLimiter.Limit(middlewares.KeyByUserOrIP))
	{
		admin.GET("/dictionaries", dictionariesHandler.List)
		admin.POST("/dictionaries", dictionariesHandler.Create)
		admin.GET("/dictionaries/:id", dictionariesHandler.Get)
		admin.PUT("/dictionaries/:id", dictionariesHandler.Update)
		admin.DELETE("/dictionaries/:id", dictionariesHandler.Delete)

		admin.GET("/search-logs", searchLogsHandler.Recent)
		admin.GET("/search-logs/popular", searchLogsHandler.Popular)
	}

	return r
}
