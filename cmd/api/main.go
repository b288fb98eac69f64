package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamusku/kamus/internal/auth"
	"github.com/kamusku/kamus/internal/config"
	httpx "github.com/kamusku/kamus/internal/http"
	"github.com/kamusku/kamus/internal/notifications"
	"github.com/kamusku/kamus/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	if cfg.SessionSecret == "" {
		log.Error("SESSION_SECRET is required outside development")
		os.Exit(1)
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if cfg.OTelEnabled {
		shutdownTracer, err := observability.InitTracer(ctx, observability.ServiceName, cfg.OTelEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	st, err := openStores(ctx, cfg, prom, log)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer st.close()

	sess, err := openSessions(ctx, cfg, prom, log)
	if err != nil {
		log.Error("session store init failed", "backend", cfg.SessionBackend, "err", err)
		os.Exit(1)
	}
	defer sess.close()

	if err := seed(ctx, cfg, st, log); err != nil {
		log.Error("seeding failed", "err", err)
		os.Exit(1)
	}

	gate, err := auth.NewGate(st.users, sess.store, auth.NewTokenManager(cfg.SessionSecret, cfg.SessionMaxAge), auth.GateConfig{
		IdleTTL: cfg.SessionIdleTTL,
	})
	if err != nil {
		log.Error("auth gate init failed", "err", err)
		os.Exit(1)
	}

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{},
	)

	readyChecks := st.readyChecks
	for name, check := range sess.readyChecks {
		readyChecks[name] = check
	}

	// set up routers with the log
	router := httpx.NewRouter(log, httpx.Dependencies{
		Entries:     st.entries,
		SearchLogs:  st.searchLogs,
		Gate:        gate,
		Notifier:    notifier,
		Prom:        prom,
		Gatherer:    reg,
		ReadyChecks: readyChecks,
	}, cfg)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "sessions", cfg.SessionBackend)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
