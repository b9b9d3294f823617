package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fitlistic/fitlistic/internal/cache"
	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/db"
	httpx "github.com/fitlistic/fitlistic/internal/http"
	"github.com/fitlistic/fitlistic/internal/observability"
	"github.com/fitlistic/fitlistic/internal/repo/postgres"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// tracing is optional; without an endpoint spans are dropped locally
	shutdownTracer, err := observability.InitTracer(context.Background(), "fitlistic-api", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracer init failed, continuing without export", "err", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(registry)

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	redis := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer func() {
		if redis != nil {
			_ = redis.Close()
		}
	}()

	pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

	if err := redis.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, analytics cache disabled", "err", err)
		redis = nil
	}

	cancelPing()

	seedCtx, cancelSeed := config.WithTimeout(10 * time.Second)

	if err := db.EnsureAdminUser(seedCtx, pool, cfg); err != nil {
		log.Error("admin bootstrap failed", "err", err)
	}

	seeded, err := db.SeedActivityLibrary(seedCtx, postgres.NewActivitiesRepo(pool, prom))

	if err != nil {
		log.Error("library seed failed", "err", err)
	} else if seeded > 0 {
		log.Info("activity library seeded", "count", seeded)
	}

	cancelSeed()

	router := httpx.NewRouter(httpx.Deps{
		Cfg:      cfg,
		Pool:     pool,
		Redis:    redis,
		Prom:     prom,
		Registry: registry,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		if shutdownTracer != nil {
			_ = shutdownTracer(ctx)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
