package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/db"
	"github.com/fitlistic/fitlistic/internal/notifications"
	"github.com/fitlistic/fitlistic/internal/observability"
	"github.com/fitlistic/fitlistic/internal/queue/worker"
	"github.com/fitlistic/fitlistic/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	remindersRepo := postgres.NewRemindersRepo(pool, nil)
	usersRepo := postgres.NewUsersRepo(pool, nil)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	metrics := observability.NewDispatchMetrics()

	registry := prometheus.NewRegistry()
	prom := observability.NewDispatchProm(registry)

	w := worker.New(worker.Config{
		PollInterval: 5 * time.Second,
		WorkerID:     workerID,
		MaxAttempts:  5,
	}, remindersRepo, usersRepo, notifier, log, metrics, prom)

	// health probes and metrics on a side port
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", w.HealthHandler())

	healthSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port+1),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", "err", err)
		}
	}()

	log.Info("worker started", "worker", workerID)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	_ = healthSrv.Shutdown(shutdownCtx)
	cancel()

	snap := metrics.Snapshot()
	log.Info("worker shutdown complete",
		"claimed", snap.Claimed,
		"sent", snap.Sent,
		"failed", snap.Failed,
		"retried", snap.Retried,
		"avg_dispatch", snap.AverageDuration,
		"max_dispatch", snap.MaxDuration,
	)
}
