package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/reminder"
	"github.com/fitlistic/fitlistic/internal/domain/user"
	"github.com/fitlistic/fitlistic/internal/notifications"
	"github.com/fitlistic/fitlistic/internal/observability"
)

// RemindersRepository is the slice of the reminders store the worker uses.
type RemindersRepository interface {
	ClaimDue(ctx context.Context, workerID string) (reminder.Reminder, error)
	MarkDispatched(ctx context.Context, id string) error
	Retry(ctx context.Context, id string, nextAttemptAt time.Time, errMsg string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
}

type UserSource interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type Config struct {
	PollInterval time.Duration
	WorkerID     string
	MaxAttempts  int
}

type Worker struct {
	cfg      Config
	repo     RemindersRepository
	users    UserSource
	notifier notifications.Notifier
	log      *slog.Logger
	metrics  *observability.DispatchMetrics
	prom     *observability.DispatchProm

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo RemindersRepository, users UserSource, notifier notifications.Notifier, log *slog.Logger, metrics *observability.DispatchMetrics, prom *observability.DispatchProm) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		users:    users,
		notifier: notifier,
		log:      log,
		metrics:  metrics,
		prom:     prom,
	}
}

// Run polls for due reminders until ctx is cancelled. Each tick drains the
// queue: it keeps claiming until nothing is due, so a backlog clears faster
// than one reminder per poll interval.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil

		case <-ticker.C:
			for {
				processed, err := w.ProcessOne(ctx)

				if err != nil {
					w.log.Error("process reminder", "error", err)
					break
				}

				if !processed {
					break
				}
			}
		}
	}
}

// ProcessOne claims and dispatches a single due reminder. It reports
// (false, nil) when nothing is due.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	rem, err := w.repo.ClaimDue(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, reminder.ErrNoneDue) {
			return false, nil
		}

		return false, err
	}

	w.metrics.IncClaimed()
	w.log.Info("claimed reminder", "reminder", rem.ID, "attempt", rem.Attempts, "worker", w.cfg.WorkerID)

	w.prom.InFlight.Inc()
	start := time.Now()
	err = w.dispatch(ctx, rem)
	elapsed := time.Since(start)
	w.prom.InFlight.Dec()
	w.metrics.ObserveDuration(elapsed)

	if err != nil {
		result := w.handleFailure(ctx, rem, err)
		w.observeDispatch(result, elapsed)
		return true, nil
	}

	if err := w.repo.MarkDispatched(ctx, rem.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, rem.ID, "mark_dispatched_failed: "+err.Error())
		w.observeDispatch("failed", elapsed)
		return true, err
	}

	w.metrics.IncSent()
	w.observeDispatch("sent", elapsed)
	return true, nil
}

func (w *Worker) observeDispatch(result string, elapsed time.Duration) {
	w.prom.Results.WithLabelValues(result).Inc()
	w.prom.Duration.WithLabelValues(result).Observe(elapsed.Seconds())
}

func (w *Worker) dispatch(ctx context.Context, rem reminder.Reminder) error {
	u, err := w.users.GetByID(ctx, rem.UserID)

	if err != nil {
		return err
	}

	return w.notifier.SendReminder(ctx, notifications.SendReminderInput{
		Email:      u.Email,
		Username:   u.Username,
		Title:      rem.Title,
		Notes:      rem.Notes,
		ReminderID: rem.ID,
	})
}

// handleFailure schedules a retry or gives up, and reports which it did for
// the dispatch result metrics.
func (w *Worker) handleFailure(ctx context.Context, rem reminder.Reminder, cause error) string {
	if rem.Attempts >= w.cfg.MaxAttempts {
		w.metrics.IncFailed()
		w.log.Error("reminder exhausted retries", "reminder", rem.ID, "attempts", rem.Attempts, "error", cause)

		if err := w.repo.MarkFailed(ctx, rem.ID, cause.Error()); err != nil {
			w.log.Error("mark failed", "reminder", rem.ID, "error", err)
		}

		return "failed"
	}

	delay := ExponentialBackoff(rem.Attempts)
	next := time.Now().UTC().Add(delay)

	w.metrics.IncRetried()
	w.log.Warn("reminder dispatch failed, scheduling retry",
		"reminder", rem.ID, "attempt", rem.Attempts, "retry_in", delay, "error", cause)

	if err := w.repo.Retry(ctx, rem.ID, next, cause.Error()); err != nil {
		w.log.Error("schedule retry", "reminder", rem.ID, "error", err)
	}

	return "retry"
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
