package worker_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/reminder"
	"github.com/fitlistic/fitlistic/internal/domain/user"
	"github.com/fitlistic/fitlistic/internal/notifications"
	"github.com/fitlistic/fitlistic/internal/observability"
	"github.com/fitlistic/fitlistic/internal/queue/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Fakes for the worker's repository, user source and notifier.

type fakeRemindersRepo struct {
	claimFn          func(ctx context.Context, workerID string) (reminder.Reminder, error)
	markDispatchedFn func(ctx context.Context, id string) error
	retryFn          func(ctx context.Context, id string, nextAttemptAt time.Time, errMsg string) error
	markFailedFn     func(ctx context.Context, id string, errMsg string) error
}

func (f *fakeRemindersRepo) ClaimDue(ctx context.Context, workerID string) (reminder.Reminder, error) {
	if f.claimFn != nil {
		return f.claimFn(ctx, workerID)
	}

	return reminder.Reminder{}, reminder.ErrNoneDue
}

func (f *fakeRemindersRepo) MarkDispatched(ctx context.Context, id string) error {
	if f.markDispatchedFn != nil {
		return f.markDispatchedFn(ctx, id)
	}

	return nil
}

func (f *fakeRemindersRepo) Retry(ctx context.Context, id string, nextAttemptAt time.Time, errMsg string) error {
	if f.retryFn != nil {
		return f.retryFn(ctx, id, nextAttemptAt, errMsg)
	}

	return nil
}

func (f *fakeRemindersRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	if f.markFailedFn != nil {
		return f.markFailedFn(ctx, id, errMsg)
	}

	return nil
}

type fakeUserSource struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUserSource) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return user.User{ID: id, Email: "bella@example.com", Username: "flexibella"}, nil
}

type fakeNotifier struct {
	sendFn func(ctx context.Context, input notifications.SendReminderInput) error
	sent   []notifications.SendReminderInput
}

func (f *fakeNotifier) SendReminder(ctx context.Context, input notifications.SendReminderInput) error {
	f.sent = append(f.sent, input)

	if f.sendFn != nil {
		return f.sendFn(ctx, input)
	}

	return nil
}

func newWorker(repo *fakeRemindersRepo, users *fakeUserSource, notifier *fakeNotifier) (*worker.Worker, *observability.DispatchProm) {
	prom := observability.NewDispatchProm(prometheus.NewRegistry())

	w := worker.New(
		worker.Config{WorkerID: "test-worker", MaxAttempts: 3},
		repo,
		users,
		notifier,
		slog.Default(),
		observability.NewDispatchMetrics(),
		prom,
	)

	return w, prom
}

func dispatchResultCount(prom *observability.DispatchProm, result string) float64 {
	return testutil.ToFloat64(prom.Results.WithLabelValues(result))
}

func dueReminder(attempts int) reminder.Reminder {
	return reminder.Reminder{
		ID:       "rem-1",
		UserID:   "user-1",
		Title:    "Evening yoga",
		Notes:    "20 minute flow",
		RemindAt: time.Now().UTC().Add(-time.Minute),
		Status:   reminder.StatusDispatching,
		Attempts: attempts,
	}
}

func TestProcessOneNothingDue(t *testing.T) {
	w, _ := newWorker(&fakeRemindersRepo{}, &fakeUserSource{}, &fakeNotifier{})

	processed, err := w.ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if processed {
		t.Fatalf("nothing was due, processed should be false")
	}
}

func TestProcessOneDispatches(t *testing.T) {
	marked := false

	repo := &fakeRemindersRepo{
		claimFn: func(ctx context.Context, workerID string) (reminder.Reminder, error) {
			if workerID != "test-worker" {
				return reminder.Reminder{}, errors.New("worker id not passed through")
			}

			return dueReminder(1), nil
		},
		markDispatchedFn: func(ctx context.Context, id string) error {
			marked = true
			return nil
		},
	}

	notifier := &fakeNotifier{}

	w, prom := newWorker(repo, &fakeUserSource{}, notifier)

	processed, err := w.ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !processed {
		t.Fatalf("expected the reminder to be processed")
	}

	if !marked {
		t.Fatalf("expected the reminder to be marked dispatched")
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(notifier.sent))
	}

	input := notifier.sent[0]

	if input.Email != "bella@example.com" || input.Title != "Evening yoga" || input.ReminderID != "rem-1" {
		t.Fatalf("unexpected notification input: %+v", input)
	}

	if got := dispatchResultCount(prom, "sent"); got != 1 {
		t.Fatalf("sent dispatch count = %v, want 1", got)
	}
}

func TestProcessOneSchedulesRetryOnFailure(t *testing.T) {
	retried := false
	failed := false

	repo := &fakeRemindersRepo{
		claimFn: func(ctx context.Context, workerID string) (reminder.Reminder, error) {
			return dueReminder(1), nil
		},
		retryFn: func(ctx context.Context, id string, nextAttemptAt time.Time, errMsg string) error {
			retried = true

			if !nextAttemptAt.After(time.Now().UTC()) {
				return errors.New("retry must be scheduled in the future")
			}

			return nil
		},
		markFailedFn: func(ctx context.Context, id string, errMsg string) error {
			failed = true
			return nil
		},
	}

	notifier := &fakeNotifier{
		sendFn: func(ctx context.Context, input notifications.SendReminderInput) error {
			return errors.New("smtp down")
		},
	}

	w, prom := newWorker(repo, &fakeUserSource{}, notifier)

	processed, err := w.ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !processed {
		t.Fatalf("a failed dispatch still counts as processed")
	}

	if !retried {
		t.Fatalf("expected a retry to be scheduled")
	}

	if failed {
		t.Fatalf("should not give up before max attempts")
	}

	if got := dispatchResultCount(prom, "retry"); got != 1 {
		t.Fatalf("retry dispatch count = %v, want 1", got)
	}
}

func TestProcessOneGivesUpAfterMaxAttempts(t *testing.T) {
	retried := false
	failed := false

	repo := &fakeRemindersRepo{
		claimFn: func(ctx context.Context, workerID string) (reminder.Reminder, error) {
			return dueReminder(3), nil
		},
		retryFn: func(ctx context.Context, id string, nextAttemptAt time.Time, errMsg string) error {
			retried = true
			return nil
		},
		markFailedFn: func(ctx context.Context, id string, errMsg string) error {
			failed = true
			return nil
		},
	}

	notifier := &fakeNotifier{
		sendFn: func(ctx context.Context, input notifications.SendReminderInput) error {
			return errors.New("smtp down")
		},
	}

	w, prom := newWorker(repo, &fakeUserSource{}, notifier)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if retried {
		t.Fatalf("should not retry past max attempts")
	}

	if !failed {
		t.Fatalf("expected the reminder to be marked failed")
	}

	if got := dispatchResultCount(prom, "failed"); got != 1 {
		t.Fatalf("failed dispatch count = %v, want 1", got)
	}
}

func TestProcessOnePropagatesClaimErrors(t *testing.T) {
	repo := &fakeRemindersRepo{
		claimFn: func(ctx context.Context, workerID string) (reminder.Reminder, error) {
			return reminder.Reminder{}, errors.New("connection refused")
		},
	}

	w, _ := newWorker(repo, &fakeUserSource{}, &fakeNotifier{})

	if _, err := w.ProcessOne(context.Background()); err == nil {
		t.Fatalf("expected the claim error to surface")
	}
}
