package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/reminder"
	"github.com/fitlistic/fitlistic/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RemindersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRemindersRepo(pool *pgxpool.Pool, prom *observability.Prom) *RemindersRepo {
	return &RemindersRepo{pool: pool, prom: prom}
}

func (r *RemindersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const reminderColumns = `id, user_id, title, notes, remind_at, is_completed,
	status, attempts, last_error, dispatched_at, created_at, updated_at`

func scanReminder(row pgx.Row) (reminder.Reminder, error) {
	var rem reminder.Reminder

	err := row.Scan(
		&rem.ID,
		&rem.UserID,
		&rem.Title,
		&rem.Notes,
		&rem.RemindAt,
		&rem.IsCompleted,
		&rem.Status,
		&rem.Attempts,
		&rem.LastError,
		&rem.DispatchedAt,
		&rem.CreatedAt,
		&rem.UpdatedAt,
	)

	return rem, err
}

func (r *RemindersRepo) Create(ctx context.Context, userID string, req reminder.CreateReminderRequest) (reminder.Reminder, error) {
	now := time.Now().UTC()

	rem := reminder.Reminder{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     req.Title,
		Notes:     req.Notes,
		RemindAt:  req.RemindAt.UTC(),
		Status:    reminder.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.observe("reminders.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO reminders (id, user_id, title, notes, remind_at, is_completed, status, attempts, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			rem.ID, rem.UserID, rem.Title, rem.Notes, rem.RemindAt, false, string(rem.Status), 0, rem.CreatedAt, rem.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return reminder.Reminder{}, err
	}

	return rem, nil
}

func (r *RemindersRepo) ListByUser(ctx context.Context, userID string) ([]reminder.Reminder, error) {
	out := []reminder.Reminder{}

	err := r.observe("reminders.list_by_user", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+reminderColumns+` FROM reminders
			WHERE user_id = $1
			ORDER BY remind_at ASC`, userID)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			rem, err := scanReminder(rows)

			if err != nil {
				return err
			}

			out = append(out, rem)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *RemindersRepo) SetCompleted(ctx context.Context, userID, id string, completed bool) (reminder.Reminder, error) {
	var rem reminder.Reminder
	var err error

	err = r.observe("reminders.set_completed", func() error {
		rem, err = scanReminder(r.pool.QueryRow(ctx,
			`UPDATE reminders
			SET is_completed = $3, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING `+reminderColumns,
			id, userID, completed,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reminder.Reminder{}, reminder.ErrNotFound
		}
		return reminder.Reminder{}, err
	}

	return rem, nil
}

func (r *RemindersRepo) Delete(ctx context.Context, userID, id string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("reminders.delete", func() error {
		tag, err = r.pool.Exec(ctx,
			`DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return reminder.ErrNotFound
	}

	return nil
}

// ClaimDue atomically claims the next due pending reminder for this worker.
// FOR UPDATE SKIP LOCKED lets multiple workers poll the same table without
// stepping on each other.
func (r *RemindersRepo) ClaimDue(ctx context.Context, workerID string) (reminder.Reminder, error) {
	var rem reminder.Reminder
	var err error

	err = r.observe("reminders.claim_due", func() error {
		rem, err = scanReminder(r.pool.QueryRow(ctx,
			`UPDATE reminders
			SET status = 'dispatching',
				locked_by = $1,
				locked_at = NOW(),
				attempts = attempts + 1,
				updated_at = NOW()
			WHERE id = (
				SELECT id FROM reminders
				WHERE status = 'pending'
				  AND is_completed = FALSE
				  AND remind_at <= NOW()
				ORDER BY remind_at ASC
				FOR UPDATE SKIP LOCKED
				LIMIT 1
			)
			RETURNING `+reminderColumns,
			workerID,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reminder.Reminder{}, reminder.ErrNoneDue
		}
		return reminder.Reminder{}, err
	}

	return rem, nil
}

func (r *RemindersRepo) MarkDispatched(ctx context.Context, id string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("reminders.mark_dispatched", func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE reminders
			SET status = 'dispatched',
				dispatched_at = NOW(),
				locked_by = NULL,
				locked_at = NULL,
				last_error = NULL,
				updated_at = NOW()
			WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return reminder.ErrNotFound
	}

	return nil
}

// Retry releases a claimed reminder back to pending with a delayed remind_at
// so the next poll honors the backoff.
func (r *RemindersRepo) Retry(ctx context.Context, id string, nextAttemptAt time.Time, errMsg string) error {
	return r.observe("reminders.retry", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE reminders
			SET status = 'pending',
				remind_at = $2,
				locked_by = NULL,
				locked_at = NULL,
				last_error = $3,
				updated_at = NOW()
			WHERE id = $1`, id, nextAttemptAt, errMsg)
		return err
	})
}

func (r *RemindersRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	return r.observe("reminders.mark_failed", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE reminders
			SET status = 'failed',
				locked_by = NULL,
				locked_at = NULL,
				last_error = $2,
				updated_at = NOW()
			WHERE id = $1`, id, errMsg)
		return err
	})
}
