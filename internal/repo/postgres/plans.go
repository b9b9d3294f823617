package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/plan"
	"github.com/fitlistic/fitlistic/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlansRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPlansRepo(pool *pgxpool.Pool, prom *observability.Prom) *PlansRepo {
	return &PlansRepo{pool: pool, prom: prom}
}

func (r *PlansRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// SaveActive deactivates the user's existing plans and inserts the new one as
// active, in one transaction, so exactly one plan is ever active.
func (r *PlansRepo) SaveActive(ctx context.Context, p plan.WeeklyPlan) (plan.WeeklyPlan, error) {
	now := time.Now().UTC()

	p.ID = uuid.NewString()
	p.IsActive = true
	p.CreatedAt = now

	metaJSON, err := json.Marshal(p.Metadata)

	if err != nil {
		return plan.WeeklyPlan{}, err
	}

	scheduleJSON, err := json.Marshal(p.Schedule)

	if err != nil {
		return plan.WeeklyPlan{}, err
	}

	err = r.observe("plans.save_active", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		_, err = tx.Exec(ctx,
			`UPDATE workout_plans SET is_active = FALSE WHERE user_id = $1 AND is_active`, p.UserID)

		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO workout_plans (id, user_id, metadata, schedule, is_active, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, p.UserID, metaJSON, scheduleJSON, p.IsActive, p.CreatedAt,
		)

		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return plan.WeeklyPlan{}, err
	}

	return p, nil
}

func (r *PlansRepo) GetActive(ctx context.Context, userID string) (plan.WeeklyPlan, error) {
	var p plan.WeeklyPlan
	var metaJSON, scheduleJSON []byte

	err := r.observe("plans.get_active", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, user_id, metadata, schedule, is_active, created_at
			FROM workout_plans
			WHERE user_id = $1 AND is_active`, userID).
			Scan(&p.ID, &p.UserID, &metaJSON, &scheduleJSON, &p.IsActive, &p.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.WeeklyPlan{}, plan.ErrNoActivePlan
		}
		return plan.WeeklyPlan{}, err
	}

	if err := json.Unmarshal(metaJSON, &p.Metadata); err != nil {
		return plan.WeeklyPlan{}, err
	}

	if err := json.Unmarshal(scheduleJSON, &p.Schedule); err != nil {
		return plan.WeeklyPlan{}, err
	}

	return p, nil
}

// MarkDayCompleted records a completion for the current week; re-marking the
// same day in the same week is reported as plan.ErrDayAlreadyDone.
func (r *PlansRepo) MarkDayCompleted(ctx context.Context, userID, planID, date string, weekStart time.Time) error {
	err := r.observe("plans.mark_day_completed", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO completed_workout_days (id, user_id, plan_id, day_date, week_start, completed_at)
			VALUES ($1,$2,$3,$4,$5,NOW())`,
			uuid.NewString(), userID, planID, date, weekStart,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return plan.ErrDayAlreadyDone
		}

		return err
	}

	return nil
}

func (r *PlansRepo) CompletedDays(ctx context.Context, userID string, weekStart time.Time) ([]string, error) {
	out := []string{}

	err := r.observe("plans.completed_days", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT day_date FROM completed_workout_days
			WHERE user_id = $1 AND week_start = $2
			ORDER BY day_date ASC`, userID, weekStart)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var d string

			if err := rows.Scan(&d); err != nil {
				return err
			}

			out = append(out, d)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
