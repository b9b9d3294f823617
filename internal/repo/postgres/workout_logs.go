package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/workout"
	"github.com/fitlistic/fitlistic/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WorkoutLogsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewWorkoutLogsRepo(pool *pgxpool.Pool, prom *observability.Prom) *WorkoutLogsRepo {
	return &WorkoutLogsRepo{pool: pool, prom: prom}
}

func (r *WorkoutLogsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

type CreateLogParams struct {
	UserID               string
	LoggedAt             time.Time
	WorkoutType          string
	Blocks               []workout.ActivityBlock
	TotalDurationMinutes int
	TotalCaloriesBurned  int
	Notes                string
	PlanID               *string
}

func (r *WorkoutLogsRepo) Create(ctx context.Context, p CreateLogParams) (workout.Log, error) {
	now := time.Now().UTC()

	blocks := p.Blocks
	if blocks == nil {
		blocks = []workout.ActivityBlock{}
	}

	blocksJSON, err := json.Marshal(blocks)

	if err != nil {
		return workout.Log{}, err
	}

	l := workout.Log{
		ID:                   uuid.NewString(),
		UserID:               p.UserID,
		LoggedAt:             p.LoggedAt,
		WorkoutType:          p.WorkoutType,
		Blocks:               blocks,
		TotalDurationMinutes: p.TotalDurationMinutes,
		TotalCaloriesBurned:  p.TotalCaloriesBurned,
		Notes:                p.Notes,
		PlanID:               p.PlanID,
		CreatedAt:            now,
	}

	err = r.observe("workout_logs.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO workout_logs (id, user_id, logged_at, workout_type, blocks, total_duration_minutes, total_calories_burned, notes, plan_id, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			l.ID, l.UserID, l.LoggedAt, l.WorkoutType, blocksJSON, l.TotalDurationMinutes, l.TotalCaloriesBurned, l.Notes, l.PlanID, l.CreatedAt,
		)
		return err
	})

	if err != nil {
		return workout.Log{}, err
	}

	return l, nil
}

func scanLog(row pgx.Row) (workout.Log, error) {
	var l workout.Log
	var blocksJSON []byte

	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.LoggedAt,
		&l.WorkoutType,
		&blocksJSON,
		&l.TotalDurationMinutes,
		&l.TotalCaloriesBurned,
		&l.Notes,
		&l.PlanID,
		&l.CreatedAt,
	)

	if err != nil {
		return workout.Log{}, err
	}

	if len(blocksJSON) > 0 {
		if err := json.Unmarshal(blocksJSON, &l.Blocks); err != nil {
			return workout.Log{}, err
		}
	}

	if l.Blocks == nil {
		l.Blocks = []workout.ActivityBlock{}
	}

	return l, nil
}

const logColumns = `id, user_id, logged_at, workout_type, blocks,
	total_duration_minutes, total_calories_burned, notes, plan_id, created_at`

func (r *WorkoutLogsRepo) GetByID(ctx context.Context, userID, id string) (workout.Log, error) {
	var l workout.Log
	var err error

	err = r.observe("workout_logs.get_by_id", func() error {
		l, err = scanLog(r.pool.QueryRow(ctx,
			`SELECT `+logColumns+` FROM workout_logs WHERE id = $1 AND user_id = $2`,
			id, userID))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workout.Log{}, workout.ErrNotFound
		}
		return workout.Log{}, err
	}

	return l, nil
}

// ListCursor pages newest-first, keyed by (logged_at, id) for stable order.
// afterLoggedAt/afterID are zero-valued on the first page.
func (r *WorkoutLogsRepo) ListCursor(ctx context.Context, userID string, filter workout.ListFilter, afterLoggedAt time.Time, afterID string) ([]workout.Log, bool, error) {
	conds := []string{"user_id = $1"}
	args := []interface{}{userID}
	pos := 2

	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("logged_at >= $%d", pos))
		args = append(args, *filter.From)
		pos++
	}

	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("logged_at < $%d", pos))
		args = append(args, *filter.To)
		pos++
	}

	if !afterLoggedAt.IsZero() && afterID != "" {
		conds = append(conds, fmt.Sprintf("(logged_at, id) < ($%d, $%d)", pos, pos+1))
		args = append(args, afterLoggedAt, afterID)
		pos += 2
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	// Fetch one extra row to know whether another page exists.
	query := `SELECT ` + logColumns + ` FROM workout_logs WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(" ORDER BY logged_at DESC, id DESC LIMIT $%d", pos)
	args = append(args, limit+1)

	var out []workout.Log

	err := r.observe("workout_logs.list_cursor", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]workout.Log, 0, limit)

		for rows.Next() {
			l, err := scanLog(rows)

			if err != nil {
				return err
			}

			out = append(out, l)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, false, err
	}

	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}

	return out, hasMore, nil
}

func (r *WorkoutLogsRepo) Delete(ctx context.Context, userID, id string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("workout_logs.delete", func() error {
		tag, err = r.pool.Exec(ctx,
			`DELETE FROM workout_logs WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return workout.ErrNotFound
	}

	return nil
}

// PeriodTotals aggregates count/minutes/calories since the given cutoff. A
// zero cutoff means all time. An empty window yields zeros, not an error.
func (r *WorkoutLogsRepo) PeriodTotals(ctx context.Context, userID string, since time.Time) (workout.PeriodTotals, error) {
	var t workout.PeriodTotals

	query := `SELECT COUNT(*),
		COALESCE(SUM(total_duration_minutes), 0),
		COALESCE(SUM(total_calories_burned), 0)
	FROM workout_logs
	WHERE user_id = $1`

	args := []interface{}{userID}

	if !since.IsZero() {
		query += ` AND logged_at >= $2`
		args = append(args, since)
	}

	err := r.observe("workout_logs.period_totals", func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(&t.Workouts, &t.Minutes, &t.Calories)
	})

	if err != nil {
		return workout.PeriodTotals{}, err
	}

	return t, nil
}

// DistinctDays returns the distinct UTC day starts with at least one log,
// newest first, capped at limit. Streak computation walks this list.
func (r *WorkoutLogsRepo) DistinctDays(ctx context.Context, userID string, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = 366
	}

	var days []time.Time

	err := r.observe("workout_logs.distinct_days", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT DISTINCT date_trunc('day', logged_at AT TIME ZONE 'UTC') AS day
			FROM workout_logs
			WHERE user_id = $1
			ORDER BY day DESC
			LIMIT $2`, userID, limit)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var d time.Time

			if err := rows.Scan(&d); err != nil {
				return err
			}

			days = append(days, d.UTC())
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return days, nil
}
