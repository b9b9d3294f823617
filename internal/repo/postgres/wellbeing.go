package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/wellbeing"
	"github.com/fitlistic/fitlistic/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WellbeingRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewWellbeingRepo(pool *pgxpool.Pool, prom *observability.Prom) *WellbeingRepo {
	return &WellbeingRepo{pool: pool, prom: prom}
}

func (r *WellbeingRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts one score per user per UTC day; a second insert the same day
// trips the (user_id, logged_day) unique index.
func (r *WellbeingRepo) Create(ctx context.Context, userID string, score int, notes string) (wellbeing.Score, error) {
	now := time.Now().UTC()

	s := wellbeing.Score{
		ID:        uuid.NewString(),
		UserID:    userID,
		Score:     score,
		Notes:     notes,
		LoggedAt:  now,
		CreatedAt: now,
	}

	err := r.observe("wellbeing.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO wellbeing_scores (id, user_id, score, notes, logged_at, logged_day, created_at)
			VALUES ($1,$2,$3,$4,$5, date_trunc('day', $5::timestamptz AT TIME ZONE 'UTC'), $6)`,
			s.ID, s.UserID, s.Score, s.Notes, s.LoggedAt, s.CreatedAt,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return wellbeing.Score{}, wellbeing.ErrAlreadyLoggedToday
		}

		return wellbeing.Score{}, err
	}

	return s, nil
}

// Series returns scores in ascending time order for charting.
func (r *WellbeingRepo) Series(ctx context.Context, userID string, filter wellbeing.SeriesFilter) ([]wellbeing.Score, error) {
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

	query := `SELECT id, user_id, score, notes, logged_at, created_at
	FROM wellbeing_scores
	WHERE ` + strings.Join(conds, " AND ") + `
	ORDER BY logged_at ASC`

	out := []wellbeing.Score{}

	err := r.observe("wellbeing.series", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var s wellbeing.Score

			err = rows.Scan(&s.ID, &s.UserID, &s.Score, &s.Notes, &s.LoggedAt, &s.CreatedAt)

			if err != nil {
				return err
			}

			out = append(out, s)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *WellbeingRepo) Latest(ctx context.Context, userID string) (wellbeing.Score, error) {
	var s wellbeing.Score
	var err error

	err = r.observe("wellbeing.latest", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, user_id, score, notes, logged_at, created_at
			FROM wellbeing_scores
			WHERE user_id = $1
			ORDER BY logged_at DESC
			LIMIT 1`, userID).
			Scan(&s.ID, &s.UserID, &s.Score, &s.Notes, &s.LoggedAt, &s.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wellbeing.Score{}, wellbeing.ErrNotFound
		}
		return wellbeing.Score{}, err
	}

	return s, nil
}

// HasEntryToday tells the UI whether to offer the mood logger.
func (r *WellbeingRepo) HasEntryToday(ctx context.Context, userID string, now time.Time) (bool, error) {
	dayStart := now.UTC().Truncate(24 * time.Hour)

	var exists bool

	err := r.observe("wellbeing.has_entry_today", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM wellbeing_scores
				WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
			)`, userID, dayStart, dayStart.Add(24*time.Hour)).Scan(&exists)
	})

	if err != nil {
		return false, err
	}

	return exists, nil
}
