package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fitlistic/fitlistic/internal/domain/activity"
	"github.com/fitlistic/fitlistic/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrActivityNameTaken = errors.New("activity name already exists")

type ActivitiesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewActivitiesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ActivitiesRepo {
	return &ActivitiesRepo{pool: pool, prom: prom}
}

func (r *ActivitiesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const activityColumns = `id, name, type, tags, difficulty_levels, instructions,
	benefits, target_areas, equipment_needed`

func scanActivity(row pgx.Row) (activity.Activity, error) {
	var (
		act        activity.Activity
		levelsJSON []byte
	)

	err := row.Scan(
		&act.ID,
		&act.Name,
		&act.Type,
		&act.Tags,
		&levelsJSON,
		&act.Instructions,
		&act.Benefits,
		&act.TargetAreas,
		&act.EquipmentNeeded,
	)

	if err != nil {
		return activity.Activity{}, err
	}

	if len(levelsJSON) > 0 {
		if err := json.Unmarshal(levelsJSON, &act.DifficultyLevels); err != nil {
			return activity.Activity{}, fmt.Errorf("decode difficulty levels: %w", err)
		}
	}

	return act, nil
}

func (r *ActivitiesRepo) Create(ctx context.Context, req activity.CreateActivityRequest) (activity.Activity, error) {
	act := activity.Activity{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Type:             req.Type,
		Tags:             req.Tags,
		DifficultyLevels: req.DifficultyLevels,
		Instructions:     req.Instructions,
		Benefits:         req.Benefits,
		TargetAreas:      req.TargetAreas,
		EquipmentNeeded:  req.EquipmentNeeded,
	}

	levelsJSON, err := json.Marshal(act.DifficultyLevels)

	if err != nil {
		return activity.Activity{}, fmt.Errorf("encode difficulty levels: %w", err)
	}

	err = r.observe("activities.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO activities (id, name, type, tags, difficulty_levels, instructions, benefits, target_areas, equipment_needed)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			act.ID, act.Name, string(act.Type), act.Tags, levelsJSON,
			act.Instructions, act.Benefits, act.TargetAreas, act.EquipmentNeeded,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return activity.Activity{}, ErrActivityNameTaken
		}
		return activity.Activity{}, err
	}

	return act, nil
}

func (r *ActivitiesRepo) GetByID(ctx context.Context, id string) (activity.Activity, error) {
	var act activity.Activity
	var err error

	err = r.observe("activities.get_by_id", func() error {
		act, err = scanActivity(r.pool.QueryRow(ctx,
			`SELECT `+activityColumns+` FROM activities WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return activity.Activity{}, activity.ErrNotFound
		}
		return activity.Activity{}, err
	}

	return act, nil
}

func (r *ActivitiesRepo) List(ctx context.Context, filter activity.ListFilter) ([]activity.Activity, error) {
	conds := []string{}
	args := []any{}
	i := 1

	if filter.Type != nil {
		conds = append(conds, fmt.Sprintf("type = $%d", i))
		args = append(args, string(*filter.Type))
		i++
	}

	if len(filter.Tags) > 0 {
		conds = append(conds, fmt.Sprintf("tags && $%d", i))
		args = append(args, filter.Tags)
		i++
	}

	if filter.Level != nil {
		conds = append(conds, fmt.Sprintf("difficulty_levels ? $%d", i))
		args = append(args, *filter.Level)
		i++
	}

	query := `SELECT ` + activityColumns + ` FROM activities`

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY name ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", i)
		args = append(args, filter.Limit)
	}

	out := []activity.Activity{}

	err := r.observe("activities.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			act, err := scanActivity(rows)

			if err != nil {
				return err
			}

			out = append(out, act)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ActivitiesRepo) Count(ctx context.Context) (int, error) {
	var count int

	err := r.observe("activities.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count)
	})

	if err != nil {
		return 0, err
	}

	return count, nil
}

// BulkInsert loads the starter library in one transaction. Used only by the
// startup seeder.
func (r *ActivitiesRepo) BulkInsert(ctx context.Context, activities []activity.Activity) error {
	return r.observe("activities.bulk_insert", func() error {
		tx, err := r.pool.Begin(ctx)

		if err != nil {
			return err
		}

		defer tx.Rollback(ctx)

		for _, act := range activities {
			if act.ID == "" {
				act.ID = uuid.NewString()
			}

			levelsJSON, err := json.Marshal(act.DifficultyLevels)

			if err != nil {
				return fmt.Errorf("encode difficulty levels for %q: %w", act.Name, err)
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO activities (id, name, type, tags, difficulty_levels, instructions, benefits, target_areas, equipment_needed)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
				ON CONFLICT (name) DO NOTHING`,
				act.ID, act.Name, string(act.Type), act.Tags, levelsJSON,
				act.Instructions, act.Benefits, act.TargetAreas, act.EquipmentNeeded,
			)

			if err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
}
