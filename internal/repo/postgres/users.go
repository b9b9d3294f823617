package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/user"
	"github.com/fitlistic/fitlistic/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUsernameTaken    = errors.New("username already taken")
	ErrEmailAlreadyUsed = errors.New("email already used")
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	HeightCm     int
	WeightKg     float64
	FitnessGoals []string
	Role         string
}

const userColumns = `id, username, email, password_hash, first_name, last_name,
	height_cm, weight_kg, fitness_goals, role, total_workouts, last_login_at,
	created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.HeightCm,
		&u.WeightKg,
		&u.FitnessGoals,
		&u.Role,
		&u.TotalWorkouts,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, p CreateUserParams) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		HeightCm:     p.HeightCm,
		WeightKg:     p.WeightKg,
		FitnessGoals: p.FitnessGoals,
		Role:         p.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if u.FitnessGoals == nil {
		u.FitnessGoals = []string{}
	}

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, username, email, password_hash, first_name, last_name, height_cm, weight_kg, fitness_goals, role, total_workouts, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.HeightCm, u.WeightKg, u.FitnessGoals, u.Role, 0, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return user.User{}, ErrEmailAlreadyUsed
			default:
				return user.User{}, ErrUsernameTaken
			}
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_username", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) TouchLastLogin(ctx context.Context, id string) error {
	return r.observe("users.touch_last_login", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
		return err
	})
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error) {
	var u user.User
	var err error

	goals := req.FitnessGoals
	if goals == nil {
		goals = []string{}
	}

	err = r.observe("users.update_profile", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
				SET first_name = $2,
					last_name = $3,
					height_cm = $4,
					weight_kg = $5,
					fitness_goals = $6,
					updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id, req.FirstName, req.LastName, req.HeightCm, req.WeightKg, goals,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("users.update_password", func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
			id, passwordHash)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// IncrementWorkouts bumps the running total shown on the profile.
func (r *UsersRepo) IncrementWorkouts(ctx context.Context, id string) error {
	return r.observe("users.increment_workouts", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET total_workouts = total_workouts + 1, updated_at = NOW() WHERE id = $1`, id)
		return err
	})
}
