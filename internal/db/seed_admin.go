package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the bootstrap admin account (library curation) when
// the configured credentials are present and the account does not exist yet.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	username := strings.ToLower(cfg.AdminUsername)

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, first_name, last_name, height_cm, weight_kg, fitness_goals, role, total_workouts, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		`,
		uuid.NewString(), username, strings.ToLower(cfg.AdminEmail), hash, "Admin", "Admin", 170, 70.0, []string{}, "admin", 0, now, now,
	)

	return err
}
