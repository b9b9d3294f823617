package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

type WorkoutCursor struct {
	LoggedAt time.Time `json:"loggedAt"`
	ID       string    `json:"id"`
}

func EncodeWorkoutCursor(loggedAt time.Time, id string) (string, error) {
	b, err := json.Marshal(WorkoutCursor{LoggedAt: loggedAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeWorkoutCursor(cursor string) (WorkoutCursor, error) {
	if cursor == "" {
		return WorkoutCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return WorkoutCursor{}, err
	}

	var c WorkoutCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return WorkoutCursor{}, err
	}
	if c.ID == "" || c.LoggedAt.IsZero() {
		return WorkoutCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
