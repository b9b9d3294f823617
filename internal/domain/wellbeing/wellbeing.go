package wellbeing

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("wellbeing score not found")
	ErrAlreadyLoggedToday = errors.New("wellbeing score already logged today")
)

const (
	MinScore = 1
	MaxScore = 5
)

// Score is a 1-5 mood rating, at most one per user per UTC day.
type Score struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Score     int       `json:"score"`
	Notes     string    `json:"notes,omitempty"`
	LoggedAt  time.Time `json:"loggedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateScoreRequest struct {
	Score int    `json:"score" binding:"required,min=1,max=5"`
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

type SeriesFilter struct {
	From *time.Time
	To   *time.Time
}
