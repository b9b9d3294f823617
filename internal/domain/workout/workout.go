package workout

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("workout log not found")

// ActivityBlock is one timed segment of a completed workout, referencing a
// library activity by id and type.
type ActivityBlock struct {
	ActivityID      string `json:"activityId"`
	ActivityType    string `json:"activityType"`
	Name            string `json:"name,omitempty"`
	DurationMinutes int    `json:"durationMinutes"`
	Note            string `json:"note,omitempty"`
}

// Log is append-only: once written it is never updated, only deleted by its
// owner. Corrections are new entries.
type Log struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"-"`
	LoggedAt             time.Time       `json:"loggedAt"`
	WorkoutType          string          `json:"workoutType"`
	Blocks               []ActivityBlock `json:"blocks"`
	TotalDurationMinutes int             `json:"totalDurationMinutes"`
	TotalCaloriesBurned  int             `json:"totalCaloriesBurned"`
	Notes                string          `json:"notes,omitempty"`
	PlanID               *string         `json:"planId,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

type CreateLogRequest struct {
	Date        string          `json:"date" binding:"required,datetime=2006-01-02"`
	WorkoutType string          `json:"workoutType" binding:"required,min=2,max=60"`
	Blocks      []BlockRequest  `json:"blocks" binding:"omitempty,max=20,dive"`
	Notes       string          `json:"notes" binding:"omitempty,max=1000"`
	PlanID      *string         `json:"planId" binding:"omitempty,uuid"`
}

type BlockRequest struct {
	ActivityID      string `json:"activityId" binding:"required"`
	ActivityType    string `json:"activityType" binding:"required,oneof=exercise warm_up cool_down stretching meditation breathwork cardio strength hiit yoga pilates"`
	Name            string `json:"name" binding:"omitempty,max=120"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,min=1,max=240"`
	Note            string `json:"note" binding:"omitempty,max=300"`
}

type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// PeriodTotals is a single aggregate row over a date window.
type PeriodTotals struct {
	Workouts int `json:"workouts"`
	Minutes  int `json:"minutes"`
	Calories int `json:"calories"`
}
