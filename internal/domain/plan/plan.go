package plan

import (
	"errors"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/workout"
)

var (
	ErrNoActivePlan   = errors.New("no active plan")
	ErrDayNotInPlan   = errors.New("day not in plan")
	ErrDayAlreadyDone = errors.New("day already completed this week")
)

var DaysOfWeek = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var Durations = []int{15, 30, 45, 60}

func IsValidDuration(minutes int) bool {
	for _, d := range Durations {
		if d == minutes {
			return true
		}
	}
	return false
}

type DayType string

const (
	DayWorkout DayType = "Workout Day"
	DayRest    DayType = "Rest Day"
)

// DaySchedule is one day of the weekly plan, in execution order: warm-up,
// breathwork, main exercises, stretching, cool-down, meditation.
type DaySchedule struct {
	Type   DayType                 `json:"type"`
	Blocks []workout.ActivityBlock `json:"blocks"`
}

type Metadata struct {
	GeneratedAt      time.Time `json:"generatedAt"`
	StartDate        string    `json:"startDate"`
	Goals            []string  `json:"goals"`
	Level            string    `json:"level"`
	PreferredRestDay string    `json:"preferredRestDay"`
	DurationMinutes  int       `json:"durationMinutes"`
}

// WeeklyPlan holds a 7-day schedule keyed by YYYY-MM-DD date. Exactly one
// plan per user is active at a time; generating a new one deactivates prior
// plans.
type WeeklyPlan struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"-"`
	Metadata  Metadata               `json:"metadata"`
	Schedule  map[string]DaySchedule `json:"schedule"`
	IsActive  bool                   `json:"isActive"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Day looks up the schedule entry for a YYYY-MM-DD date.
func (p WeeklyPlan) Day(date string) (DaySchedule, error) {
	day, ok := p.Schedule[date]

	if !ok {
		return DaySchedule{}, ErrDayNotInPlan
	}

	return day, nil
}

type GeneratePlanRequest struct {
	Goals            []string `json:"goals" binding:"required,min=1,max=6,dive,oneof='Flexibility' 'Better Mental Health' 'Stress Resilience' 'General Fitness' 'Weight Loss' 'Muscle Gain'"`
	Level            string   `json:"level" binding:"required,oneof=beginner intermediate advanced"`
	PreferredRestDay string   `json:"preferredRestDay" binding:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	DurationMinutes  int      `json:"durationMinutes" binding:"required,oneof=15 30 45 60"`
	StartDate        string   `json:"startDate" binding:"required,datetime=2006-01-02"`
}

type CompleteDayRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}

// WeekStart returns Monday 00:00:00 UTC of the week containing now.
func WeekStart(now time.Time) time.Time {
	now = now.UTC()
	weekday := int(now.Weekday())
	// time.Weekday counts Sunday as 0.
	daysSinceMonday := (weekday + 6) % 7
	monday := now.AddDate(0, 0, -daysSinceMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}
