package analytics

import (
	"context"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/workout"
)

// WorkoutStats is what the overview needs from the workout log store.
type WorkoutStats interface {
	PeriodTotals(ctx context.Context, userID string, since time.Time) (workout.PeriodTotals, error)
	DistinctDays(ctx context.Context, userID string, limit int) ([]time.Time, error)
}

type Overview struct {
	Week          workout.PeriodTotals `json:"week"`
	Month         workout.PeriodTotals `json:"month"`
	AllTime       workout.PeriodTotals `json:"allTime"`
	CurrentStreak int                  `json:"currentStreakDays"`
	AvgDuration   int                  `json:"avgDurationMinutes"`
}

type Service struct {
	workouts WorkoutStats
}

func NewService(workouts WorkoutStats) *Service {
	return &Service{workouts: workouts}
}

// BuildOverview aggregates the 7 day, 30 day and all-time windows plus the
// current streak. A user with no logs gets all zeros, not an error.
func (s *Service) BuildOverview(ctx context.Context, userID string, now time.Time) (Overview, error) {
	now = now.UTC()

	week, err := s.workouts.PeriodTotals(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		return Overview{}, err
	}

	month, err := s.workouts.PeriodTotals(ctx, userID, now.AddDate(0, 0, -30))
	if err != nil {
		return Overview{}, err
	}

	allTime, err := s.workouts.PeriodTotals(ctx, userID, time.Time{})
	if err != nil {
		return Overview{}, err
	}

	days, err := s.workouts.DistinctDays(ctx, userID, 0)
	if err != nil {
		return Overview{}, err
	}

	avg := 0
	if allTime.Workouts > 0 {
		avg = allTime.Minutes / allTime.Workouts
	}

	return Overview{
		Week:          week,
		Month:         month,
		AllTime:       allTime,
		CurrentStreak: CurrentStreak(days, now),
		AvgDuration:   avg,
	}, nil
}
