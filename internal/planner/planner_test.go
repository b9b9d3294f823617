package planner_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/fitlistic/fitlistic/internal/db"
	"github.com/fitlistic/fitlistic/internal/domain/plan"
	"github.com/fitlistic/fitlistic/internal/planner"
	"github.com/fitlistic/fitlistic/internal/repo/memory"
)

func newPlanner(t *testing.T) *planner.Planner {
	t.Helper()

	repo := memory.NewActivitiesRepo()

	if _, err := db.SeedActivityLibrary(context.Background(), repo); err != nil {
		t.Fatalf("failed to seed activity library: %v", err)
	}

	return planner.New(repo)
}

func baseRequest() plan.GeneratePlanRequest {
	return plan.GeneratePlanRequest{
		Goals:            []string{"General Fitness"},
		Level:            "beginner",
		PreferredRestDay: "sunday",
		DurationMinutes:  30,
		StartDate:        "2026-08-31", // a Monday
	}
}

func TestGenerateWeeklyPlanShape(t *testing.T) {
	p := newPlanner(t)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	meta, schedule, err := p.GenerateWeeklyPlan(context.Background(), baseRequest(), now)
	if err != nil {
		t.Fatalf("failed to generate plan: %v", err)
	}

	if meta.StartDate != "2026-08-31" {
		t.Fatalf("got start date %q, want 2026-08-31", meta.StartDate)
	}

	if len(schedule) != 7 {
		t.Fatalf("got %d days, want 7", len(schedule))
	}

	for i := 0; i < 7; i++ {
		date := time.Date(2026, 8, 31+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		if _, ok := schedule[date]; !ok {
			t.Fatalf("schedule missing day %s", date)
		}
	}

	// 2026-09-06 is the Sunday in this week.
	rest, ok := schedule["2026-09-06"]

	if !ok {
		t.Fatalf("schedule missing the rest day")
	}

	if rest.Type != plan.DayRest {
		t.Fatalf("got rest day type %q, want %q", rest.Type, plan.DayRest)
	}

	if len(rest.Blocks) != 0 {
		t.Fatalf("rest day should have no blocks, got %d", len(rest.Blocks))
	}

	for date, day := range schedule {
		if date == "2026-09-06" {
			continue
		}

		if day.Type != plan.DayWorkout {
			t.Fatalf("day %s type %q, want %q", date, day.Type, plan.DayWorkout)
		}

		if len(day.Blocks) == 0 {
			t.Fatalf("workout day %s has no blocks", date)
		}
	}
}

func TestGenerateWeeklyPlanDeterministic(t *testing.T) {
	p := newPlanner(t)
	now := time.Now().UTC()

	_, first, err := p.GenerateWeeklyPlan(context.Background(), baseRequest(), now)
	if err != nil {
		t.Fatalf("failed to generate plan: %v", err)
	}

	_, second, err := p.GenerateWeeklyPlan(context.Background(), baseRequest(), now)
	if err != nil {
		t.Fatalf("failed to generate plan: %v", err)
	}

	for date, day := range first {
		names := func(d plan.DaySchedule) []string {
			out := make([]string, 0, len(d.Blocks))
			for _, b := range d.Blocks {
				out = append(out, b.Name)
			}
			return out
		}

		if !reflect.DeepEqual(names(day), names(second[date])) {
			t.Fatalf("day %s differs between runs: %v vs %v", date, names(day), names(second[date]))
		}
	}
}

func TestWorkoutDayOrderAndBudget(t *testing.T) {
	p := newPlanner(t)

	req := baseRequest()
	req.DurationMinutes = 60

	_, schedule, err := p.GenerateWeeklyPlan(context.Background(), req, time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to generate plan: %v", err)
	}

	day := schedule["2026-08-31"]

	if day.Type != plan.DayWorkout {
		t.Fatalf("expected a workout day")
	}

	// Execution order: warm-up, breathwork, exercises, stretching, cool-down,
	// meditation. The seeded library has every type, so all appear at 60min.
	order := map[string]int{
		"warm_up":    0,
		"breathwork": 1,
		"exercise":   2,
		"stretching": 3,
		"cool_down":  4,
		"meditation": 5,
	}

	last := -1
	total := 0

	for _, b := range day.Blocks {
		rank, ok := order[b.ActivityType]

		if !ok {
			t.Fatalf("unexpected block type %q", b.ActivityType)
		}

		if rank < last {
			t.Fatalf("block type %q out of order", b.ActivityType)
		}

		last = rank
		total += b.DurationMinutes
	}

	if total != 60 {
		t.Fatalf("got total %d minutes, want 60", total)
	}
}

func TestShortPlanSkipsOptionalComponents(t *testing.T) {
	p := newPlanner(t)

	req := baseRequest()
	req.DurationMinutes = 15

	_, schedule, err := p.GenerateWeeklyPlan(context.Background(), req, time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to generate plan: %v", err)
	}

	for date, day := range schedule {
		for _, b := range day.Blocks {
			if b.ActivityType == "breathwork" || b.ActivityType == "stretching" {
				t.Fatalf("day %s includes %q, which has no budget at 15 minutes", date, b.ActivityType)
			}
		}
	}
}

func TestExerciseNotesCarryPrescription(t *testing.T) {
	p := newPlanner(t)

	req := baseRequest()
	req.Goals = []string{"Muscle Gain"}
	req.Level = "advanced"

	_, schedule, err := p.GenerateWeeklyPlan(context.Background(), req, time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to generate plan: %v", err)
	}

	found := false

	for _, day := range schedule {
		for _, b := range day.Blocks {
			if b.ActivityType == "exercise" && b.Note != "" {
				found = true
			}
		}
	}

	if !found {
		t.Fatalf("expected at least one exercise block with a sets/reps note")
	}
}

func TestGenerateWeeklyPlanRejectsBadInputs(t *testing.T) {
	p := newPlanner(t)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		tweak func(*plan.GeneratePlanRequest)
	}{
		{
			name:  "unsupported_duration",
			tweak: func(r *plan.GeneratePlanRequest) { r.DurationMinutes = 25 },
		},
		{
			name:  "unknown_goal",
			tweak: func(r *plan.GeneratePlanRequest) { r.Goals = []string{"Get Swole"} },
		},
		{
			name:  "bad_start_date",
			tweak: func(r *plan.GeneratePlanRequest) { r.StartDate = "31-08-2026" },
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.tweak(&req)

			if _, _, err := p.GenerateWeeklyPlan(context.Background(), req, now); err == nil {
				t.Fatalf("expected an error for %s", tt.name)
			}
		})
	}
}
