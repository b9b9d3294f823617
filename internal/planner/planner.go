package planner

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/fitlistic/fitlistic/internal/domain/activity"
	"github.com/fitlistic/fitlistic/internal/domain/plan"
	"github.com/fitlistic/fitlistic/internal/domain/user"
	"github.com/fitlistic/fitlistic/internal/domain/workout"
)

// ActivitySource is what the planner needs from the activity library. Both
// the postgres and the in-memory repos satisfy it.
type ActivitySource interface {
	List(ctx context.Context, filter activity.ListFilter) ([]activity.Activity, error)
}

type Planner struct {
	src ActivitySource
}

func New(src ActivitySource) *Planner {
	return &Planner{src: src}
}

// componentBudget is the per-day minute split for one plan duration. A zero
// budget skips the component entirely.
type componentBudget struct {
	WarmUp     int
	Breathwork int
	CoolDown   int
	Meditation int
	Stretching int
	Exercises  int
}

var budgets = map[int]componentBudget{
	15: {WarmUp: 4, Breathwork: 0, CoolDown: 4, Meditation: 3, Stretching: 0, Exercises: 2},
	30: {WarmUp: 5, Breathwork: 3, CoolDown: 5, Meditation: 5, Stretching: 0, Exercises: 2},
	45: {WarmUp: 5, Breathwork: 5, CoolDown: 5, Meditation: 5, Stretching: 0, Exercises: 4},
	60: {WarmUp: 7, Breathwork: 5, CoolDown: 7, Meditation: 7, Stretching: 10, Exercises: 4},
}

const minMinutesPerExercise = 5

const candidateLimit = 5

// goalTags maps each fitness goal to library tags, per activity type.
var goalTags = map[activity.Type]map[string][]string{
	activity.TypeExercise: {
		"Muscle Gain":          {"push", "upper-body", "compound", "strength"},
		"Weight Loss":          {"hiit", "full-body", "cardio"},
		"General Fitness":      {"functional", "bodyweight", "compound", "general"},
		"Flexibility":          {"bodyweight", "functional", "mobility"},
		"Better Mental Health": {"bodyweight", "functional"},
		"Stress Resilience":    {"functional", "bodyweight"},
	},
	activity.TypeBreathwork: {
		"General Fitness":      {"hiit", "recovery", "foam-rolling", "stretching"},
		"Weight Loss":          {"hiit", "recovery", "foam-rolling", "stretching"},
		"Better Mental Health": {"recovery", "foam-rolling"},
		"Flexibility":          {"recovery", "stretching"},
		"Stress Resilience":    {"recovery", "relaxation"},
		"Muscle Gain":          {"recovery", "power"},
	},
	activity.TypeMeditation: {
		"Better Mental Health": {"mindfulness", "relaxation", "anxiety-reduction", "awareness"},
		"Stress Resilience":    {"relaxation", "anxiety-reduction", "awareness"},
		"General Fitness":      {"mindfulness", "relaxation"},
		"Flexibility":          {"mindfulness", "body-awareness"},
		"Weight Loss":          {"focus", "discipline"},
		"Muscle Gain":          {"focus", "visualization"},
	},
	activity.TypeStretching: {
		"Flexibility":          {"morning", "mobility", "wake-up", "energizing"},
		"General Fitness":      {"mobility", "functional"},
		"Weight Loss":          {"full-body", "active"},
		"Better Mental Health": {"relaxation", "mindful"},
		"Stress Resilience":    {"relaxation", "recovery"},
		"Muscle Gain":          {"recovery", "muscle-specific"},
	},
	activity.TypeCoolDown: {
		"General Fitness":      {"general", "basic", "relaxation", "recovery"},
		"Weight Loss":          {"general", "basic", "relaxation", "recovery"},
		"Flexibility":          {"stretching", "mobility"},
		"Better Mental Health": {"relaxation", "mindful"},
		"Stress Resilience":    {"relaxation", "recovery"},
		"Muscle Gain":          {"recovery", "gentle"},
	},
	activity.TypeWarmUp: {
		"General Fitness":      {"general", "foundational", "no-equipment", "scalable"},
		"Muscle Gain":          {"strength", "activation", "mobility", "preparation"},
		"Weight Loss":          {"cardio", "full-body", "hiit"},
		"Flexibility":          {"mobility", "dynamic"},
		"Better Mental Health": {"energizing", "focus"},
		"Stress Resilience":    {"grounding", "energizing"},
	},
}

var defaultTags = map[activity.Type][]string{
	activity.TypeExercise:   {"functional", "bodyweight", "compound", "general"},
	activity.TypeBreathwork: {"recovery", "relaxation"},
	activity.TypeMeditation: {"mindfulness", "relaxation"},
	activity.TypeStretching: {"general", "full-body"},
	activity.TypeCoolDown:   {"general", "basic"},
	activity.TypeWarmUp:     {"general", "foundational"},
}

// tagsForType collects the union of tags the user's goals map to for one
// activity type, falling back to the type's defaults.
func tagsForType(t activity.Type, goals []string) []string {
	seen := map[string]bool{}
	out := []string{}

	add := func(tags []string) {
		for _, tag := range tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}

	perGoal := goalTags[t]

	for _, goal := range goals {
		if tags, ok := perGoal[goal]; ok {
			add(tags)
		} else {
			add(defaultTags[t])
		}
	}

	if len(out) == 0 {
		add(defaultTags[t])
	}

	return out
}

// daySeed derives a deterministic seed from the schedule date so the same
// plan request always yields the same week, but each day varies.
func daySeed(date string) int64 {
	var sum int64
	for _, c := range date {
		sum += int64(c)
	}
	return sum
}

func pick(activities []activity.Activity, seedBase int64, offset int64) (activity.Activity, bool) {
	if len(activities) == 0 {
		return activity.Activity{}, false
	}

	rng := rand.New(rand.NewSource(seedBase + offset))
	return activities[rng.Intn(len(activities))], true
}

// fetchCandidates queries the library with progressively looser filters:
// tags+level, tags only, level only, then the easier levels for users whose
// own level has no entries.
func (p *Planner) fetchCandidates(ctx context.Context, t activity.Type, goals []string, level string) ([]activity.Activity, error) {
	tags := tagsForType(t, goals)

	filters := []activity.ListFilter{
		{Type: &t, Tags: tags, Level: &level, Limit: candidateLimit},
		{Type: &t, Tags: tags, Limit: candidateLimit},
		{Type: &t, Level: &level, Limit: candidateLimit},
	}

	if level == "advanced" {
		inter := "intermediate"
		filters = append(filters, activity.ListFilter{Type: &t, Level: &inter, Limit: candidateLimit})
	}

	if level == "advanced" || level == "intermediate" {
		beg := "beginner"
		filters = append(filters, activity.ListFilter{Type: &t, Level: &beg, Limit: candidateLimit})
	}

	filters = append(filters, activity.ListFilter{Type: &t, Limit: candidateLimit})

	for _, f := range filters {
		found, err := p.src.List(ctx, f)

		if err != nil {
			return nil, err
		}

		if len(found) > 0 {
			return found, nil
		}
	}

	return nil, nil
}

func block(act activity.Activity, minutes int, note string) workout.ActivityBlock {
	return workout.ActivityBlock{
		ActivityID:      act.ID,
		ActivityType:    string(act.Type),
		Name:            act.Name,
		DurationMinutes: minutes,
		Note:            note,
	}
}

// buildDay assembles one workout day in execution order: warm-up, breathwork,
// main exercises, stretching, cool-down, meditation.
func (p *Planner) buildDay(ctx context.Context, date string, req plan.GeneratePlanRequest, budget componentBudget) ([]workout.ActivityBlock, error) {
	seed := daySeed(date)
	blocks := []workout.ActivityBlock{}

	var warmUpMin, breathMin int

	warmUps, err := p.fetchCandidates(ctx, activity.TypeWarmUp, req.Goals, req.Level)
	if err != nil {
		return nil, err
	}
	warmUp, hasWarmUp := pick(warmUps, seed, 0)
	if hasWarmUp {
		warmUpMin = budget.WarmUp
	}

	var breath activity.Activity
	var hasBreath bool
	if budget.Breathwork > 0 {
		candidates, err := p.fetchCandidates(ctx, activity.TypeBreathwork, req.Goals, req.Level)
		if err != nil {
			return nil, err
		}
		breath, hasBreath = pick(candidates, seed, 1)
		if hasBreath {
			breathMin = budget.Breathwork
		}
	}

	exercises, err := p.fetchCandidates(ctx, activity.TypeExercise, req.Goals, req.Level)
	if err != nil {
		return nil, err
	}

	// Whatever the fixed components do not consume goes to the main exercises.
	auxiliary := warmUpMin + breathMin + budget.CoolDown + budget.Meditation + budget.Stretching
	remaining := req.DurationMinutes - auxiliary

	exerciseCount := len(exercises)
	if exerciseCount > budget.Exercises {
		exerciseCount = budget.Exercises
	}

	if hasWarmUp {
		blocks = append(blocks, block(warmUp, warmUpMin, ""))
	}

	if hasBreath {
		blocks = append(blocks, block(breath, breathMin, ""))
	}

	if exerciseCount > 0 {
		perExercise := remaining / exerciseCount
		if perExercise < minMinutesPerExercise {
			perExercise = minMinutesPerExercise
		}

		for _, ex := range exercises[:exerciseCount] {
			note := ""
			if level, ok := ex.PickLevel(req.Level); ok {
				rx := ex.DifficultyLevels[level]
				if rx.Sets > 0 && rx.Reps > 0 {
					note = fmt.Sprintf("%d sets x %d reps (%s)", rx.Sets, rx.Reps, level)
				}
			}

			blocks = append(blocks, block(ex, perExercise, note))
		}
	}

	if budget.Stretching > 0 {
		candidates, err := p.fetchCandidates(ctx, activity.TypeStretching, req.Goals, req.Level)
		if err != nil {
			return nil, err
		}
		if stretch, ok := pick(candidates, seed, 2); ok {
			blocks = append(blocks, block(stretch, budget.Stretching, ""))
		}
	}

	coolDowns, err := p.fetchCandidates(ctx, activity.TypeCoolDown, req.Goals, req.Level)
	if err != nil {
		return nil, err
	}
	if coolDown, ok := pick(coolDowns, seed, 3); ok {
		blocks = append(blocks, block(coolDown, budget.CoolDown, ""))
	}

	meditations, err := p.fetchCandidates(ctx, activity.TypeMeditation, req.Goals, req.Level)
	if err != nil {
		return nil, err
	}
	if meditation, ok := pick(meditations, seed, 4); ok {
		blocks = append(blocks, block(meditation, budget.Meditation, ""))
	}

	return blocks, nil
}

// GenerateWeeklyPlan builds a seven day schedule starting at req.StartDate.
// The preferred rest day gets an empty schedule; selection is deterministic
// per date, so regenerating with the same inputs yields the same week.
func (p *Planner) GenerateWeeklyPlan(ctx context.Context, req plan.GeneratePlanRequest, now time.Time) (plan.Metadata, map[string]plan.DaySchedule, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)

	if err != nil {
		return plan.Metadata{}, nil, fmt.Errorf("parse start date: %w", err)
	}

	if !plan.IsValidDuration(req.DurationMinutes) {
		return plan.Metadata{}, nil, fmt.Errorf("unsupported plan duration %d", req.DurationMinutes)
	}

	for _, goal := range req.Goals {
		if !user.IsValidGoal(goal) {
			return plan.Metadata{}, nil, fmt.Errorf("unknown fitness goal %q", goal)
		}
	}

	budget := budgets[req.DurationMinutes]

	schedule := make(map[string]plan.DaySchedule, 7)

	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		date := day.Format("2006-01-02")
		weekday := weekdayName(day)

		if weekday == req.PreferredRestDay {
			schedule[date] = plan.DaySchedule{Type: plan.DayRest, Blocks: []workout.ActivityBlock{}}
			continue
		}

		blocks, err := p.buildDay(ctx, date, req, budget)

		if err != nil {
			return plan.Metadata{}, nil, err
		}

		schedule[date] = plan.DaySchedule{Type: plan.DayWorkout, Blocks: blocks}
	}

	meta := plan.Metadata{
		GeneratedAt:      now.UTC(),
		StartDate:        req.StartDate,
		Goals:            req.Goals,
		Level:            req.Level,
		PreferredRestDay: req.PreferredRestDay,
		DurationMinutes:  req.DurationMinutes,
	}

	return meta, schedule, nil
}

func weekdayName(t time.Time) string {
	// time.Weekday counts Sunday as 0, DaysOfWeek starts at Monday.
	return plan.DaysOfWeek[(int(t.Weekday())+6)%7]
}
