package db

import (
	"context"

	"github.com/fitlistic/fitlistic/internal/domain/activity"
	"github.com/google/uuid"
)

type ActivitySeeder interface {
	Count(ctx context.Context) (int, error)
	BulkInsert(ctx context.Context, activities []activity.Activity) error
}

// SeedActivityLibrary loads the starter activity library when the table is
// empty, so a fresh deployment can generate plans out of the box.
func SeedActivityLibrary(ctx context.Context, repo ActivitySeeder) (int, error) {
	n, err := repo.Count(ctx)

	if err != nil {
		return 0, err
	}

	if n > 0 {
		return 0, nil
	}

	seed := starterLibrary()

	if err := repo.BulkInsert(ctx, seed); err != nil {
		return 0, err
	}

	return len(seed), nil
}

func starterLibrary() []activity.Activity {
	mk := func(a activity.Activity) activity.Activity {
		a.ID = uuid.NewString()
		return a
	}

	return []activity.Activity{
		mk(activity.Activity{
			Name: "Bodyweight Squat",
			Type: activity.TypeExercise,
			Tags: []string{"bodyweight", "compound", "functional", "general"},
			DifficultyLevels: map[string]activity.Prescription{
				"beginner":     {Sets: 3, Reps: 10},
				"intermediate": {Sets: 3, Reps: 15},
				"advanced":     {Sets: 4, Reps: 20},
			},
			Instructions: []string{"Feet shoulder width apart", "Sit back and down, chest up", "Drive through the heels to stand"},
			TargetAreas:  []string{"quads", "glutes", "core"},
		}),
		mk(activity.Activity{
			Name: "Push-Up",
			Type: activity.TypeExercise,
			Tags: []string{"push", "upper-body", "bodyweight", "strength"},
			DifficultyLevels: map[string]activity.Prescription{
				"beginner":     {Sets: 3, Reps: 6},
				"intermediate": {Sets: 3, Reps: 12},
				"advanced":     {Sets: 4, Reps: 20},
			},
			Instructions: []string{"Hands under shoulders", "Body in one line", "Lower until chest nearly touches the floor"},
			TargetAreas:  []string{"chest", "triceps", "core"},
		}),
		mk(activity.Activity{
			Name: "Burpee Intervals",
			Type: activity.TypeExercise,
			Tags: []string{"hiit", "full-body", "cardio"},
			DifficultyLevels: map[string]activity.Prescription{
				"intermediate": {Sets: 4, Reps: 10},
				"advanced":     {Sets: 5, Reps: 15},
			},
			Instructions: []string{"Squat, kick back to plank", "Push-up, jump feet in", "Explode up"},
			TargetAreas:  []string{"full body"},
		}),
		mk(activity.Activity{
			Name:         "Jumping Jacks Warm-Up",
			Type:         activity.TypeWarmUp,
			Tags:         []string{"general", "foundational", "no-equipment", "cardio"},
			Instructions: []string{"Start slow for one minute", "Increase pace gradually", "Keep breathing steady"},
			Benefits:     []string{"Raises heart rate", "Loosens shoulders and hips"},
			TargetAreas:  []string{"full body"},
		}),
		mk(activity.Activity{
			Name:         "Dynamic Mobility Flow",
			Type:         activity.TypeWarmUp,
			Tags:         []string{"mobility", "dynamic", "activation", "preparation"},
			Instructions: []string{"Arm circles", "Hip openers", "Walking lunges with twist"},
			Benefits:     []string{"Prepares joints for load"},
			TargetAreas:  []string{"hips", "shoulders"},
		}),
		mk(activity.Activity{
			Name:         "Walking Cool-Down",
			Type:         activity.TypeCoolDown,
			Tags:         []string{"general", "basic", "recovery"},
			Instructions: []string{"Walk at an easy pace", "Shake out the arms", "Slow the breath"},
			Benefits:     []string{"Gradually lowers heart rate"},
		}),
		mk(activity.Activity{
			Name:         "Gentle Floor Stretch",
			Type:         activity.TypeCoolDown,
			Tags:         []string{"stretching", "relaxation", "gentle", "recovery"},
			Instructions: []string{"Hamstring stretch 30s per side", "Child's pose 60s", "Spinal twist 30s per side"},
			Benefits:     []string{"Reduces post-workout stiffness"},
			TargetAreas:  []string{"hamstrings", "back"},
		}),
		mk(activity.Activity{
			Name:         "Morning Mobility Routine",
			Type:         activity.TypeStretching,
			Tags:         []string{"morning", "mobility", "wake-up", "energizing"},
			Instructions: []string{"Cat-cow x10", "World's greatest stretch per side", "Standing forward fold 45s"},
			Benefits:     []string{"Improves range of motion"},
			TargetAreas:  []string{"spine", "hips"},
		}),
		mk(activity.Activity{
			Name:         "Full-Body Stretch Sequence",
			Type:         activity.TypeStretching,
			Tags:         []string{"full-body", "general", "active"},
			Instructions: []string{"Hold each stretch 30 seconds", "Breathe into the stretch", "Never bounce"},
			TargetAreas:  []string{"full body"},
		}),
		mk(activity.Activity{
			Name:         "Box Breathing",
			Type:         activity.TypeBreathwork,
			Tags:         []string{"recovery", "relaxation", "stress"},
			Instructions: []string{"Inhale 4 counts", "Hold 4 counts", "Exhale 4 counts", "Hold 4 counts"},
			Benefits:     []string{"Calms the nervous system"},
		}),
		mk(activity.Activity{
			Name:         "Energizing Breath",
			Type:         activity.TypeBreathwork,
			Tags:         []string{"hiit", "power", "energizing"},
			Instructions: []string{"Short sharp exhales through the nose", "Passive inhales", "Three rounds of 30 breaths"},
			Benefits:     []string{"Increases alertness"},
		}),
		mk(activity.Activity{
			Name:         "Body Scan Meditation",
			Type:         activity.TypeMeditation,
			Tags:         []string{"mindfulness", "relaxation", "awareness"},
			Instructions: []string{"Lie down comfortably", "Move attention slowly from toes to head", "Note sensations without judgement"},
			Benefits:     []string{"Improves body awareness", "Reduces stress"},
		}),
		mk(activity.Activity{
			Name:         "Focus Meditation",
			Type:         activity.TypeMeditation,
			Tags:         []string{"focus", "discipline", "visualization"},
			Instructions: []string{"Sit upright", "Count breaths from one to ten", "Start over when the mind wanders"},
			Benefits:     []string{"Builds concentration"},
		}),
	}
}
