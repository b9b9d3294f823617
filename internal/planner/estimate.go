package planner

import "math"

// metValues are metabolic equivalents per activity type, used for calorie
// estimates. Unknown types fall back to a moderate 3.0.
var metValues = map[string]float64{
	"warm_up":    3.5,
	"cool_down":  2.5,
	"exercise":   5.0,
	"stretching": 2.5,
	"breathwork": 2.0,
	"meditation": 1.3,
	"cardio":     7.0,
	"strength":   5.0,
	"hiit":       8.0,
	"yoga":       3.0,
	"pilates":    3.5,
}

const defaultMET = 3.0

func metFor(activityType string) float64 {
	if met, ok := metValues[activityType]; ok {
		return met
	}
	return defaultMET
}

// EstimateCalories computes calories burned as MET x weight(kg) x hours.
func EstimateCalories(activityType string, weightKg float64, minutes int) int {
	if weightKg <= 0 || minutes <= 0 {
		return 0
	}

	hours := float64(minutes) / 60.0
	return int(math.Round(metFor(activityType) * weightKg * hours))
}

func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}

	heightM := heightCm / 100
	return weightKg / (heightM * heightM)
}
