package planner

import (
	"math"
	"testing"
)

func TestEstimateCalories(t *testing.T) {
	tests := []struct {
		name         string
		activityType string
		weightKg     float64
		minutes      int
		want         int
	}{
		{name: "exercise_hour", activityType: "exercise", weightKg: 70, minutes: 60, want: 350},
		{name: "hiit_half_hour", activityType: "hiit", weightKg: 80, minutes: 30, want: 320},
		{name: "meditation", activityType: "meditation", weightKg: 70, minutes: 10, want: 15},
		{name: "unknown_type_uses_default", activityType: "juggling", weightKg: 60, minutes: 60, want: 180},
		{name: "zero_minutes", activityType: "exercise", weightKg: 70, minutes: 0, want: 0},
		{name: "zero_weight", activityType: "exercise", weightKg: 0, minutes: 60, want: 0},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := EstimateCalories(tt.activityType, tt.weightKg, tt.minutes)

			if got != tt.want {
				t.Fatalf("got %d calories, want %d", got, tt.want)
			}
		})
	}
}

func TestBMI(t *testing.T) {
	got := BMI(70, 175)

	if math.Abs(got-22.86) > 0.01 {
		t.Fatalf("got BMI %v, want ~22.86", got)
	}

	if BMI(70, 0) != 0 {
		t.Fatalf("zero height should yield zero BMI")
	}
}
