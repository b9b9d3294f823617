package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// FitnessGoals is the fixed goal vocabulary; anything else is rejected at bind
// time and the planner maps these to library tags.
var FitnessGoals = []string{
	"Flexibility",
	"Better Mental Health",
	"Stress Resilience",
	"General Fitness",
	"Weight Loss",
	"Muscle Gain",
}

func IsValidGoal(goal string) bool {
	for _, g := range FitnessGoals {
		if g == goal {
			return true
		}
	}
	return false
}

type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"` // never expose hash in JSON
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	HeightCm      int        `json:"heightCm"`
	WeightKg      float64    `json:"weightKg"`
	FitnessGoals  []string   `json:"fitnessGoals"`
	Role          string     `json:"role"`
	TotalWorkouts int        `json:"totalWorkouts"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type UpdateProfileRequest struct {
	FirstName    string   `json:"firstName" binding:"required,min=1,max=80"`
	LastName     string   `json:"lastName" binding:"required,min=1,max=80"`
	HeightCm     int      `json:"heightCm" binding:"required,min=100,max=250"`
	WeightKg     float64  `json:"weightKg" binding:"required,min=30,max=200"`
	FitnessGoals []string `json:"fitnessGoals" binding:"omitempty,max=6,dive,oneof='Flexibility' 'Better Mental Health' 'Stress Resilience' 'General Fitness' 'Weight Loss' 'Muscle Gain'"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=128"`
}
