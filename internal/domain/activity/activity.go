package activity

import (
	"errors"
)

var ErrNotFound = errors.New("activity not found")

type Type string

const (
	TypeExercise   Type = "exercise"
	TypeWarmUp     Type = "warm_up"
	TypeCoolDown   Type = "cool_down"
	TypeStretching Type = "stretching"
	TypeMeditation Type = "meditation"
	TypeBreathwork Type = "breathwork"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeExercise, TypeWarmUp, TypeCoolDown, TypeStretching, TypeMeditation, TypeBreathwork:
		return true
	default:
		return false
	}
}

var Levels = []string{"beginner", "intermediate", "advanced"}

func IsValidLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Prescription is the sets/reps guidance for one difficulty level. Only
// meaningful for exercises; other activity types are purely time based.
type Prescription struct {
	Sets int `json:"sets,omitempty"`
	Reps int `json:"reps,omitempty"`
}

type Activity struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Type             Type                    `json:"type"`
	Tags             []string                `json:"tags,omitempty"`
	DifficultyLevels map[string]Prescription `json:"difficultyLevels,omitempty"`
	Instructions     []string                `json:"instructions,omitempty"`
	Benefits         []string                `json:"benefits,omitempty"`
	TargetAreas      []string                `json:"targetAreas,omitempty"`
	EquipmentNeeded  string                  `json:"equipmentNeeded,omitempty"`
}

type ListFilter struct {
	Type  *Type
	Tags  []string
	Level *string
	Limit int
}

type CreateActivityRequest struct {
	Name             string                  `json:"name" binding:"required,min=2,max=120"`
	Type             Type                    `json:"type" binding:"required,oneof=exercise warm_up cool_down stretching meditation breathwork"`
	Tags             []string                `json:"tags" binding:"omitempty,max=12,dive,min=2,max=40"`
	DifficultyLevels map[string]Prescription `json:"difficultyLevels" binding:"omitempty"`
	Instructions     []string                `json:"instructions" binding:"omitempty,max=30"`
	Benefits         []string                `json:"benefits" binding:"omitempty,max=20"`
	TargetAreas      []string                `json:"targetAreas" binding:"omitempty,max=20"`
	EquipmentNeeded  string                  `json:"equipmentNeeded" binding:"omitempty,max=120"`
}

// PickLevel resolves the effective difficulty for an exercise: the requested
// level when present, otherwise falling back advanced -> intermediate ->
// beginner -> any.
func (a Activity) PickLevel(level string) (string, bool) {
	if len(a.DifficultyLevels) == 0 {
		return "", false
	}

	if _, ok := a.DifficultyLevels[level]; ok {
		return level, true
	}

	if level == "advanced" {
		if _, ok := a.DifficultyLevels["intermediate"]; ok {
			return "intermediate", true
		}
	}

	if level == "advanced" || level == "intermediate" {
		if _, ok := a.DifficultyLevels["beginner"]; ok {
			return "beginner", true
		}
	}

	for l := range a.DifficultyLevels {
		return l, true
	}

	return "", false
}
