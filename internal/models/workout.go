// Package models defines the persisted row shapes and the transient parsed
// workout structure shared across storage, parsing, and the HTTP layer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionRow is one workout occasion. It owns zero or more exercises;
// deleting a session cascades to its exercises and their sets.
type SessionRow struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// ExerciseRow is one named movement within a session.
type ExerciseRow struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	ExerciseName string    `json:"exercise_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// SetRow is one performed unit of an exercise. Reps, weight, and notes are
// nullable: a set may be recorded before its numbers are known. Weight is
// in pounds.
type SetRow struct {
	ID         uuid.UUID `json:"id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	SetNumber  int       `json:"set_number"`
	Reps       *int      `json:"reps"`
	Weight     *float64  `json:"weight"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

// SessionDetail is a session with its exercises and sets nested, as returned
// by the session list/read endpoints.
type SessionDetail struct {
	SessionRow
	Exercises []ExerciseDetail `json:"exercises"`
}

// ExerciseDetail is an exercise with its sets nested.
type ExerciseDetail struct {
	ExerciseRow
	Sets []SetRow `json:"sets"`
}

// ParsedWorkout is the validated structure the parser hands to the workout
// logger. It is never persisted as-is.
type ParsedWorkout struct {
	ExerciseName string      `json:"exercise_name"`
	Sets         []ParsedSet `json:"sets"`
}

// ParsedSet is one set as extracted from free text. The model is instructed
// to normalize weight to pounds; WeightUnit carries what it claimed and is
// not verified server-side.
type ParsedSet struct {
	SetNumber  int     `json:"set_number"`
	Reps       int     `json:"reps"`
	Weight     float64 `json:"weight"`
	WeightUnit string  `json:"weight_unit,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}
