package parse

import (
	"encoding/json"
	"fmt"

	"github.com/claude/gymlog/internal/models"
)

// ValidationError identifies the set entry (0-based Index) and field that
// made the whole structure unacceptable.
type ValidationError struct {
	Index int
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s in set %d", e.Field, e.Index+1)
}

// Validate enforces the schema policy on a decoded workout, per set entry in
// order:
//
//  1. set_number missing, non-integer, or < 1 is repaired to the entry's
//     1-based position. Silent.
//  2. reps missing, non-integer, or < 0 rejects the whole structure.
//  3. weight missing, non-numeric, or < 0 rejects the whole structure.
//
// Rejection is all-or-nothing: the first offending set aborts everything, no
// prefix is accepted.
func Validate(raw *RawWorkout) (*models.ParsedWorkout, error) {
	workout := &models.ParsedWorkout{
		ExerciseName: raw.ExerciseName,
		Sets:         make([]models.ParsedSet, 0, len(raw.Sets)),
	}

	for i, entry := range raw.Sets {
		setNumber, ok := asInt(entry["set_number"])
		if !ok || setNumber < 1 {
			setNumber = i + 1
		}

		reps, ok := asInt(entry["reps"])
		if !ok || reps < 0 {
			return nil, &ValidationError{Index: i, Field: "reps"}
		}

		weight, ok := asFloat(entry["weight"])
		if !ok || weight < 0 {
			return nil, &ValidationError{Index: i, Field: "weight"}
		}

		set := models.ParsedSet{
			SetNumber: setNumber,
			Reps:      reps,
			Weight:    weight,
		}
		if unit, ok := entry["weight_unit"].(string); ok {
			set.WeightUnit = unit
		}
		if notes, ok := entry["notes"].(string); ok && notes != "" {
			set.Notes = &notes
		}
		workout.Sets = append(workout.Sets, set)
	}

	return workout, nil
}

// asInt reports whether v is an integer value. JSON floats are not integers
// even when whole, matching the strict type check the contract specifies.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// asFloat reports whether v is a numeric value.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
