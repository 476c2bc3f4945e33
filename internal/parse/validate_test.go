package parse

import (
	"encoding/json"
	"errors"
	"testing"
)

func num(s string) json.Number { return json.Number(s) }

// TestValidateRepairsSetNumbers verifies that missing, non-integer, and
// out-of-range set numbers are silently replaced by the entry's 1-based
// position, while valid supplied numbers are kept.
func TestValidateRepairsSetNumbers(t *testing.T) {
	raw := &RawWorkout{
		ExerciseName: "Bench Press",
		Sets: []map[string]any{
			{"reps": num("8"), "weight": num("185")},                           // missing
			{"set_number": num("99"), "reps": num("8"), "weight": num("185")},  // kept: valid
			{"set_number": num("0"), "reps": num("8"), "weight": num("185")},   // < 1
			{"set_number": "three", "reps": num("8"), "weight": num("185")},    // not a number
			{"set_number": num("2.5"), "reps": num("8"), "weight": num("185")}, // not an integer
		},
	}

	workout, err := Validate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{1, 99, 3, 4, 5}
	for i, set := range workout.Sets {
		if set.SetNumber != want[i] {
			t.Errorf("set %d: set_number = %d, want %d", i, set.SetNumber, want[i])
		}
	}
}

// TestValidateAllRepairedNumbersAreSequential verifies the repaired values
// are exactly 1..N when every supplied set_number is unusable.
func TestValidateAllRepairedNumbersAreSequential(t *testing.T) {
	var sets []map[string]any
	for range 4 {
		sets = append(sets, map[string]any{"set_number": num("-3"), "reps": num("10"), "weight": num("95")})
	}
	workout, err := Validate(&RawWorkout{ExerciseName: "Rows", Sets: sets})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range workout.Sets {
		if s.SetNumber != i+1 {
			t.Errorf("set %d: set_number = %d, want %d", i, s.SetNumber, i+1)
		}
	}
}

// TestValidateRejectsBadReps verifies negative, missing, and non-integer
// reps each reject the whole structure at the offending index.
func TestValidateRejectsBadReps(t *testing.T) {
	cases := []struct {
		name string
		reps any
	}{
		{"negative", num("-1")},
		{"missing", nil},
		{"fractional", num("8.5")},
		{"string", "eight"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := map[string]any{"set_number": num("2"), "weight": num("185")}
			if tc.reps != nil {
				entry["reps"] = tc.reps
			}
			raw := &RawWorkout{
				ExerciseName: "Bench Press",
				Sets: []map[string]any{
					{"set_number": num("1"), "reps": num("8"), "weight": num("185")},
					entry,
				},
			}

			_, err := Validate(raw)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Index != 1 || verr.Field != "reps" {
				t.Errorf("got index=%d field=%q, want index=1 field=reps", verr.Index, verr.Field)
			}
		})
	}
}

// TestValidateRejectsBadWeight verifies negative, missing, and non-numeric
// weight reject the whole structure at the offending index.
func TestValidateRejectsBadWeight(t *testing.T) {
	cases := []struct {
		name   string
		weight any
	}{
		{"negative", num("-185")},
		{"missing", nil},
		{"string", "heavy"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := map[string]any{"set_number": num("1"), "reps": num("8")}
			if tc.weight != nil {
				entry["weight"] = tc.weight
			}
			raw := &RawWorkout{ExerciseName: "Squats", Sets: []map[string]any{entry}}

			_, err := Validate(raw)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Index != 0 || verr.Field != "weight" {
				t.Errorf("got index=%d field=%q, want index=0 field=weight", verr.Index, verr.Field)
			}
		})
	}
}

// TestValidateRepsCheckedBeforeWeight verifies rule ordering: when both
// fields are bad the error names reps, keeping messages reproducible.
func TestValidateRepsCheckedBeforeWeight(t *testing.T) {
	raw := &RawWorkout{
		ExerciseName: "Deadlifts",
		Sets: []map[string]any{
			{"reps": num("-1"), "weight": num("-1")},
		},
	}
	_, err := Validate(raw)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if verr.Field != "reps" {
		t.Errorf("field = %q, want reps (checked before weight)", verr.Field)
	}
}

// TestValidateFractionalWeightAccepted verifies weight may be any
// non-negative number, including fractions.
func TestValidateFractionalWeightAccepted(t *testing.T) {
	raw := &RawWorkout{
		ExerciseName: "Curls",
		Sets: []map[string]any{
			{"set_number": num("1"), "reps": num("12"), "weight": num("27.5")},
		},
	}
	workout, err := Validate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if workout.Sets[0].Weight != 27.5 {
		t.Errorf("weight = %v, want 27.5", workout.Sets[0].Weight)
	}
}

// TestValidateZeroValuesAccepted verifies reps=0 and weight=0 pass: absence
// of effort is not negativity.
func TestValidateZeroValuesAccepted(t *testing.T) {
	raw := &RawWorkout{
		ExerciseName: "Planks",
		Sets: []map[string]any{
			{"set_number": num("1"), "reps": num("0"), "weight": num("0")},
		},
	}
	workout, err := Validate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if workout.Sets[0].Reps != 0 || workout.Sets[0].Weight != 0 {
		t.Errorf("got reps=%d weight=%v, want zeros", workout.Sets[0].Reps, workout.Sets[0].Weight)
	}
}

// TestValidateCarriesUnitAndNotes verifies weight_unit and notes pass
// through when present.
func TestValidateCarriesUnitAndNotes(t *testing.T) {
	raw := &RawWorkout{
		ExerciseName: "Bench Press",
		Sets: []map[string]any{
			{"set_number": num("1"), "reps": num("8"), "weight": num("185"), "weight_unit": "lbs", "notes": "paused"},
		},
	}
	workout, err := Validate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if workout.Sets[0].WeightUnit != "lbs" {
		t.Errorf("weight_unit = %q, want lbs", workout.Sets[0].WeightUnit)
	}
	if workout.Sets[0].Notes == nil || *workout.Sets[0].Notes != "paused" {
		t.Errorf("notes = %v, want %q", workout.Sets[0].Notes, "paused")
	}
}
