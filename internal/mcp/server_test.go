package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// TestDefaultTimeRange verifies time range defaults (last 30 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty → defaults to last 30 days
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 719 || diff.Hours() > 721 { // ~720 hours = 30 days
		t.Errorf("default range = %.0f hours, want ~720", diff.Hours())
	}

	// Explicit dates
	start, end, err = defaultTimeRange("2026-08-01", "2026-08-26")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2026 || start.Month() != 8 || start.Day() != 1 {
		t.Errorf("start = %v, want 2026-08-01", start)
	}
	if end.Year() != 2026 || end.Month() != 8 || end.Day() != 26 {
		t.Errorf("end = %v, want 2026-08-26", end)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2026-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	_, _, err = defaultTimeRange("not-a-date", "")
	if err == nil {
		t.Error("expected error for invalid date")
	}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// TestSetsArgument verifies decoding and validation of the log_workout sets array.
func TestSetsArgument(t *testing.T) {
	req := callRequest(map[string]any{
		"sets": []any{
			map[string]any{"set_number": 1, "reps": 8, "weight": 185.0},
			map[string]any{"set_number": 2, "reps": 8, "weight": 185.0, "notes": "felt heavy"},
		},
	})

	sets, err := setsArgument(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("got %d sets, want 2", len(sets))
	}
	if sets[0].Reps != 8 || sets[0].Weight != 185.0 {
		t.Errorf("set[0] = %+v, want 8 reps at 185", sets[0])
	}
	if sets[1].Notes == nil || *sets[1].Notes != "felt heavy" {
		t.Errorf("set[1].Notes = %v, want 'felt heavy'", sets[1].Notes)
	}
}

// TestSetsArgumentRejectsBadValues verifies field invariants are enforced
// before anything reaches storage.
func TestSetsArgumentRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{"zero set_number", map[string]any{"set_number": 0, "reps": 8, "weight": 185.0}},
		{"negative reps", map[string]any{"set_number": 1, "reps": -1, "weight": 185.0}},
		{"negative weight", map[string]any{"set_number": 1, "reps": 8, "weight": -5.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := callRequest(map[string]any{"sets": []any{tt.set}})
			if _, err := setsArgument(req); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestSetsArgumentMissing verifies a missing or empty sets array is an error.
func TestSetsArgumentMissing(t *testing.T) {
	if _, err := setsArgument(callRequest(map[string]any{})); err == nil {
		t.Error("expected error for missing sets")
	}
	if _, err := setsArgument(callRequest(map[string]any{"sets": []any{}})); err == nil {
		t.Error("expected error for empty sets")
	}
}
