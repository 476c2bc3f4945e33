package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
	"github.com/google/uuid"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestLogWorkoutRemote verifies the HTTP client posts the workout with the
// API key header and parses the created ids.
func TestLogWorkoutRemote(t *testing.T) {
	sessionID := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/log-workout": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-API-Key"); got != "k" {
				t.Errorf("X-API-Key=%q, want k", got)
			}
			var req struct {
				UserID       string             `json:"user_id"`
				ExerciseName string             `json:"exercise_name"`
				Sets         []models.ParsedSet `json:"sets"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.ExerciseName != "Deadlift" {
				t.Errorf("exercise_name=%q, want Deadlift", req.ExerciseName)
			}
			if len(req.Sets) != 2 {
				t.Errorf("got %d sets, want 2", len(req.Sets))
			}

			writeTestJSON(t, w, http.StatusCreated, storage.LogWorkoutResult{
				SessionID:  sessionID,
				ExerciseID: uuid.New(),
				SetIDs:     []uuid.UUID{uuid.New(), uuid.New()},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "k")
	result, err := client.LogWorkout(context.Background(), storage.LogWorkoutParams{
		UserID:       "u1",
		ExerciseName: "Deadlift",
		Sets: []models.ParsedSet{
			{SetNumber: 1, Reps: 5, Weight: 315},
			{SetNumber: 2, Reps: 5, Weight: 315},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.SessionID != sessionID {
		t.Errorf("session_id=%s, want %s", result.SessionID, sessionID)
	}
	if len(result.SetIDs) != 2 {
		t.Errorf("got %d set ids, want 2", len(result.SetIDs))
	}
}

// TestLogWorkoutRemoteSessionNotFound verifies a 404 maps back to the
// storage sentinel.
func TestLogWorkoutRemoteSessionNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/log-workout": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, http.StatusNotFound, map[string]string{"error": "session not found"})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "k")
	id := uuid.New()
	_, err := client.LogWorkout(context.Background(), storage.LogWorkoutParams{
		UserID:       "u1",
		SessionID:    &id,
		ExerciseName: "Deadlift",
		Sets:         []models.ParsedSet{{SetNumber: 1, Reps: 5, Weight: 315}},
	})
	if !errors.Is(err, storage.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

// TestListSessionsRemote verifies the sessions query params and response parsing.
func TestListSessionsRemote(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("user_id"); got != "u1" {
				t.Errorf("user_id=%q, want u1", got)
			}
			if got := r.URL.Query().Get("start"); got == "" {
				t.Error("start param missing")
			}
			writeTestJSON(t, w, http.StatusOK, []models.SessionDetail{
				{SessionRow: models.SessionRow{ID: uuid.New(), UserID: "u1"}},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "k")
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	sessions, err := client.ListSessions(context.Background(), "u1", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
}

// TestRecentSessionsRemote verifies client-side truncation to the limit.
func TestRecentSessionsRemote(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions": func(w http.ResponseWriter, r *http.Request) {
			var all []models.SessionDetail
			for range 5 {
				all = append(all, models.SessionDetail{SessionRow: models.SessionRow{ID: uuid.New(), UserID: "u1"}})
			}
			writeTestJSON(t, w, http.StatusOK, all)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "k")
	sessions, err := client.RecentSessions(context.Background(), "u1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 3 {
		t.Errorf("got %d sessions, want 3", len(sessions))
	}
}

// TestDeleteSessionRemote verifies 404 mapping on delete.
func TestDeleteSessionRemote(t *testing.T) {
	id := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions/" + id.String(): func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("method=%s, want DELETE", r.Method)
			}
			writeTestJSON(t, w, http.StatusNotFound, map[string]string{"error": "session not found"})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "k")
	err := client.DeleteSession(context.Background(), id)
	if !errors.Is(err, storage.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

// TestParseRemote verifies the parse-workout endpoint round trip.
func TestParseRemote(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/parse-workout": func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Text string `json:"text"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.Text != "squat 5x5 at 225" {
				t.Errorf("text=%q, want squat description", req.Text)
			}
			writeTestJSON(t, w, http.StatusOK, models.ParsedWorkout{
				ExerciseName: "Squat",
				Sets:         []models.ParsedSet{{SetNumber: 1, Reps: 5, Weight: 225}},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "k")
	workout, err := client.Parse(context.Background(), "squat 5x5 at 225")
	if err != nil {
		t.Fatal(err)
	}
	if workout.ExerciseName != "Squat" {
		t.Errorf("exercise_name=%q, want Squat", workout.ExerciseName)
	}
}

// TestAskRemote verifies the coach endpoint round trip.
func TestAskRemote(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/coach": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusOK, map[string]string{"response": "Deload this week."})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "k")
	answer, err := client.Ask(context.Background(), "u1", "should I deload?")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Deload this week." {
		t.Errorf("answer=%q, want coach text", answer)
	}
}

// TestHTTPClientServerError verifies the client returns an error on 500 responses.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/parse-workout": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "k")
	_, err := client.Parse(context.Background(), "bench press 3x8")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
