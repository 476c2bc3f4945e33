package coach

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/gymlog/internal/models"
)

type stubCompletion struct {
	reply      string
	err        error
	userPrompt string
}

func (s *stubCompletion) Complete(_ context.Context, _, user string, _ float64) (string, error) {
	s.userPrompt = user
	return s.reply, s.err
}

type stubSessions struct {
	sessions []models.SessionDetail
	err      error
}

func (s *stubSessions) RecentSessions(context.Context, string, int) ([]models.SessionDetail, error) {
	return s.sessions, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestAskIncludesRecentWorkouts verifies the prompt carries a line per
// recent session with date and exercise count.
func TestAskIncludesRecentWorkouts(t *testing.T) {
	date := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	sessions := &stubSessions{sessions: []models.SessionDetail{
		{
			SessionRow: models.SessionRow{Date: date},
			Exercises:  []models.ExerciseDetail{{}, {}},
		},
	}}
	completion := &stubCompletion{reply: "keep at it"}

	reply, err := New(completion, sessions, testLogger()).Ask(context.Background(), "user-1", "how do I progress on bench?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "keep at it" {
		t.Errorf("reply = %q, want relay of completion output", reply)
	}
	if !strings.Contains(completion.userPrompt, "2026-08-20: 2 exercises") {
		t.Errorf("prompt missing history line, got:\n%s", completion.userPrompt)
	}
	if !strings.Contains(completion.userPrompt, "how do I progress on bench?") {
		t.Error("prompt missing user question")
	}
}

// TestAskWithoutHistory verifies a history lookup failure degrades to an
// uncontextualized relay instead of failing.
func TestAskWithoutHistory(t *testing.T) {
	sessions := &stubSessions{err: errors.New("db down")}
	completion := &stubCompletion{reply: "focus on form"}

	reply, err := New(completion, sessions, testLogger()).Ask(context.Background(), "user-1", "squat tips?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "focus on form" {
		t.Errorf("reply = %q, want completion output", reply)
	}
	if strings.Contains(completion.userPrompt, "Recent workouts") {
		t.Error("prompt contains history despite lookup failure")
	}
}

// TestAskEmptyMessage verifies a blank question is rejected locally.
func TestAskEmptyMessage(t *testing.T) {
	c := New(&stubCompletion{}, &stubSessions{}, testLogger())
	if _, err := c.Ask(context.Background(), "user-1", "   "); err == nil {
		t.Fatal("expected error for empty message")
	}
}

// TestAskCompletionFailure verifies upstream completion errors propagate.
func TestAskCompletionFailure(t *testing.T) {
	upstream := errors.New("service unavailable")
	c := New(&stubCompletion{err: upstream}, &stubSessions{}, testLogger())
	if _, err := c.Ask(context.Background(), "user-1", "deadlift grip?"); !errors.Is(err, upstream) {
		t.Fatalf("error = %v, want wrapped upstream error", err)
	}
}
