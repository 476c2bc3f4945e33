// Package coach relays a user's question to the completion service with a
// short context block built from their recent training history. Stateless:
// nothing about the exchange is persisted.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/gymlog/internal/models"
)

// Temperature for coaching replies. Higher than parsing: variety over
// determinism.
const Temperature = 0.7

const systemPrompt = "You are a knowledgeable and encouraging fitness coach."

// CompletionClient is the outbound completion capability, satisfied by
// *ai.Client.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// SessionSource supplies a user's most recent sessions for context.
type SessionSource interface {
	RecentSessions(ctx context.Context, userID string, limit int) ([]models.SessionDetail, error)
}

// Coach answers training questions with recent-workout context.
type Coach struct {
	client   CompletionClient
	sessions SessionSource
	log      *slog.Logger
}

// New creates a Coach.
func New(client CompletionClient, sessions SessionSource, log *slog.Logger) *Coach {
	return &Coach{client: client, sessions: sessions, log: log}
}

// Ask relays message for the given user. A failure to load history degrades
// to an uncontextualized answer rather than failing the request.
func (c *Coach) Ask(ctx context.Context, userID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("empty coach message")
	}

	var history string
	recent, err := c.sessions.RecentSessions(ctx, userID, 3)
	if err != nil {
		c.log.Warn("coach context lookup failed", "error", err)
	} else if len(recent) > 0 {
		var b strings.Builder
		b.WriteString("Recent workouts:\n")
		for _, s := range recent {
			fmt.Fprintf(&b, "- %s: %d exercises\n", s.Date.Format("2006-01-02"), len(s.Exercises))
		}
		history = b.String()
	}

	prompt := buildPrompt(history, message)
	reply, err := c.client.Complete(ctx, systemPrompt, prompt, Temperature)
	if err != nil {
		return "", fmt.Errorf("requesting coach completion: %w", err)
	}
	return reply, nil
}

func buildPrompt(history, message string) string {
	var b strings.Builder
	b.WriteString("You are an AI fitness coach. Provide helpful, encouraging, and scientifically-backed advice.\n\n")
	if history != "" {
		b.WriteString(history)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User question: %s\n\n", message)
	b.WriteString("Keep responses concise but helpful. Focus on form, progression, and motivation.")
	return b.String()
}
