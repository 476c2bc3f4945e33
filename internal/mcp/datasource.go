package mcp

import (
	"context"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	LogWorkout(ctx context.Context, p storage.LogWorkoutParams) (*storage.LogWorkoutResult, error)
	ListSessions(ctx context.Context, userID string, start, end time.Time) ([]models.SessionDetail, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.SessionDetail, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
	RecentSessions(ctx context.Context, userID string, limit int) ([]models.SessionDetail, error)
}

// WorkoutParser turns free text into a validated workout structure.
type WorkoutParser interface {
	Parse(ctx context.Context, text string) (*models.ParsedWorkout, error)
}

// CoachAsker answers training questions with recent-workout context.
type CoachAsker interface {
	Ask(ctx context.Context, userID, message string) (string, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
