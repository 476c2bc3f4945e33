package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/gymlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// LogWorkoutParams is the input to the transactional workout logger. Sets
// must already have passed validation: set_number >= 1, reps >= 0,
// weight >= 0.
type LogWorkoutParams struct {
	UserID       string
	SessionID    *uuid.UUID
	ExerciseName string
	Sets         []models.ParsedSet
	Notes        *string
}

// LogWorkoutResult carries the ids created (or reused, for the session) by
// one LogWorkout call. SetIDs preserves input order.
type LogWorkoutResult struct {
	SessionID  uuid.UUID   `json:"session_id"`
	ExerciseID uuid.UUID   `json:"exercise_id"`
	SetIDs     []uuid.UUID `json:"set_ids"`
}

// dbtx is the subset of pgx.Tx the workout logger touches, narrowed so the
// insert sequence can be exercised in tests without a live database.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LogWorkout records one exercise with its sets, creating or reusing the
// owning session, as a single transaction. Any failure rolls back every
// write from this invocation, including a session created in step one.
func (db *DB) LogWorkout(ctx context.Context, p LogWorkoutParams) (*LogWorkoutResult, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := logWorkoutTx(ctx, tx, p)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing workout: %w", err)
	}
	return result, nil
}

func logWorkoutTx(ctx context.Context, tx dbtx, p LogWorkoutParams) (*LogWorkoutResult, error) {
	var sessionID uuid.UUID
	if p.SessionID == nil {
		sessionID = uuid.New()
		_, err := tx.Exec(ctx,
			`INSERT INTO workout_sessions (id, user_id, notes) VALUES ($1, $2, $3)`,
			sessionID, p.UserID, p.Notes)
		if err != nil {
			return nil, fmt.Errorf("inserting session: %w", err)
		}
	} else {
		// The user filter is the pipeline's only access-control check: a
		// session id owned by someone else must behave like a missing one.
		err := tx.QueryRow(ctx,
			`SELECT id FROM workout_sessions WHERE id = $1 AND user_id = $2`,
			*p.SessionID, p.UserID).Scan(&sessionID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("resolving session: %w", err)
		}
	}

	exerciseID := uuid.New()
	_, err := tx.Exec(ctx,
		`INSERT INTO exercises (id, session_id, exercise_name) VALUES ($1, $2, $3)`,
		exerciseID, sessionID, p.ExerciseName)
	if err != nil {
		return nil, fmt.Errorf("inserting exercise: %w", err)
	}

	setIDs := make([]uuid.UUID, 0, len(p.Sets))
	for _, set := range p.Sets {
		setID := uuid.New()
		_, err := tx.Exec(ctx,
			`INSERT INTO sets (id, exercise_id, set_number, reps, weight, notes)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			setID, exerciseID, set.SetNumber, set.Reps, set.Weight, set.Notes)
		if err != nil {
			return nil, fmt.Errorf("inserting set %d: %w", set.SetNumber, err)
		}
		setIDs = append(setIDs, setID)
	}

	return &LogWorkoutResult{
		SessionID:  sessionID,
		ExerciseID: exerciseID,
		SetIDs:     setIDs,
	}, nil
}
