package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/gymlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateExercise inserts an exercise under an existing session.
func (db *DB) CreateExercise(ctx context.Context, sessionID uuid.UUID, name string) (*models.ExerciseRow, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM workout_sessions WHERE id = $1)`, sessionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking session: %w", err)
	}
	if !exists {
		return nil, ErrSessionNotFound
	}

	row := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (id, session_id, exercise_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, session_id, exercise_name, created_at`,
		uuid.New(), sessionID, name)

	var e models.ExerciseRow
	if err := row.Scan(&e.ID, &e.SessionID, &e.ExerciseName, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting exercise: %w", err)
	}
	return &e, nil
}

// GetExercise retrieves a single exercise row.
func (db *DB) GetExercise(ctx context.Context, exerciseID uuid.UUID) (*models.ExerciseRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, session_id, exercise_name, created_at
		 FROM exercises WHERE id = $1`, exerciseID)

	var e models.ExerciseRow
	if err := row.Scan(&e.ID, &e.SessionID, &e.ExerciseName, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

// DeleteExercise removes an exercise and, via cascade, its sets.
func (db *DB) DeleteExercise(ctx context.Context, exerciseID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, exerciseID)
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}
