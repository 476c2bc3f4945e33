package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/gymlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateSetParams carries the fields for a single set insert. Reps, weight,
// and notes stay nullable through to the row.
type CreateSetParams struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
	SetNumber  int       `json:"set_number"`
	Reps       *int      `json:"reps"`
	Weight     *float64  `json:"weight"`
	Notes      *string   `json:"notes"`
}

// CreateSet inserts a set under an existing exercise.
func (db *DB) CreateSet(ctx context.Context, p CreateSetParams) (*models.SetRow, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exercises WHERE id = $1)`, p.ExerciseID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking exercise: %w", err)
	}
	if !exists {
		return nil, ErrExerciseNotFound
	}

	row := db.Pool.QueryRow(ctx,
		`INSERT INTO sets (id, exercise_id, set_number, reps, weight, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, exercise_id, set_number, reps, weight, notes, created_at`,
		uuid.New(), p.ExerciseID, p.SetNumber, p.Reps, p.Weight, p.Notes)

	var s models.SetRow
	if err := row.Scan(&s.ID, &s.ExerciseID, &s.SetNumber, &s.Reps, &s.Weight, &s.Notes, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting set: %w", err)
	}
	return &s, nil
}

// GetSet retrieves a single set row.
func (db *DB) GetSet(ctx context.Context, setID uuid.UUID) (*models.SetRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, exercise_id, set_number, reps, weight, notes, created_at
		 FROM sets WHERE id = $1`, setID)

	var s models.SetRow
	if err := row.Scan(&s.ID, &s.ExerciseID, &s.SetNumber, &s.Reps, &s.Weight, &s.Notes, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSetNotFound
		}
		return nil, fmt.Errorf("querying set: %w", err)
	}
	return &s, nil
}

// DeleteSet removes a single set.
func (db *DB) DeleteSet(ctx context.Context, setID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM sets WHERE id = $1`, setID)
	if err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}
	return nil
}
