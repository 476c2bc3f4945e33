package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateSession inserts a new workout session for the given user. Date
// defaults to now when zero.
func (db *DB) CreateSession(ctx context.Context, userID string, date time.Time, notes *string) (*models.SessionRow, error) {
	if date.IsZero() {
		date = time.Now()
	}
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO workout_sessions (id, user_id, date, notes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, date, notes, created_at`,
		uuid.New(), userID, date, notes)

	var s models.SessionRow
	if err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.Notes, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return &s, nil
}

// ListSessions retrieves a user's sessions newest first, with exercises and
// sets nested. Start/end bound the session date when non-zero.
func (db *DB) ListSessions(ctx context.Context, userID string, start, end time.Time) ([]models.SessionDetail, error) {
	query := `SELECT id, user_id, date, notes, created_at
	 FROM workout_sessions WHERE user_id = $1`
	args := []any{userID}

	if !start.IsZero() {
		args = append(args, start)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !end.IsZero() {
		args = append(args, end)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.SessionDetail
	var ids []uuid.UUID
	for rows.Next() {
		var s models.SessionRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.Notes, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, models.SessionDetail{SessionRow: s, Exercises: []models.ExerciseDetail{}})
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	exercises, err := db.exercisesForSessions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if ex, ok := exercises[sessions[i].ID]; ok {
			sessions[i].Exercises = ex
		}
	}
	return sessions, nil
}

// GetSession retrieves one session with exercises and sets nested.
func (db *DB) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.SessionDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, date, notes, created_at
		 FROM workout_sessions WHERE id = $1`, sessionID)

	var s models.SessionRow
	if err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.Notes, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	exercises, err := db.exercisesForSessions(ctx, []uuid.UUID{s.ID})
	if err != nil {
		return nil, err
	}
	detail := &models.SessionDetail{SessionRow: s, Exercises: []models.ExerciseDetail{}}
	if ex, ok := exercises[s.ID]; ok {
		detail.Exercises = ex
	}
	return detail, nil
}

// DeleteSession removes a session. Its exercises and sets go with it via
// ON DELETE CASCADE.
func (db *DB) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workout_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// RecentSessions returns up to limit of the user's most recent sessions with
// exercise counts, used to build coaching context.
func (db *DB) RecentSessions(ctx context.Context, userID string, limit int) ([]models.SessionDetail, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, date, notes, created_at
		 FROM workout_sessions
		 WHERE user_id = $1
		 ORDER BY date DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.SessionDetail
	var ids []uuid.UUID
	for rows.Next() {
		var s models.SessionRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.Notes, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, models.SessionDetail{SessionRow: s, Exercises: []models.ExerciseDetail{}})
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	exercises, err := db.exercisesForSessions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if ex, ok := exercises[sessions[i].ID]; ok {
			sessions[i].Exercises = ex
		}
	}
	return sessions, nil
}

// exercisesForSessions loads the exercises (with sets) for a batch of
// sessions in two queries, keyed by session id.
func (db *DB) exercisesForSessions(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID][]models.ExerciseDetail, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, exercise_name, created_at
		 FROM exercises
		 WHERE session_id = ANY($1)
		 ORDER BY created_at ASC`, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	byExercise := map[uuid.UUID]*models.ExerciseDetail{}
	bySession := map[uuid.UUID][]models.ExerciseDetail{}
	var order []uuid.UUID
	for rows.Next() {
		var e models.ExerciseRow
		if err := rows.Scan(&e.ID, &e.SessionID, &e.ExerciseName, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		byExercise[e.ID] = &models.ExerciseDetail{ExerciseRow: e, Sets: []models.SetRow{}}
		order = append(order, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return bySession, nil
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT id, exercise_id, set_number, reps, weight, notes, created_at
		 FROM sets
		 WHERE exercise_id = ANY($1)
		 ORDER BY set_number ASC`, order)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var s models.SetRow
		if err := setRows.Scan(&s.ID, &s.ExerciseID, &s.SetNumber, &s.Reps, &s.Weight, &s.Notes, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		if ex, ok := byExercise[s.ExerciseID]; ok {
			ex.Sets = append(ex.Sets, s)
		}
	}
	if err := setRows.Err(); err != nil {
		return nil, err
	}

	for _, id := range order {
		ex := byExercise[id]
		bySession[ex.SessionID] = append(bySession[ex.SessionID], *ex)
	}
	return bySession, nil
}
