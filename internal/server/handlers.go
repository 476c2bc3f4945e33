package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
	"github.com/claude/gymlog/internal/transcribe"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTranscribe accepts a multipart upload with a single "file" part and
// returns the transcript.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	// Cap the body before anything buffers it; one extra MB of form overhead
	// so audio files just over the limit still reach the gateway's check.
	r.Body = http.MaxBytesReader(w, r.Body, transcribe.MaxPayloadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, transcribe.ErrPayloadTooLarge)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form: " + err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file part required"})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading upload: " + err.Error()})
		return
	}

	text, err := s.transcriber.Transcribe(r.Context(), audio, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleParseWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	workout, err := s.parser.Parse(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

// validateSets enforces the set invariants at the API boundary so bad input
// gets a 400 instead of tripping a database constraint.
func validateSets(sets []models.ParsedSet) error {
	for i, set := range sets {
		if set.SetNumber < 1 {
			return fmt.Errorf("sets[%d]: set_number must be >= 1", i)
		}
		if set.Reps < 0 {
			return fmt.Errorf("sets[%d]: reps must be >= 0", i)
		}
		if set.Weight < 0 {
			return fmt.Errorf("sets[%d]: weight must be >= 0", i)
		}
	}
	return nil
}

type logWorkoutRequest struct {
	UserID       string             `json:"user_id"`
	SessionID    *uuid.UUID         `json:"session_id"`
	ExerciseName string             `json:"exercise_name"`
	Sets         []models.ParsedSet `json:"sets"`
	Notes        *string            `json:"notes"`
}

func (s *Server) handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	var req logWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.UserID == "" || req.ExerciseName == "" || len(req.Sets) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id, exercise_name, and sets are required"})
		return
	}
	if err := validateSets(req.Sets); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.store.LogWorkout(r.Context(), storage.LogWorkoutParams{
		UserID:       req.UserID,
		SessionID:    req.SessionID,
		ExerciseName: req.ExerciseName,
		Sets:         req.Sets,
		Notes:        req.Notes,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.UserID == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id and message are required"})
		return
	}

	answer, err := s.coach.Ask(r.Context(), req.UserID, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string  `json:"user_id"`
		Date   string  `json:"date"`
		Notes  *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}

	var date time.Time
	if req.Date != "" {
		var err error
		date, err = parseDate(req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + err.Error()})
			return
		}
	}

	session, err := s.store.CreateSession(r.Context(), req.UserID, date, req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id parameter required"})
		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sessions, err := s.store.ListSessions(r.Context(), userID, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	session, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteSession(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		ExerciseName string `json:"exercise_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.ExerciseName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_name is required"})
		return
	}

	exercise, err := s.store.CreateExercise(r.Context(), id, req.ExerciseName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, exercise)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	exercise, err := s.store.GetExercise(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercise)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteExercise(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

func (s *Server) handleCreateSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		SetNumber int      `json:"set_number"`
		Reps      *int     `json:"reps"`
		Weight    *float64 `json:"weight"`
		Notes     *string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.SetNumber < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "set_number must be >= 1"})
		return
	}
	if req.Reps != nil && *req.Reps < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps must be >= 0"})
		return
	}
	if req.Weight != nil && *req.Weight < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight must be >= 0"})
		return
	}

	set, err := s.store.CreateSet(r.Context(), storage.CreateSetParams{
		ExerciseID: id,
		SetNumber:  req.SetNumber,
		Reps:       req.Reps,
		Weight:     req.Weight,
		Notes:      req.Notes,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleGetSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	set, err := s.store.GetSet(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteSet(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr != "" {
		start, err = parseDate(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr != "" {
		end, err = parseDate(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if len(endStr) == len("2006-01-02") {
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return start, end, nil
}
