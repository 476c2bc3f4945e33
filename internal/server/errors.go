package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/gymlog/internal/parse"
	"github.com/claude/gymlog/internal/storage"
	"github.com/claude/gymlog/internal/transcribe"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps pipeline and storage errors to HTTP statuses. Bad input is
// 400, oversized audio 413, non-audio uploads 415, content the model or
// validator rejected 422, model/provider failures 502, unknown ids 404.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var validationErr *parse.ValidationError
	var rejectedErr *parse.RejectedError
	var malformedErr *parse.MalformedOutputError

	switch {
	case errors.Is(err, parse.ErrEmptyInput):
		status = http.StatusBadRequest
	case errors.Is(err, transcribe.ErrPayloadTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, transcribe.ErrUnsupportedMedia):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, transcribe.ErrNoSpeech):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &validationErr), errors.As(err, &rejectedErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &malformedErr), errors.Is(err, parse.ErrIncompleteStructure):
		status = http.StatusBadGateway
	case errors.Is(err, transcribe.ErrUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, storage.ErrSessionNotFound),
		errors.Is(err, storage.ErrExerciseNotFound),
		errors.Is(err, storage.ErrSetNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
