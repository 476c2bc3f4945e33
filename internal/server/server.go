package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Store is the storage surface the handlers need. *storage.DB satisfies it;
// tests use a fake.
type Store interface {
	LogWorkout(ctx context.Context, p storage.LogWorkoutParams) (*storage.LogWorkoutResult, error)
	CreateSession(ctx context.Context, userID string, date time.Time, notes *string) (*models.SessionRow, error)
	ListSessions(ctx context.Context, userID string, start, end time.Time) ([]models.SessionDetail, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.SessionDetail, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
	CreateExercise(ctx context.Context, sessionID uuid.UUID, name string) (*models.ExerciseRow, error)
	GetExercise(ctx context.Context, exerciseID uuid.UUID) (*models.ExerciseRow, error)
	DeleteExercise(ctx context.Context, exerciseID uuid.UUID) error
	CreateSet(ctx context.Context, p storage.CreateSetParams) (*models.SetRow, error)
	GetSet(ctx context.Context, setID uuid.UUID) (*models.SetRow, error)
	DeleteSet(ctx context.Context, setID uuid.UUID) error
}

// Transcriber turns an uploaded audio note into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mediaType, filename string) (string, error)
}

// WorkoutParser turns free text into a validated workout structure.
type WorkoutParser interface {
	Parse(ctx context.Context, text string) (*models.ParsedWorkout, error)
}

// CoachService answers training questions with recent-workout context.
type CoachService interface {
	Ask(ctx context.Context, userID, message string) (string, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       Store
	transcriber Transcriber
	parser      WorkoutParser
	coach       CoachService
	log         *slog.Logger
	apiKey      string
	router      chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, transcriber Transcriber, parser WorkoutParser, coach CoachService, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:       store,
		transcriber: transcriber,
		parser:      parser,
		coach:       coach,
		log:         log,
		apiKey:      apiKey,
		router:      chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		// Pipeline endpoints
		r.Post("/transcribe", s.handleTranscribe)
		r.Post("/parse-workout", s.handleParseWorkout)
		r.Post("/log-workout", s.handleLogWorkout)
		r.Post("/coach", s.handleCoach)

		// Session / exercise / set CRUD
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
		r.Post("/sessions/{id}/exercises", s.handleCreateExercise)
		r.Get("/exercises/{id}", s.handleGetExercise)
		r.Delete("/exercises/{id}", s.handleDeleteExercise)
		r.Post("/exercises/{id}/sets", s.handleCreateSet)
		r.Get("/sets/{id}", s.handleGetSet)
		r.Delete("/sets/{id}", s.handleDeleteSet)
	})
}
