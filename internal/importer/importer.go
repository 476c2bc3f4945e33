package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
	"github.com/google/uuid"
)

// Stats tracks import progress.
type Stats struct {
	SessionsImported  int
	ExercisesImported int
	SetsImported      int
	WarmupSets        int
}

// store is the storage surface the importer needs. *storage.DB satisfies it.
type store interface {
	CreateSession(ctx context.Context, userID string, date time.Time, notes *string) (*models.SessionRow, error)
	CreateExercise(ctx context.Context, sessionID uuid.UUID, name string) (*models.ExerciseRow, error)
	CreateSet(ctx context.Context, p storage.CreateSetParams) (*models.SetRow, error)
}

// Importer inserts parsed export sessions into the workout database.
type Importer struct {
	db     store
	userID string
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. Imported sessions are owned by userID.
func New(db store, userID string, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, userID: userID, log: log, dryRun: dryRun}
}

// Import parses an Alpha Progression CSV export and inserts every session.
func (imp *Importer) Import(ctx context.Context, r io.Reader) (*Stats, error) {
	sessions, err := ParseCSV(r)
	if err != nil {
		return &imp.stats, fmt.Errorf("parsing export: %w", err)
	}

	for _, s := range sessions {
		if err := imp.importSession(ctx, s); err != nil {
			return &imp.stats, fmt.Errorf("importing session %q: %w", s.Name, err)
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) importSession(ctx context.Context, s Session) error {
	notes := s.Name
	if s.Duration != "" {
		notes += " (" + s.Duration + ")"
	}

	if imp.dryRun {
		imp.log.Info("dry-run: would import session",
			"name", s.Name,
			"date", s.Date.Format("2006-01-02"),
			"exercises", len(s.Exercises),
		)
		imp.countOnly(s)
		return nil
	}

	row, err := imp.db.CreateSession(ctx, imp.userID, s.Date, &notes)
	if err != nil {
		return err
	}
	imp.stats.SessionsImported++

	for _, ex := range s.Exercises {
		exRow, err := imp.db.CreateExercise(ctx, row.ID, exerciseName(ex))
		if err != nil {
			return err
		}
		imp.stats.ExercisesImported++

		// Exported warmups and working sets share one numbering.
		for i, set := range ex.Sets {
			p := setParams(exRow.ID, i+1, set)
			if _, err := imp.db.CreateSet(ctx, p); err != nil {
				return err
			}
			imp.stats.SetsImported++
			if set.IsWarmup {
				imp.stats.WarmupSets++
			}
		}
	}

	imp.log.Info("imported session",
		"name", s.Name,
		"date", s.Date.Format("2006-01-02"),
		"exercises", len(s.Exercises),
	)
	return nil
}

func (imp *Importer) countOnly(s Session) {
	imp.stats.SessionsImported++
	for _, ex := range s.Exercises {
		imp.stats.ExercisesImported++
		imp.stats.SetsImported += len(ex.Sets)
		for _, set := range ex.Sets {
			if set.IsWarmup {
				imp.stats.WarmupSets++
			}
		}
	}
}

// exerciseName combines the exported name and equipment into one canonical
// name, matching how the parser pipeline names exercises.
func exerciseName(ex Exercise) string {
	if ex.Equipment == "" || strings.EqualFold(ex.Equipment, "bodyweight") {
		return ex.Name
	}
	return ex.Name + " (" + ex.Equipment + ")"
}

// setParams converts one exported set to storage parameters. Weights are
// stored in pounds; export weights are kilograms.
func setParams(exerciseID uuid.UUID, setNumber int, s Set) storage.CreateSetParams {
	reps := s.Reps
	weight := kgToLb(s.WeightKg)

	var notes []string
	if s.IsWarmup {
		notes = append(notes, "warmup")
	}
	if s.IsBodyweightPlus {
		notes = append(notes, "bodyweight plus")
	}
	if !s.IsWarmup {
		notes = append(notes, fmt.Sprintf("RIR %g", s.RIR))
	}

	p := storage.CreateSetParams{
		ExerciseID: exerciseID,
		SetNumber:  setNumber,
		Reps:       &reps,
		Weight:     &weight,
	}
	if len(notes) > 0 {
		joined := strings.Join(notes, ", ")
		p.Notes = &joined
	}
	return p
}

// kgToLb converts kilograms to pounds, rounded to one decimal place.
func kgToLb(kg float64) float64 {
	return math.Round(kg*2.2046226218*10) / 10
}
