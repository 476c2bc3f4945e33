// Package upload walks a directory of recorded voice notes and pushes each
// new one through the GymLog pipeline: transcribe, parse, log.
package upload

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/gymlog/internal/models"
	"github.com/google/uuid"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	ExercisesLogged int
	SetsLogged      int

	// Parser refusals, kept so the user can re-record them.
	UnparsedNotes []string
}

// pipelineClient is the server surface the uploader needs; *Client satisfies it.
type pipelineClient interface {
	Transcribe(filename, mediaType string, audio []byte) (string, error)
	ParseWorkout(text string) (*models.ParsedWorkout, error)
	LogWorkout(userID string, sessionID *uuid.UUID, workout *models.ParsedWorkout, notes *string) (*LogResult, error)
}

// Uploader scans a notes directory, skips files the state DB has seen, and
// logs the rest.
type Uploader struct {
	client       pipelineClient
	state        *StateDB
	notesDir     string
	userID       string
	groupSession bool
	dryRun       bool
	log          *slog.Logger
	stats        Stats

	// Session created by the first logged note when grouping is on.
	sessionID *uuid.UUID
}

// New creates a new Uploader. When groupSession is true, every exercise from
// this run lands in one workout session; otherwise each note starts its own.
func New(client pipelineClient, state *StateDB, notesDir, userID string, groupSession, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client:       client,
		state:        state,
		notesDir:     notesDir,
		userID:       userID,
		groupSession: groupSession,
		dryRun:       dryRun,
		log:          log,
	}
}

// mediaTypes maps recognized audio extensions to their MIME type.
var mediaTypes = map[string]string{
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
}

// Run executes the upload pipeline over every audio file in the notes
// directory, oldest first.
func (u *Uploader) Run() (*Stats, error) {
	entries, err := os.ReadDir(u.notesDir)
	if err != nil {
		return &u.stats, fmt.Errorf("reading %s: %w", u.notesDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := mediaTypes[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			files = append(files, filepath.Join(u.notesDir, entry.Name()))
		}
	}
	sort.Strings(files)

	for _, f := range files {
		u.stats.FilesTotal++
		if err := u.processNote(f); err != nil {
			u.log.Warn("note failed", "file", f, "error", err)
			u.stats.FilesErrored++
		}
	}

	return &u.stats, nil
}

// processNote runs one voice note through transcribe, parse, and log.
func (u *Uploader) processNote(path string) error {
	name := filepath.Base(path)
	relPath, _ := filepath.Rel(u.notesDir, path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	uploaded, err := u.state.IsUploaded(relPath, info.Size(), hash)
	if err != nil {
		return fmt.Errorf("state check: %w", err)
	}
	if uploaded {
		u.stats.FilesSkipped++
		return nil
	}

	if u.dryRun {
		u.log.Info("dry-run: would upload", "file", name, "size", info.Size())
		return nil
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	text, err := u.client.Transcribe(name, mediaTypes[strings.ToLower(filepath.Ext(name))], audio)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}
	u.log.Info("transcribed", "file", name, "chars", len(text))

	workout, err := u.client.ParseWorkout(text)
	if err != nil {
		// Only a refusal is final: record the note for re-recording and mark
		// it seen so later runs don't retry it. Transport and server failures
		// leave the state untouched so the next run picks the note up again.
		var refusal *RefusalError
		if !errors.As(err, &refusal) {
			return fmt.Errorf("parse: %w", err)
		}
		u.stats.UnparsedNotes = append(u.stats.UnparsedNotes, name)
		u.log.Warn("note did not parse", "file", name, "error", err)
		return u.state.MarkUploaded(relPath, info.Size(), hash, "")
	}

	result, err := u.client.LogWorkout(u.userID, u.sessionID, workout, nil)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if u.groupSession && u.sessionID == nil {
		u.sessionID = &result.SessionID
	}

	if err := u.state.MarkUploaded(relPath, info.Size(), hash, result.SessionID.String()); err != nil {
		u.log.Warn("failed to mark uploaded", "file", relPath, "error", err)
	}

	u.stats.FilesUploaded++
	u.stats.ExercisesLogged++
	u.stats.SetsLogged += len(workout.Sets)

	u.log.Info("logged workout",
		"file", name,
		"exercise", workout.ExerciseName,
		"sets", len(workout.Sets),
		"session", result.SessionID,
	)
	return nil
}
