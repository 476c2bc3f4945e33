// Package parse turns freeform workout text into a validated ParsedWorkout
// via a language-model completion with a fixed instruction contract.
//
// Failure modes are deliberately distinct so callers can tell a retryable
// model misbehavior (MalformedOutputError) from a semantic refusal
// (RejectedError) from bad input data (ValidationError).
package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/gymlog/internal/models"
)

// Temperature is the fixed completion temperature. Low for determinism.
const Temperature = 0.1

const systemPrompt = "You are a workout parsing assistant. Return only valid JSON."

const promptTemplate = `You are a workout data parser. Extract exercise information from natural language.

Input: %q

Extract:
1. Exercise name (standardize: "Bench Press", "Squats", "Deadlifts", etc.)
2. Number of sets and reps for each set
3. Weight used (convert to pounds if needed)

Return ONLY valid JSON in this exact format:
{
  "exercise_name": "Exercise Name",
  "sets": [
    {"set_number": 1, "reps": 8, "weight": 185, "weight_unit": "lbs"},
    {"set_number": 2, "reps": 7, "weight": 185, "weight_unit": "lbs"}
  ]
}

If you cannot parse the input, return:
{"error": "Could not parse workout data"}`

var (
	// ErrEmptyInput means there was no text to parse.
	ErrEmptyInput = errors.New("no text provided for parsing")
	// ErrIncompleteStructure means the model's JSON lacked exercise_name or sets.
	ErrIncompleteStructure = errors.New("model output missing exercise_name or sets")
)

// MalformedOutputError means the model response was not decodable JSON.
// Distinct from RejectedError so it can be logged and retried differently.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("undecodable model output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// RejectedError is the model's escape hatch: it decided the input does not
// describe a parseable workout.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "workout parsing rejected: " + e.Reason
}

// CompletionClient is the outbound completion capability, satisfied by
// *ai.Client.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// RawWorkout is the decoded but not yet validated model output. Set fields
// keep their JSON types (json.Number for numerics) so the validator can
// apply the repair/reject policy without lossy coercion.
type RawWorkout struct {
	ExerciseName string
	Sets         []map[string]any
}

// Parser owns the prompt contract and raw-output decoding.
type Parser struct {
	client CompletionClient
	log    *slog.Logger
}

// NewParser creates a Parser backed by the given completion client.
func NewParser(client CompletionClient, log *slog.Logger) *Parser {
	return &Parser{client: client, log: log}
}

// Parse sends text through the completion contract, decodes the response,
// and validates it into a ParsedWorkout.
func (p *Parser) Parse(ctx context.Context, text string) (*models.ParsedWorkout, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	raw, err := p.client.Complete(ctx, systemPrompt, fmt.Sprintf(promptTemplate, text), Temperature)
	if err != nil {
		return nil, fmt.Errorf("requesting completion: %w", err)
	}

	decoded, err := decode(raw)
	if err != nil {
		p.log.Warn("workout parse failed", "error", err)
		return nil, err
	}

	workout, err := Validate(decoded)
	if err != nil {
		return nil, err
	}

	p.log.Info("workout parsed", "exercise", workout.ExerciseName, "sets", len(workout.Sets))
	return workout, nil
}

// decode turns the raw model response into a RawWorkout, surfacing the
// model's error escape hatch and missing-field failures.
func decode(raw string) (*RawWorkout, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: err}
	}

	if reason, ok := body["error"].(string); ok {
		return nil, &RejectedError{Reason: reason}
	}

	name, ok := body["exercise_name"].(string)
	if !ok || name == "" {
		return nil, ErrIncompleteStructure
	}
	rawSets, ok := body["sets"].([]any)
	if !ok {
		return nil, ErrIncompleteStructure
	}

	sets := make([]map[string]any, 0, len(rawSets))
	for _, s := range rawSets {
		m, ok := s.(map[string]any)
		if !ok {
			return nil, &MalformedOutputError{Raw: raw, Err: fmt.Errorf("set entry is not an object")}
		}
		sets = append(sets, m)
	}

	return &RawWorkout{ExerciseName: name, Sets: sets}, nil
}
