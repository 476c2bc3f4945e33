package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolParseWorkout = mcp.NewTool("parse_workout",
	mcp.WithDescription("Parse a natural-language workout description (e.g. 'bench press 3 sets of 8 at 185') into structured data with exercise name and per-set reps and weight in pounds."),
	mcp.WithString("text", mcp.Required(), mcp.Description("The workout description, spoken or typed")),
)

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Record a structured workout: one exercise with its sets. Creates a new session unless session_id is given. All writes succeed or none do."),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("User the workout belongs to")),
	mcp.WithString("exercise_name", mcp.Required(), mcp.Description("Canonical exercise name (e.g. 'Bench Press')")),
	mcp.WithArray("sets", mcp.Required(), mcp.Description("Sets as objects with set_number (1-based), reps, weight (pounds), and optional notes")),
	mcp.WithString("session_id", mcp.Description("Existing session UUID to append to. Omit to start a new session.")),
	mcp.WithString("notes", mcp.Description("Session notes, only used when creating a new session")),
)

var toolGetWorkoutSessions = mcp.NewTool("get_workout_sessions",
	mcp.WithDescription("List a user's workout sessions newest first, with exercises and sets nested."),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("User whose sessions to list")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolDeleteWorkoutSession = mcp.NewTool("delete_workout_session",
	mcp.WithDescription("Delete a workout session and, by cascade, all its exercises and sets."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session UUID to delete")),
)

var toolAskCoach = mcp.NewTool("ask_coach",
	mcp.WithDescription("Ask the AI coach a training question. The coach sees the user's recent workout history."),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("User asking the question")),
	mcp.WithString("message", mcp.Required(), mcp.Description("The question or message for the coach")),
)

// --- Tool handlers ---

func (h *handlers) parseWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	workout, err := h.parser.Parse(ctx, text)
	if err != nil {
		h.log.Error("mcp parse_workout", "error", err)
		return mcp.NewToolResultError("parse failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workout)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id parameter is required"), nil
	}
	exerciseName, err := req.RequireString("exercise_name")
	if err != nil {
		return mcp.NewToolResultError("exercise_name parameter is required"), nil
	}

	sets, err := setsArgument(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := storage.LogWorkoutParams{
		UserID:       userID,
		ExerciseName: exerciseName,
		Sets:         sets,
	}

	if idStr := req.GetString("session_id", ""); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return mcp.NewToolResultError("invalid session_id: " + err.Error()), nil
		}
		params.SessionID = &id
	}
	if notes := req.GetString("notes", ""); notes != "" {
		params.Notes = &notes
	}

	result, err := h.ds.LogWorkout(ctx, params)
	if err != nil {
		h.log.Error("mcp log_workout", "error", err)
		return mcp.NewToolResultError("log failed: " + err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(result)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

// setsArgument extracts and decodes the "sets" array from a log_workout call.
func setsArgument(req mcp.CallToolRequest) ([]models.ParsedSet, error) {
	raw, ok := req.GetArguments()["sets"]
	if !ok {
		return nil, fmt.Errorf("sets parameter is required")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid sets: %v", err)
	}
	var sets []models.ParsedSet
	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("invalid sets: %v", err)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("sets must not be empty")
	}
	for i, s := range sets {
		if s.SetNumber < 1 {
			return nil, fmt.Errorf("sets[%d]: set_number must be >= 1", i)
		}
		if s.Reps < 0 {
			return nil, fmt.Errorf("sets[%d]: reps must be >= 0", i)
		}
		if s.Weight < 0 {
			return nil, fmt.Errorf("sets[%d]: weight must be >= 0", i)
		}
	}
	return sets, nil
}

func (h *handlers) getWorkoutSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id parameter is required"), nil
	}

	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.ListSessions(ctx, userID, start, end)
	if err != nil {
		h.log.Error("mcp get_workout_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) deleteWorkoutSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid session_id: " + err.Error()), nil
	}

	if err := h.ds.DeleteSession(ctx, id); err != nil {
		h.log.Error("mcp delete_workout_session", "error", err)
		return mcp.NewToolResultError("delete failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]string{"deleted": id.String()})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) askCoach(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id parameter is required"), nil
	}
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message parameter is required"), nil
	}

	answer, err := h.coach.Ask(ctx, userID, message)
	if err != nil {
		h.log.Error("mcp ask_coach", "error", err)
		return mcp.NewToolResultError("coach failed: " + err.Error()), nil
	}

	return mcp.NewToolResultText(answer), nil
}
