package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/google/uuid"
)

// Client sends voice notes through the GymLog pipeline over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the GymLog server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Transcribe uploads one audio file and returns its transcript.
func (c *Client) Transcribe(filename, mediaType string, audio []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", mediaType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("building multipart form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building multipart form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/transcribe", &buf)
	if err != nil {
		return "", fmt.Errorf("creating transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", filename, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcribe failed (status %d): %s", resp.StatusCode, body)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding transcript: %w", err)
	}
	return out.Text, nil
}

// RefusalError reports that the server understood the transcript but declined
// it as not describing a workout (HTTP 422). Refusals are final: retrying the
// same audio cannot succeed, the note has to be re-recorded.
type RefusalError struct {
	Reason string
}

func (e *RefusalError) Error() string {
	return "workout refused: " + e.Reason
}

// ParseWorkout sends a transcript to the parser and returns the structure.
// A 422 response comes back as *RefusalError; every other failure (transport,
// 5xx) is an ordinary error the caller may retry later.
func (c *Client) ParseWorkout(text string) (*models.ParsedWorkout, error) {
	body, status, err := c.postJSON("/api/v1/parse-workout", map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnprocessableEntity {
		var out struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &out); err != nil || out.Error == "" {
			out.Error = string(body)
		}
		return nil, &RefusalError{Reason: out.Error}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("parse failed (status %d): %s", status, body)
	}

	var workout models.ParsedWorkout
	if err := json.Unmarshal(body, &workout); err != nil {
		return nil, fmt.Errorf("decoding parsed workout: %w", err)
	}
	return &workout, nil
}

// LogResult carries the ids returned by a log-workout call.
type LogResult struct {
	SessionID  uuid.UUID   `json:"session_id"`
	ExerciseID uuid.UUID   `json:"exercise_id"`
	SetIDs     []uuid.UUID `json:"set_ids"`
}

// LogWorkout records a parsed workout. Retries up to 3 times with exponential
// backoff, but only on transport errors: a request that reached the server may
// have committed, and re-sending it would duplicate the exercise.
func (c *Client) LogWorkout(userID string, sessionID *uuid.UUID, workout *models.ParsedWorkout, notes *string) (*LogResult, error) {
	req := map[string]any{
		"user_id":       userID,
		"exercise_name": workout.ExerciseName,
		"sets":          workout.Sets,
	}
	if sessionID != nil {
		req["session_id"] = sessionID.String()
	}
	if notes != nil {
		req["notes"] = *notes
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		body, status, err := c.postJSON("/api/v1/log-workout", req)
		if err != nil {
			lastErr = err
			continue
		}
		if status != http.StatusCreated {
			return nil, fmt.Errorf("log-workout failed (status %d): %s", status, body)
		}

		var result LogResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("decoding log result: %w", err)
		}
		return &result, nil
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) postJSON(path string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.serverURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}
