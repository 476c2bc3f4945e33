package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource, WorkoutParser, and CoachAsker by calling
// the GymLog REST API. Used for remote MCP mode where the binary runs locally
// (stdio) but data and the AI pipeline live on the remote server.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time checks: HTTPClient satisfies all three tool dependencies.
var (
	_ DataSource    = (*HTTPClient)(nil)
	_ WorkoutParser = (*HTTPClient)(nil)
	_ CoachAsker    = (*HTTPClient)(nil)
)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, reqBody any) ([]byte, int, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("httpclient: encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("httpclient: read body: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	body, status, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return storage.ErrSessionNotFound
	}
	if status != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) LogWorkout(ctx context.Context, p storage.LogWorkoutParams) (*storage.LogWorkoutResult, error) {
	req := struct {
		UserID       string             `json:"user_id"`
		SessionID    *uuid.UUID         `json:"session_id,omitempty"`
		ExerciseName string             `json:"exercise_name"`
		Sets         []models.ParsedSet `json:"sets"`
		Notes        *string            `json:"notes,omitempty"`
	}{p.UserID, p.SessionID, p.ExerciseName, p.Sets, p.Notes}

	body, status, err := c.do(ctx, http.MethodPost, "/api/v1/log-workout", nil, req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, storage.ErrSessionNotFound
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("httpclient: log-workout returned %d: %s", status, body)
	}

	var result storage.LogWorkoutResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode log-workout: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context, userID string, start, end time.Time) ([]models.SessionDetail, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	if !start.IsZero() {
		params.Set("start", start.Format(time.RFC3339))
	}
	if !end.IsZero() {
		params.Set("end", end.Format(time.RFC3339))
	}

	var sessions []models.SessionDetail
	if err := c.get(ctx, "/api/v1/sessions", params, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.SessionDetail, error) {
	var session models.SessionDetail
	if err := c.get(ctx, "/api/v1/sessions/"+sessionID.String(), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	body, status, err := c.do(ctx, http.MethodDelete, "/api/v1/sessions/"+sessionID.String(), nil, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return storage.ErrSessionNotFound
	}
	if status != http.StatusOK {
		return fmt.Errorf("httpclient: delete session returned %d: %s", status, body)
	}
	return nil
}

// RecentSessions lists without a date filter and truncates client-side; the
// REST API has no limit parameter.
func (c *HTTPClient) RecentSessions(ctx context.Context, userID string, limit int) ([]models.SessionDetail, error) {
	sessions, err := c.ListSessions(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (c *HTTPClient) Parse(ctx context.Context, text string) (*models.ParsedWorkout, error) {
	req := struct {
		Text string `json:"text"`
	}{text}

	body, status, err := c.do(ctx, http.MethodPost, "/api/v1/parse-workout", nil, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: parse-workout returned %d: %s", status, body)
	}

	var workout models.ParsedWorkout
	if err := json.Unmarshal(body, &workout); err != nil {
		return nil, fmt.Errorf("httpclient: decode parse-workout: %w", err)
	}
	return &workout, nil
}

func (c *HTTPClient) Ask(ctx context.Context, userID, message string) (string, error) {
	req := struct {
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}{userID, message}

	body, status, err := c.do(ctx, http.MethodPost, "/api/v1/coach", nil, req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("httpclient: coach returned %d: %s", status, body)
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("httpclient: decode coach: %w", err)
	}
	return resp.Response, nil
}
