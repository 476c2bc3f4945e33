// Package ai wraps the OpenAI API behind the two narrow calls the pipeline
// needs: a chat completion and an audio transcription. Components depend on
// small interfaces satisfied by *Client so they can be tested with stubs.
package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// Client is an OpenAI-backed completion and transcription client.
type Client struct {
	client          oai.Client
	chatModel       string
	transcribeModel string
}

type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Client.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a Client. chatModel drives Complete; transcribeModel drives
// Transcribe.
func New(apiKey, chatModel, transcribeModel string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ai: apiKey must not be empty")
	}
	if chatModel == "" {
		return nil, fmt.Errorf("ai: chatModel must not be empty")
	}
	if transcribeModel == "" {
		transcribeModel = string(oai.AudioModelWhisper1)
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &Client{
		client:          oai.NewClient(reqOpts...),
		chatModel:       chatModel,
		transcribeModel: transcribeModel,
	}, nil
}

// Complete sends a single system+user exchange and returns the assistant's
// full reply.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.chatModel),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(system),
			oai.UserMessage(user),
		},
		Temperature: param.NewOpt(temperature),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("ai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ai: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe sends audio bytes to the transcription endpoint and returns the
// raw transcript text.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, mediaType string) (string, error) {
	resp, err := c.client.Audio.Transcriptions.New(ctx, oai.AudioTranscriptionNewParams{
		File:  oai.File(audio, filename, mediaType),
		Model: oai.AudioModel(c.transcribeModel),
	})
	if err != nil {
		return "", fmt.Errorf("ai: transcription: %w", err)
	}
	return resp.Text, nil
}
