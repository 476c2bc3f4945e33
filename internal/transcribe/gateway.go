// Package transcribe turns raw audio payloads into plain text via an
// external speech-to-text service, rejecting payloads the service cannot
// accept before any network call is made.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
)

// MaxPayloadBytes is the transcription provider's hard upload limit.
// Oversized payloads are rejected locally instead of burning a network call.
const MaxPayloadBytes = 25 * 1024 * 1024

var (
	// ErrUnsupportedMedia means the declared media type is not an audio type.
	ErrUnsupportedMedia = errors.New("unsupported media type, expected audio")
	// ErrPayloadTooLarge means the audio exceeds MaxPayloadBytes.
	ErrPayloadTooLarge = errors.New("audio payload exceeds 25MB limit")
	// ErrNoSpeech means the service returned empty or whitespace-only text.
	ErrNoSpeech = errors.New("no speech detected in audio")
	// ErrUnavailable wraps transport or provider failures. Not retried here;
	// the caller decides.
	ErrUnavailable = errors.New("transcription service unavailable")
)

// Client is the outbound speech-to-text capability, satisfied by *ai.Client.
type Client interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, mediaType string) (string, error)
}

// Gateway validates audio payloads and hands them to the transcription
// service.
type Gateway struct {
	client Client
	log    *slog.Logger
}

// NewGateway creates a Gateway backed by the given transcription client.
func NewGateway(client Client, log *slog.Logger) *Gateway {
	return &Gateway{client: client, log: log}
}

// Transcribe converts an audio payload into trimmed, non-empty text.
// filename is a hint for the provider's format detection; an empty value
// falls back to a generic name.
func (g *Gateway) Transcribe(ctx context.Context, audio []byte, mediaType, filename string) (string, error) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil || !strings.HasPrefix(mt, "audio/") {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMedia, mediaType)
	}
	if len(audio) > MaxPayloadBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(audio))
	}
	if filename == "" {
		filename = "audio"
	}

	text, err := g.client.Transcribe(ctx, bytes.NewReader(audio), filename, mt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoSpeech
	}

	g.log.Info("audio transcribed", "bytes", len(audio), "chars", len(text))
	return text, nil
}
