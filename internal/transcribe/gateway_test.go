package transcribe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

// stubClient records whether the transcription service was called and
// returns a canned transcript or error.
type stubClient struct {
	called bool
	text   string
	err    error
}

func (s *stubClient) Transcribe(_ context.Context, audio io.Reader, _, _ string) (string, error) {
	s.called = true
	io.Copy(io.Discard, audio)
	return s.text, s.err
}

func newGateway(stub *stubClient) *Gateway {
	return NewGateway(stub, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestTranscribeSuccess verifies that a valid audio payload yields trimmed text.
func TestTranscribeSuccess(t *testing.T) {
	stub := &stubClient{text: "  bench press 3 sets 8 reps 185 pounds \n"}
	got, err := newGateway(stub).Transcribe(context.Background(), []byte("audio"), "audio/webm", "note.webm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "bench press 3 sets 8 reps 185 pounds" {
		t.Errorf("text = %q, want trimmed transcript", got)
	}
}

// TestTranscribeUnsupportedMedia verifies non-audio media types are rejected
// without calling the service.
func TestTranscribeUnsupportedMedia(t *testing.T) {
	for _, mediaType := range []string{"video/mp4", "text/plain", "application/octet-stream", ""} {
		stub := &stubClient{text: "hello"}
		_, err := newGateway(stub).Transcribe(context.Background(), []byte("x"), mediaType, "")
		if !errors.Is(err, ErrUnsupportedMedia) {
			t.Errorf("media type %q: error = %v, want ErrUnsupportedMedia", mediaType, err)
		}
		if stub.called {
			t.Errorf("media type %q: service was called", mediaType)
		}
	}
}

// TestTranscribePayloadTooLarge verifies a 26MB payload fails before any
// network call.
func TestTranscribePayloadTooLarge(t *testing.T) {
	stub := &stubClient{text: "hello"}
	big := bytes.Repeat([]byte{0}, 26*1024*1024)

	_, err := newGateway(stub).Transcribe(context.Background(), big, "audio/wav", "big.wav")
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("error = %v, want ErrPayloadTooLarge", err)
	}
	if stub.called {
		t.Error("service was called for an oversized payload")
	}
}

// TestTranscribeNoSpeech verifies whitespace-only transcripts fail with
// ErrNoSpeech rather than returning an empty string.
func TestTranscribeNoSpeech(t *testing.T) {
	stub := &stubClient{text: "   \n\t "}
	_, err := newGateway(stub).Transcribe(context.Background(), []byte("x"), "audio/mpeg", "")
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("error = %v, want ErrNoSpeech", err)
	}
}

// TestTranscribeUnavailable verifies provider failures surface as
// ErrUnavailable so callers can distinguish them from bad input.
func TestTranscribeUnavailable(t *testing.T) {
	stub := &stubClient{err: errors.New("connection refused")}
	_, err := newGateway(stub).Transcribe(context.Background(), []byte("x"), "audio/wav", "")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

// TestTranscribeMediaTypeWithParams verifies media types carrying parameters
// (e.g. codecs) still pass the audio check.
func TestTranscribeMediaTypeWithParams(t *testing.T) {
	stub := &stubClient{text: "squats"}
	_, err := newGateway(stub).Transcribe(context.Background(), []byte("x"), "audio/webm; codecs=opus", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stub.called {
		t.Error("service was not called")
	}
}
