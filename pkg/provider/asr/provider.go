// Package asr defines the Provider interface for speech-recognition backends.
//
// An ASR provider wraps a batch transcription engine (a whisper-server
// instance or the whisper.cpp bindings) behind a single blocking call:
// a complete audio sample in, hypothesis text out. Implementations must be
// safe for concurrent use.
package asr

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the transcription backend is not reachable or not
// loaded. Callers should map it to a "retry later" response, distinct from
// client input errors.
var ErrUnavailable = errors.New("asr backend unavailable")

// Sample is one complete audio recording to transcribe.
type Sample struct {
	// Data is the raw audio file content, container included (WAV).
	Data []byte

	// Filename is the original upload name. Used as a format hint and for
	// multipart forwarding; may be empty.
	Filename string
}

// Result is the transcription outcome for a sample.
type Result struct {
	// Text is the recognised hypothesis text.
	Text string

	// Confidence is the overall confidence in [0, 1]. Zero when the backend
	// does not report confidence.
	Confidence float64
}

// Provider converts an audio sample into hypothesis text.
//
// Transcribe blocks until the backend finishes or ctx is done. It returns an
// error wrapping [ErrUnavailable] when the backend cannot be reached, and an
// ordinary error for a failed transcription of a reachable backend.
type Provider interface {
	Transcribe(ctx context.Context, sample Sample) (Result, error)
}
