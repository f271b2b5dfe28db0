// Package stt defines the transcription gateway: providers that turn buffered
// audio into a transcript with a confidence score and a detected or declared
// language.
package stt

import (
	"context"

	"github.com/gramseva/vaani/pkg/ai"
)

// STT-specific error variables for provider implementations
var (
	// ErrRecoverable indicates a temporary transcription failure that may
	// succeed if retried. Examples: network timeout, service unavailable.
	ErrRecoverable = ai.ErrRecoverable

	// ErrFatal indicates a permanent transcription failure.
	// Examples: invalid audio format, unsupported language, bad credentials.
	ErrFatal = ai.ErrFatal
)

// TranscribeConfig carries per-call transcription settings.
type TranscribeConfig struct {
	// Language is the session's working language. Empty means auto-detect.
	Language string
	// SampleRate of the submitted PCM audio in Hz.
	SampleRate int
}

// Transcription is the result of transcribing one buffered recording.
type Transcription struct {
	Text       string
	Confidence float64 // in [0,1]
	Language   string  // detected, or the declared language when unavailable
}

// Capabilities describes what a transcription provider supports.
type Capabilities struct {
	Languages   []string
	SampleRates []int
}

// Transcriber is the main interface for transcription providers. The
// orchestrator buffers a whole recording and submits it in one call; there is
// no streaming path on this boundary.
type Transcriber interface {
	// Transcribe converts WAV-encoded audio into a transcript.
	Transcribe(ctx context.Context, wav []byte, cfg TranscribeConfig) (*Transcription, error)

	// Capabilities returns the provider's capabilities.
	Capabilities() Capabilities
}
