// Package fake provides a fake transcription provider for testing and for
// running the orchestrator in mock mode.
package fake

import (
	"context"
	"fmt"

	"github.com/gramseva/vaani/pkg/ai/stt"
)

// DefaultTranscript is used when no transcript is provided.
const DefaultTranscript = "This is a fake transcript from the fake transcription provider."

// FakeTranscriber is a fake Transcriber implementation. It returns a fixed
// transcript, or a fixed error when Err is set.
type FakeTranscriber struct {
	Transcript string
	Confidence float64
	Err        error

	calls int
}

// NewFakeTranscriber creates a fake transcription provider with a fixed transcript.
func NewFakeTranscriber(transcript string) *FakeTranscriber {
	if transcript == "" {
		transcript = DefaultTranscript
	}
	return &FakeTranscriber{Transcript: transcript, Confidence: 0.92}
}

// Transcribe returns the configured transcript or error.
func (f *FakeTranscriber) Transcribe(ctx context.Context, wav []byte, cfg stt.TranscribeConfig) (*stt.Transcription, error) {
	f.calls++

	if f.Err != nil {
		return nil, f.Err
	}
	if len(wav) == 0 {
		return nil, fmt.Errorf("empty audio submitted: %w", stt.ErrFatal)
	}

	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	return &stt.Transcription{
		Text:       f.Transcript,
		Confidence: f.Confidence,
		Language:   lang,
	}, nil
}

// Capabilities returns the fake provider capabilities.
func (f *FakeTranscriber) Capabilities() stt.Capabilities {
	return stt.Capabilities{
		Languages:   []string{"en", "hi", "bn", "ta", "te", "mr"},
		SampleRates: []int{8000, 16000, 48000},
	}
}

// Calls reports how many times Transcribe was invoked.
func (f *FakeTranscriber) Calls() int {
	return f.calls
}
