// Package tts defines the speech synthesis gateway: providers that turn a
// reply string into playable audio, plus a fallback combinator that prefers a
// premium provider and degrades to a locally available one.
package tts

import (
	"context"
	"log/slog"

	"github.com/gramseva/vaani/pkg/ai"
)

// TTS-specific error variables for provider implementations
var (
	// ErrRecoverable indicates a temporary synthesis failure that may succeed
	// if retried. Examples: service overload, quota exceeded temporarily.
	ErrRecoverable = ai.ErrRecoverable

	// ErrFatal indicates a permanent synthesis failure.
	// Examples: invalid voice ID, unsupported language.
	ErrFatal = ai.ErrFatal
)

// SynthesizeRequest contains parameters for text-to-speech synthesis.
type SynthesizeRequest struct {
	Text     string
	Voice    string
	Language string
	Speed    float32
}

// Synthesis is the audio produced for one reply.
type Synthesis struct {
	Audio      []byte // raw audio bytes in Format
	Format     string // "pcm", "mp3", ...
	SampleRate int
}

// Capabilities describes what a synthesis provider supports.
type Capabilities struct {
	Languages []string
	Voices    []string
}

// Synthesizer is the main interface for speech synthesis providers.
type Synthesizer interface {
	// Synthesize converts text to audio.
	Synthesize(ctx context.Context, req SynthesizeRequest) (*Synthesis, error)

	// Capabilities returns the provider's capabilities.
	Capabilities() Capabilities
}

// Fallback is a Synthesizer that tries a primary provider first and falls
// back to a secondary one when the primary fails.
type Fallback struct {
	primary   Synthesizer
	secondary Synthesizer
	logger    *slog.Logger
}

// NewFallback wires a primary and a secondary synthesizer. The secondary may
// be nil, in which case primary failures are returned as-is.
func NewFallback(primary, secondary Synthesizer, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// Synthesize tries the primary provider and degrades to the secondary.
func (f *Fallback) Synthesize(ctx context.Context, req SynthesizeRequest) (*Synthesis, error) {
	result, err := f.primary.Synthesize(ctx, req)
	if err == nil {
		return result, nil
	}
	if f.secondary == nil {
		return nil, err
	}

	f.logger.Warn("primary synthesizer failed, using fallback",
		slog.String("error", err.Error()))
	return f.secondary.Synthesize(ctx, req)
}

// Capabilities returns the primary provider's capabilities.
func (f *Fallback) Capabilities() Capabilities {
	return f.primary.Capabilities()
}
