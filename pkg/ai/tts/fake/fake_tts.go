// Package fake provides a fake synthesis provider for testing and for
// running the orchestrator in mock mode. It generates a short sine tone
// instead of real speech.
package fake

import (
	"context"
	"math"

	"github.com/gramseva/vaani/pkg/ai/tts"
)

const fakeSampleRate = 16000

// FakeSynthesizer is a fake Synthesizer implementation. It returns a sine
// tone sized to the input text, or a fixed error when Err is set.
type FakeSynthesizer struct {
	Err error
}

// NewFakeSynthesizer creates a new fake synthesis provider.
func NewFakeSynthesizer() *FakeSynthesizer {
	return &FakeSynthesizer{}
}

// Synthesize generates fake PCM audio (sine wave) for the given text.
func (f *FakeSynthesizer) Synthesize(ctx context.Context, req tts.SynthesizeRequest) (*tts.Synthesis, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Roughly 50ms of tone per character, capped at 2s.
	samples := len(req.Text) * fakeSampleRate / 20
	if max := 2 * fakeSampleRate; samples > max {
		samples = max
	}
	if samples == 0 {
		samples = fakeSampleRate / 10
	}

	const frequency = 440.0
	data := make([]byte, samples*2) // 16-bit mono
	for i := 0; i < samples; i++ {
		sample := 0.3 * math.Sin(2*math.Pi*frequency*float64(i)/float64(fakeSampleRate))
		intSample := int16(sample * 32767)
		data[i*2] = byte(intSample & 0xFF)
		data[i*2+1] = byte((intSample >> 8) & 0xFF)
	}

	return &tts.Synthesis{
		Audio:      data,
		Format:     "pcm",
		SampleRate: fakeSampleRate,
	}, nil
}

// Capabilities returns the fake synthesizer capabilities.
func (f *FakeSynthesizer) Capabilities() tts.Capabilities {
	return tts.Capabilities{
		Languages: []string{"en", "hi", "bn", "ta", "te", "mr"},
		Voices:    []string{"default"},
	}
}
