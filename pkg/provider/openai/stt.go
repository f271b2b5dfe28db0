package openai

import (
	"bytes"
	"context"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/gramseva/vaani/pkg/ai/stt"
	"github.com/gramseva/vaani/pkg/provider"
)

// WhisperTranscriber transcribes buffered recordings with the Whisper API.
type WhisperTranscriber struct {
	client *goopenai.Client
	model  string
}

// NewWhisperTranscriber creates a Whisper-backed transcriber.
func NewWhisperTranscriber(s provider.Settings) (*WhisperTranscriber, error) {
	client, err := newClient(s)
	if err != nil {
		return nil, err
	}

	model := s.Model
	if model == "" {
		model = goopenai.Whisper1
	}
	return &WhisperTranscriber{client: client, model: model}, nil
}

// Transcribe submits one WAV-encoded recording to Whisper.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, wav []byte, cfg stt.TranscribeConfig) (*stt.Transcription, error) {
	req := goopenai.AudioRequest{
		Model:    w.model,
		Language: cfg.Language,
		Format:   goopenai.AudioResponseFormatVerboseJSON,
		Reader:   bytes.NewReader(wav),
		FilePath: "audio.wav", // required by the API for format detection
	}

	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, classifyAPIError("transcription", err)
	}

	language := resp.Language
	if language == "" {
		language = cfg.Language
	}

	// Derive confidence from the per-segment no-speech probabilities in the
	// verbose response. No segments means the API gave us nothing to score.
	confidence := 0.9
	if len(resp.Segments) > 0 {
		total := 0.0
		for _, segment := range resp.Segments {
			total += 1.0 - segment.NoSpeechProb
		}
		confidence = clamp01(total / float64(len(resp.Segments)))
	}

	return &stt.Transcription{
		Text:       resp.Text,
		Confidence: confidence,
		Language:   language,
	}, nil
}

// Capabilities reports what Whisper handles on this deployment.
func (w *WhisperTranscriber) Capabilities() stt.Capabilities {
	return stt.Capabilities{
		Languages:   []string{"en", "hi", "bn", "ta", "te", "mr"},
		SampleRates: []int{8000, 16000, 24000, 48000},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
