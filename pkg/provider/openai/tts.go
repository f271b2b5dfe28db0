package openai

import (
	"context"
	"io"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/gramseva/vaani/pkg/ai/tts"
	"github.com/gramseva/vaani/pkg/provider"
)

// The speech endpoint returns 24 kHz mono 16-bit PCM when pcm format is
// requested.
const speechSampleRate = 24000

// SpeechSynthesizer produces spoken replies with the OpenAI speech API.
type SpeechSynthesizer struct {
	client *goopenai.Client
	model  goopenai.SpeechModel
	voice  goopenai.SpeechVoice
}

// NewSpeechSynthesizer creates an OpenAI-backed synthesizer.
func NewSpeechSynthesizer(s provider.Settings) (*SpeechSynthesizer, error) {
	client, err := newClient(s)
	if err != nil {
		return nil, err
	}

	model := goopenai.SpeechModel(s.Model)
	if s.Model == "" {
		model = goopenai.TTSModel1
	}
	voice := goopenai.SpeechVoice(s.Voice)
	if s.Voice == "" {
		voice = goopenai.VoiceAlloy
	}
	return &SpeechSynthesizer{client: client, model: model, voice: voice}, nil
}

// Synthesize converts one reply into PCM audio.
func (o *SpeechSynthesizer) Synthesize(ctx context.Context, req tts.SynthesizeRequest) (*tts.Synthesis, error) {
	speechReq := goopenai.CreateSpeechRequest{
		Model:          o.model,
		Input:          req.Text,
		Voice:          o.voice,
		ResponseFormat: goopenai.SpeechResponseFormatPcm,
	}
	if req.Voice != "" {
		speechReq.Voice = goopenai.SpeechVoice(req.Voice)
	}
	if req.Speed > 0 {
		speechReq.Speed = float64(req.Speed)
	}

	resp, err := o.client.CreateSpeech(ctx, speechReq)
	if err != nil {
		return nil, classifyAPIError("synthesis", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, classifyAPIError("synthesis", err)
	}

	return &tts.Synthesis{
		Audio:      audio,
		Format:     "pcm",
		SampleRate: speechSampleRate,
	}, nil
}

// Capabilities reports the supported voices.
func (o *SpeechSynthesizer) Capabilities() tts.Capabilities {
	return tts.Capabilities{
		Languages: []string{"en", "hi", "bn", "ta", "te", "mr"},
		Voices:    []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"},
	}
}
