// Package openai implements the transcription, synthesis, and intent
// classification gateways on the OpenAI API. Importing the package registers
// the providers under the name "openai".
package openai

import (
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/gramseva/vaani/pkg/ai"
	"github.com/gramseva/vaani/pkg/provider"
)

func init() {
	provider.Register(provider.KindSTT, "openai", func(s provider.Settings) (any, error) {
		return NewWhisperTranscriber(s)
	})
	provider.Register(provider.KindTTS, "openai", func(s provider.Settings) (any, error) {
		return NewSpeechSynthesizer(s)
	})
	provider.Register(provider.KindIntent, "openai", func(s provider.Settings) (any, error) {
		return NewChatClassifier(s)
	})
}

func newClient(s provider.Settings) (*goopenai.Client, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if s.BaseURL != "" {
		cfg := goopenai.DefaultConfig(s.APIKey)
		cfg.BaseURL = s.BaseURL
		return goopenai.NewClientWithConfig(cfg), nil
	}
	return goopenai.NewClient(s.APIKey), nil
}

// classifyAPIError wraps an OpenAI API error as recoverable or fatal so the
// retry layer knows whether to try again. Rate limits and server errors are
// recoverable; auth and request errors are not.
func classifyAPIError(op string, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			return ai.NewRecoverableError(err, fmt.Sprintf("%s temporarily unavailable", op))
		}
		return ai.NewFatalError(err, fmt.Sprintf("%s rejected the request", op))
	}
	// Transport-level failures are worth a retry.
	return ai.NewRecoverableError(err, fmt.Sprintf("%s request failed", op))
}
