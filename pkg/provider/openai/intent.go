package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/gramseva/vaani/pkg/ai/intent"
	"github.com/gramseva/vaani/pkg/provider"
)

const classifierSystemPrompt = `You classify citizen service requests in Indian languages.
Return a JSON object: {"intent": "<label>", "confidence": <0..1>, "entities": [{"type": "...", "value": "..."}]}.
The intent must be exactly one of: %s.
Use "unknown" when no label fits. Entities are optional; extract locations, crop names, and scheme names when present.`

// ChatClassifier maps utterances to intents with a chat-completion call
// constrained to JSON output.
type ChatClassifier struct {
	client *goopenai.Client
	model  string
}

// NewChatClassifier creates a chat-backed intent classifier.
func NewChatClassifier(s provider.Settings) (*ChatClassifier, error) {
	client, err := newClient(s)
	if err != nil {
		return nil, err
	}

	model := s.Model
	if model == "" {
		model = goopenai.GPT4oMini
	}
	return &ChatClassifier{client: client, model: model}, nil
}

// Classify asks the model for an intent label. Out-of-vocabulary labels and
// malformed output are the caller's concern; the gateway maps them to
// unknown.
func (c *ChatClassifier) Classify(ctx context.Context, text, language string) (*intent.Result, error) {
	req := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(classifierSystemPrompt, strings.Join(intent.Intents(), ", ")),
			},
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Language: %s\nUtterance: %s", language, text),
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyAPIError("classification", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("classification returned no choices")
	}

	var parsed struct {
		Intent     string          `json:"intent"`
		Confidence float64         `json:"confidence"`
		Entities   []intent.Entity `json:"entities"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse classification output: %w", err)
	}

	return &intent.Result{
		Intent:     parsed.Intent,
		Confidence: parsed.Confidence,
		Entities:   parsed.Entities,
		Language:   language,
		Source:     intent.SourceModel,
	}, nil
}
