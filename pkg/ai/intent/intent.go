// Package intent maps free text and a language to an intent label with a
// confidence score and optional entities. The primary path is an external
// model-backed classifier; a deterministic rule table serves as the local
// fallback so classification always yields a result.
package intent

import "context"

// The closed intent vocabulary. Everything a classifier returns must be one
// of these labels; anything else is mapped to IntentUnknown.
const (
	IntentSchemeInquiry = "scheme_inquiry"
	IntentComplaint     = "complaint"
	IntentWeather       = "weather"
	IntentCropAdvisory  = "crop_advisory"
	IntentMarketPrice   = "market_price"
	IntentHealth        = "health"
	IntentHospital      = "hospital"
	IntentGreeting      = "greeting"
	IntentHelp          = "help"
	IntentUnknown       = "unknown"
)

// Source records which path produced a classification result.
type Source string

const (
	SourceModel Source = "model"
	SourceRules Source = "rules"
)

// Confidence levels for the rule-based fallback path. Rule matches carry a
// fixed confidence so they are distinguishable from model scores.
const (
	RuleConfidence    = 0.85
	UnknownConfidence = 0.2
)

// Entity is a structured value extracted alongside the intent.
type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Result is a classification outcome.
type Result struct {
	Intent     string
	Confidence float64 // in [0,1]
	Entities   []Entity
	Language   string
	Source     Source
}

// Classifier maps text and a language to an intent result.
type Classifier interface {
	Classify(ctx context.Context, text, language string) (*Result, error)
}

// Known reports whether label belongs to the closed intent vocabulary.
func Known(label string) bool {
	switch label {
	case IntentSchemeInquiry, IntentComplaint, IntentWeather, IntentCropAdvisory,
		IntentMarketPrice, IntentHealth, IntentHospital, IntentGreeting,
		IntentHelp, IntentUnknown:
		return true
	}
	return false
}

// Intents returns the closed vocabulary, excluding the catch-all.
func Intents() []string {
	return []string{
		IntentSchemeInquiry, IntentComplaint, IntentWeather, IntentCropAdvisory,
		IntentMarketPrice, IntentHealth, IntentHospital, IntentGreeting, IntentHelp,
	}
}
