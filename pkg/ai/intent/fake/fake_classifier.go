// Package fake provides a fake model classifier for testing the
// classification gateway and for mock mode.
package fake

import (
	"context"

	"github.com/gramseva/vaani/pkg/ai/intent"
)

// FakeClassifier is a fake model-backed classifier. It returns a fixed
// result, or a fixed error when Err is set.
type FakeClassifier struct {
	Intent     string
	Confidence float64
	Err        error

	calls int
}

// NewFakeClassifier creates a fake classifier returning the given intent.
func NewFakeClassifier(label string, confidence float64) *FakeClassifier {
	return &FakeClassifier{Intent: label, Confidence: confidence}
}

// Classify returns the configured result or error.
func (f *FakeClassifier) Classify(ctx context.Context, text, language string) (*intent.Result, error) {
	f.calls++

	if f.Err != nil {
		return nil, f.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &intent.Result{
		Intent:     f.Intent,
		Confidence: f.Confidence,
		Language:   language,
		Source:     intent.SourceModel,
	}, nil
}

// Calls reports how many times Classify was invoked.
func (f *FakeClassifier) Calls() int {
	return f.calls
}
