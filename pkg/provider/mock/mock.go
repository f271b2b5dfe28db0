// Package mock registers the fake providers under the name "mock" so the
// server can run without external services.
package mock

import (
	"github.com/gramseva/vaani/pkg/ai/intent"
	intentfake "github.com/gramseva/vaani/pkg/ai/intent/fake"
	sttfake "github.com/gramseva/vaani/pkg/ai/stt/fake"
	ttsfake "github.com/gramseva/vaani/pkg/ai/tts/fake"
	"github.com/gramseva/vaani/pkg/provider"
)

func init() {
	provider.Register(provider.KindSTT, "mock", func(s provider.Settings) (any, error) {
		return sttfake.NewFakeTranscriber(""), nil
	})
	provider.Register(provider.KindTTS, "mock", func(s provider.Settings) (any, error) {
		return ttsfake.NewFakeSynthesizer(), nil
	})
	provider.Register(provider.KindIntent, "mock", func(s provider.Settings) (any, error) {
		return intentfake.NewFakeClassifier(intent.IntentGreeting, 0.9), nil
	})
}
