// Package provider is the registry of AI provider implementations. Provider
// packages register factories in init(); the server builds the configured
// providers by kind and name at startup.
package provider

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/gramseva/vaani/pkg/ai/intent"
	"github.com/gramseva/vaani/pkg/ai/stt"
	"github.com/gramseva/vaani/pkg/ai/tts"
)

// Kind identifies a provider slot in the pipeline.
type Kind string

const (
	KindSTT    Kind = "stt"
	KindTTS    Kind = "tts"
	KindIntent Kind = "intent"
)

// Settings carries provider construction parameters. Providers use the
// fields relevant to them and ignore the rest.
type Settings struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
	Logger  *slog.Logger
}

// Factory builds a provider instance. The returned value must implement the
// interface for the kind it was registered under.
type Factory func(s Settings) (any, error)

// Registry maps (kind, name) to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]map[string]Factory)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that provider packages register
// into.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a factory. It panics when (kind, name) is already taken:
// duplicate registrations are programmer error and surface at startup.
func (r *Registry) Register(kind Kind, name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.factories[kind]
	if !ok {
		byName = make(map[string]Factory)
		r.factories[kind] = byName
	}
	if _, exists := byName[name]; exists {
		panic(fmt.Sprintf("provider already registered: %s/%s", kind, name))
	}
	byName[name] = factory
}

// Register adds a factory to the default registry.
func Register(kind Kind, name string, factory Factory) {
	defaultRegistry.Register(kind, name, factory)
}

// Build constructs the provider registered under (kind, name).
func (r *Registry) Build(kind Kind, name string, s Settings) (any, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind][name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no %s provider named %q (available: %v)", kind, name, r.Names(kind))
	}
	return factory(s)
}

// Names lists the registered providers for a kind, sorted.
func (r *Registry) Names(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories[kind]))
	for name := range r.factories[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildTranscriber builds a transcription provider from the default registry.
func BuildTranscriber(name string, s Settings) (stt.Transcriber, error) {
	v, err := defaultRegistry.Build(KindSTT, name, s)
	if err != nil {
		return nil, err
	}
	t, ok := v.(stt.Transcriber)
	if !ok {
		return nil, fmt.Errorf("%s provider %q does not implement stt.Transcriber", KindSTT, name)
	}
	return t, nil
}

// BuildSynthesizer builds a synthesis provider from the default registry.
func BuildSynthesizer(name string, s Settings) (tts.Synthesizer, error) {
	v, err := defaultRegistry.Build(KindTTS, name, s)
	if err != nil {
		return nil, err
	}
	t, ok := v.(tts.Synthesizer)
	if !ok {
		return nil, fmt.Errorf("%s provider %q does not implement tts.Synthesizer", KindTTS, name)
	}
	return t, nil
}

// BuildClassifier builds an intent classifier from the default registry.
func BuildClassifier(name string, s Settings) (intent.Classifier, error) {
	v, err := defaultRegistry.Build(KindIntent, name, s)
	if err != nil {
		return nil, err
	}
	c, ok := v.(intent.Classifier)
	if !ok {
		return nil, fmt.Errorf("%s provider %q does not implement intent.Classifier", KindIntent, name)
	}
	return c, nil
}
