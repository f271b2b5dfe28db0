// Package config loads server configuration from defaults, an optional YAML
// file, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "45s" parse directly.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Languages LanguagesConfig `yaml:"languages"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Session   SessionConfig   `yaml:"session"`
	History   HistoryConfig   `yaml:"history"`
	Lookup    LookupConfig    `yaml:"lookup"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ProvidersConfig selects the AI providers by registry name.
type ProvidersConfig struct {
	STT    string `yaml:"stt"`
	TTS    string `yaml:"tts"`
	Intent string `yaml:"intent"`

	// TTSFallback names a second synthesis provider used when the primary
	// one fails. Empty disables the fallback.
	TTSFallback string `yaml:"tts_fallback"`

	OpenAI OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig carries OpenAI credentials and model selection.
type OpenAIConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	ChatModel   string `yaml:"chat_model"`
	SpeechVoice string `yaml:"speech_voice"`
}

// LanguagesConfig declares the language policy.
type LanguagesConfig struct {
	Default   string   `yaml:"default"`
	Supported []string `yaml:"supported"`
}

// PipelineConfig bounds pipeline provider calls.
type PipelineConfig struct {
	ProviderTimeout Duration `yaml:"provider_timeout"`
}

// SessionConfig controls session lifecycle limits.
type SessionConfig struct {
	IdleTimeout   Duration `yaml:"idle_timeout"`
	ReapInterval  Duration `yaml:"reap_interval"`
	MaxAudioBytes int      `yaml:"max_audio_bytes"`
}

// HistoryConfig selects the turn persistence driver.
type HistoryConfig struct {
	Driver    string   `yaml:"driver"` // "memory" or "redis"
	RedisAddr string   `yaml:"redis_addr"`
	TTL       Duration `yaml:"ttl"`

	// MaxTurns caps per-session history for the memory driver, keeping a
	// long-lived process from growing without bound. Zero means unlimited.
	MaxTurns int `yaml:"max_turns"`
}

// LookupConfig points at the citizen-data upstreams. Empty URLs fall back to
// static data.
type LookupConfig struct {
	WeatherURL   string   `yaml:"weather_url"`
	MandiURL     string   `yaml:"mandi_url"`
	SchemesURL   string   `yaml:"schemes_url"`
	HospitalsURL string   `yaml:"hospitals_url"`
	Timeout      Duration `yaml:"timeout"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Providers: ProvidersConfig{
			STT:    "openai",
			TTS:    "openai",
			Intent: "openai",
		},
		Languages: LanguagesConfig{
			Default:   "en",
			Supported: []string{"en", "hi", "bn", "ta", "te", "mr"},
		},
		Pipeline: PipelineConfig{
			ProviderTimeout: Duration(5 * time.Second),
		},
		Session: SessionConfig{
			IdleTimeout:   Duration(5 * time.Minute),
			ReapInterval:  Duration(30 * time.Second),
			MaxAudioBytes: 16000 * 2 * 60 * 5,
		},
		History: HistoryConfig{
			Driver:   "memory",
			TTL:      Duration(24 * time.Hour),
			MaxTurns: 50,
		},
		Lookup: LookupConfig{
			Timeout: Duration(3 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path when
// given, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VAANI_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("VAANI_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.Providers.OpenAI.APIKey == "" {
		c.Providers.OpenAI.APIKey = v
	}
	if v := os.Getenv("VAANI_REDIS_ADDR"); v != "" {
		c.History.RedisAddr = v
	}
	if v := os.Getenv("VAANI_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("VAANI_DEFAULT_LANGUAGE"); v != "" {
		c.Languages.Default = v
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	supported := false
	for _, lang := range c.Languages.Supported {
		if lang == c.Languages.Default {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("default language %q is not in the supported set", c.Languages.Default)
	}

	switch c.History.Driver {
	case "memory":
	case "redis":
		if c.History.RedisAddr == "" {
			return fmt.Errorf("history driver is redis but no redis address is configured")
		}
	default:
		return fmt.Errorf("unknown history driver: %q", c.History.Driver)
	}
	return nil
}
