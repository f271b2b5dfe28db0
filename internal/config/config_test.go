package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDefaultIsValid(t *testing.T) {
	is := is.New(t)
	cfg := Default()
	is.NoErr(cfg.Validate())
	is.Equal(cfg.Providers.TTSFallback, "") // no fallback unless asked for
	is.True(cfg.History.MaxTurns > 0)       // memory history is capped
}

func TestLoadFromFile(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
providers:
  tts_fallback: mock
languages:
  default: hi
  supported: [hi, en]
session:
  idle_timeout: 90s
history:
  driver: redis
  redis_addr: localhost:6379
`
	is.NoErr(os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	is.NoErr(err)
	is.Equal(cfg.Server.Port, 9090)
	is.Equal(cfg.Server.Host, "0.0.0.0") // default survives partial file
	is.Equal(cfg.Providers.TTSFallback, "mock")
	is.Equal(cfg.Languages.Default, "hi")
	is.Equal(cfg.Session.IdleTimeout.Std(), 90*time.Second)
	is.Equal(cfg.History.Driver, "redis")
}

func TestLoadMissingFile(t *testing.T) {
	is := is.New(t)
	_, err := Load("/nonexistent/config.yaml")
	is.True(err != nil)
}

func TestEnvOverrides(t *testing.T) {
	is := is.New(t)
	t.Setenv("VAANI_PORT", "7070")
	t.Setenv("VAANI_LOG_LEVEL", "debug")
	t.Setenv("VAANI_DEFAULT_LANGUAGE", "hi")

	cfg, err := Load("")
	is.NoErr(err)
	is.Equal(cfg.Server.Port, 7070)
	is.Equal(cfg.Log.Level, "debug")
	is.Equal(cfg.Languages.Default, "hi")
}

func TestValidateRejectsBadDefaults(t *testing.T) {
	is := is.New(t)

	cfg := Default()
	cfg.Languages.Default = "fr"
	is.True(cfg.Validate() != nil)

	cfg = Default()
	cfg.History.Driver = "redis"
	is.True(cfg.Validate() != nil) // redis without an address

	cfg = Default()
	cfg.Server.Port = -1
	is.True(cfg.Validate() != nil)
}

func TestInvalidDuration(t *testing.T) {
	is := is.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	is.NoErr(os.WriteFile(path, []byte("session:\n  idle_timeout: soon\n"), 0o644))

	_, err := Load(path)
	is.True(err != nil)
}
