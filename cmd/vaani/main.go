package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/gramseva/vaani/internal/config"
	"github.com/gramseva/vaani/internal/server"
	"github.com/gramseva/vaani/pkg/ai/intent"
	"github.com/gramseva/vaani/pkg/ai/tts"
	"github.com/gramseva/vaani/pkg/history"
	"github.com/gramseva/vaani/pkg/lookup"
	"github.com/gramseva/vaani/pkg/pipeline"
	"github.com/gramseva/vaani/pkg/provider"
	_ "github.com/gramseva/vaani/pkg/provider/mock"   // Import to register mock providers
	_ "github.com/gramseva/vaani/pkg/provider/openai" // Import to register OpenAI providers
	"github.com/gramseva/vaani/pkg/reaper"
	"github.com/gramseva/vaani/pkg/response"
	"github.com/gramseva/vaani/pkg/session"
	"github.com/gramseva/vaani/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "vaani",
	Short: "Vaani - real-time multilingual voice session orchestrator",
	Long: `vaani is the voice backend for citizen services: it manages WebSocket
sessions, buffers recorded audio, and runs each utterance through
transcription, intent classification, reply generation, and speech synthesis.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the voice session server",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		mock, _ := cmd.Flags().GetBool("mock")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if mock {
			cfg.Providers.STT = "mock"
			cfg.Providers.TTS = "mock"
			cfg.Providers.Intent = "mock"
		}

		logger := setupLogger(cfg.Log)
		logger.Info("starting vaani",
			slog.String("version", version.Version),
			slog.String("commit", version.GitCommit),
			slog.String("addr", cfg.Server.Addr()),
			slog.Bool("mock", mock))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return run(ctx, cfg, logger)
	},
}

var healthzCmd = &cobra.Command{
	Use:   "healthz",
	Short: "Check a running server's health endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(fmt.Sprintf("http://%s/healthz", addr))
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("health check returned status %d", resp.StatusCode)
		}

		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("health check returned invalid JSON: %w", err)
		}
		fmt.Printf("status: %v, version: %v, active sessions: %v\n",
			body["status"], body["version"], body["activeSessions"])
		return nil
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered AI providers",
	Run: func(cmd *cobra.Command, args []string) {
		for _, kind := range []provider.Kind{provider.KindSTT, provider.KindTTS, provider.KindIntent} {
			fmt.Printf("%-8s %v\n", kind, provider.Default().Names(kind))
		}
	},
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	settings := provider.Settings{
		APIKey:  cfg.Providers.OpenAI.APIKey,
		BaseURL: cfg.Providers.OpenAI.BaseURL,
		Logger:  logger,
	}

	transcriber, err := provider.BuildTranscriber(cfg.Providers.STT, settings)
	if err != nil {
		return fmt.Errorf("failed to build transcription provider: %w", err)
	}

	synthesizer, err := provider.BuildSynthesizer(cfg.Providers.TTS, provider.Settings{
		APIKey:  cfg.Providers.OpenAI.APIKey,
		BaseURL: cfg.Providers.OpenAI.BaseURL,
		Voice:   cfg.Providers.OpenAI.SpeechVoice,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build synthesis provider: %w", err)
	}
	if cfg.Providers.TTSFallback != "" {
		secondary, err := provider.BuildSynthesizer(cfg.Providers.TTSFallback, provider.Settings{
			APIKey:  cfg.Providers.OpenAI.APIKey,
			BaseURL: cfg.Providers.OpenAI.BaseURL,
			Voice:   cfg.Providers.OpenAI.SpeechVoice,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to build fallback synthesis provider: %w", err)
		}
		synthesizer = tts.NewFallback(synthesizer, secondary, logger)
	}

	classifier, err := provider.BuildClassifier(cfg.Providers.Intent, provider.Settings{
		APIKey:  cfg.Providers.OpenAI.APIKey,
		BaseURL: cfg.Providers.OpenAI.BaseURL,
		Model:   cfg.Providers.OpenAI.ChatModel,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build intent provider: %w", err)
	}

	gateway := intent.NewGateway(intent.GatewayConfig{
		Primary: classifier,
		Timeout: cfg.Pipeline.ProviderTimeout.Std(),
		Logger:  logger,
	})

	store, err := buildHistoryStore(ctx, cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	coordinator, err := pipeline.New(pipeline.Config{
		Transcriber:     transcriber,
		Classifier:      gateway,
		Generator:       response.NewGenerator(cfg.Languages.Default),
		Synthesizer:     synthesizer,
		Lookup:          lookupClient(cfg.Lookup, logger),
		Recorder:        store,
		ProviderTimeout: cfg.Pipeline.ProviderTimeout.Std(),
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	coordinator.Metrics().Publish("vaani.pipeline")

	manager, err := session.NewManager(session.Config{
		DefaultLanguage:    cfg.Languages.Default,
		SupportedLanguages: cfg.Languages.Supported,
		MaxAudioBytes:      cfg.Session.MaxAudioBytes,
	}, session.NewRegistry(), coordinator, logger)
	if err != nil {
		return fmt.Errorf("failed to build session manager: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	idle := reaper.New(reaper.Config{
		IdleTimeout: cfg.Session.IdleTimeout.Std(),
		Interval:    cfg.Session.ReapInterval.Std(),
	}, manager, reaper.NewMetrics(registry), logger)
	go idle.Run(ctx)

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
	}, manager, registry, logger)

	return srv.Run(ctx)
}

func buildHistoryStore(ctx context.Context, cfg config.HistoryConfig) (history.Store, error) {
	switch cfg.Driver {
	case "redis":
		store, err := history.NewRedisStore(ctx, cfg.RedisAddr, history.WithTTL(cfg.TTL.Std()))
		if err != nil {
			return nil, fmt.Errorf("failed to open redis history store: %w", err)
		}
		return store, nil
	default:
		return history.NewMemoryStore(history.WithMaxTurns(cfg.MaxTurns)), nil
	}
}

func lookupClient(cfg config.LookupConfig, logger *slog.Logger) *lookup.Client {
	return lookup.NewClient(lookup.Config{
		WeatherURL:   cfg.WeatherURL,
		MandiURL:     cfg.MandiURL,
		SchemesURL:   cfg.SchemesURL,
		HospitalsURL: cfg.HospitalsURL,
		Timeout:      cfg.Timeout.Std(),
	}, logger)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func init() {
	serveCmd.Flags().String("config", "", "Path to YAML config file")
	serveCmd.Flags().Bool("mock", false, "Use mock providers instead of external services")

	healthzCmd.Flags().String("addr", "localhost:8080", "Server address to check")

	rootCmd.AddCommand(versionCmd, serveCmd, healthzCmd, providersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
