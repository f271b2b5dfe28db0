// Package pipeline runs the capture→transcribe→classify→generate→synthesize
// sequence for one turn and delivers the intermediate and final results to
// the session's connection.
package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/gramseva/vaani/pkg/ai/intent"
	"github.com/gramseva/vaani/pkg/ai/stt"
	"github.com/gramseva/vaani/pkg/ai/tts"
	"github.com/gramseva/vaani/pkg/audio"
	"github.com/gramseva/vaani/pkg/lookup"
	"github.com/gramseva/vaani/pkg/protocol"
	"github.com/gramseva/vaani/pkg/session"
)

// Stage names, as reported in Outcome.Stages.
const (
	StageTranscription  = "transcription"
	StageClassification = "classification"
	StageGeneration     = "generation"
	StageSynthesis      = "synthesis"
)

// StageStatus records how one stage ended.
type StageStatus string

const (
	StatusOK      StageStatus = "ok"
	StatusSkipped StageStatus = "skipped"
	StatusFailed  StageStatus = "failed"
)

// Outcome is the full result of one pipeline run.
type Outcome struct {
	Transcript *stt.Transcription
	Intent     *intent.Result
	Reply      string
	Audio      []byte
	Format     string
	Stages     map[string]StageStatus
}

// TurnRecorder persists completed turns outside the session. Persistence
// failures never fail a turn.
type TurnRecorder interface {
	Append(ctx context.Context, sessionID string, t session.Turn) error
}

// ResponseGenerator resolves (intent, language, context) to a reply string.
type ResponseGenerator interface {
	Generate(label, language string, ctx map[string]any) string
}

// Config wires the coordinator's providers.
type Config struct {
	Transcriber stt.Transcriber
	Classifier  intent.Classifier
	Generator   ResponseGenerator
	Synthesizer tts.Synthesizer // optional: nil disables synthesis
	Lookup      *lookup.Client  // optional: nil disables enrichment
	Recorder    TurnRecorder    // optional: nil disables persistence

	// ProviderTimeout bounds each external provider call. Zero means 5s.
	ProviderTimeout time.Duration

	// AudioFormat describes the PCM clients stream. Zero value means
	// audio.DefaultFormat.
	AudioFormat audio.Format

	Logger *slog.Logger
}

// Coordinator executes turns. It is stateless across turns and safe for use
// by many sessions concurrently.
type Coordinator struct {
	transcriber stt.Transcriber
	classifier  intent.Classifier
	generator   ResponseGenerator
	synthesizer tts.Synthesizer
	lookup      *lookup.Client
	recorder    TurnRecorder
	timeout     time.Duration
	format      audio.Format
	logger      *slog.Logger
	metrics     *Metrics
}

// New creates a coordinator. Transcriber, Classifier, and Generator are
// required.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Transcriber == nil {
		return nil, fmt.Errorf("transcriber is required")
	}
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 5 * time.Second
	}
	if cfg.AudioFormat == (audio.Format{}) {
		cfg.AudioFormat = audio.DefaultFormat
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Coordinator{
		transcriber: cfg.Transcriber,
		classifier:  cfg.Classifier,
		generator:   cfg.Generator,
		synthesizer: cfg.Synthesizer,
		lookup:      cfg.Lookup,
		recorder:    cfg.Recorder,
		timeout:     cfg.ProviderTimeout,
		format:      cfg.AudioFormat,
		logger:      cfg.Logger,
		metrics:     newMetrics(),
	}, nil
}

// RunTurn implements session.TurnRunner.
func (c *Coordinator) RunTurn(ctx context.Context, s *session.Session, in session.TurnInput) error {
	_, err := c.Execute(ctx, s, in)
	return err
}

// Execute runs one turn. The session is held in the processing state for the
// duration. An error return means the turn was abandoned before a reply; the
// client has already been told.
func (c *Coordinator) Execute(ctx context.Context, s *session.Session, in session.TurnInput) (*Outcome, error) {
	start := time.Now()
	c.metrics.turns.Add(1)

	s.SetState(session.StateProcessing)
	defer s.SetState(session.StateIdle)

	out := &Outcome{Stages: map[string]StageStatus{
		StageTranscription:  StatusSkipped,
		StageClassification: StatusSkipped,
		StageGeneration:     StatusSkipped,
		StageSynthesis:      StatusSkipped,
	}}

	text := in.Text
	language := s.Language()

	if in.Kind == session.TurnKindAudio {
		tr, err := c.transcribe(ctx, in.PCM, language)
		if err != nil {
			out.Stages[StageTranscription] = StatusFailed
			c.metrics.transcriptionFailures.Add(1)
			s.Notify(protocol.NewError("could not transcribe audio, please try again"))
			return out, fmt.Errorf("transcription failed: %w", err)
		}
		out.Transcript = tr
		out.Stages[StageTranscription] = StatusOK
		text = tr.Text

		s.Notify(protocol.NewOutbound(protocol.TypeTranscription, map[string]any{
			"text":       tr.Text,
			"confidence": tr.Confidence,
			"language":   tr.Language,
		}))
	}

	res := c.classify(ctx, text, language)
	out.Intent = res
	out.Stages[StageClassification] = StatusOK

	turnCtx := s.Context()
	if c.lookup != nil {
		for k, v := range c.lookup.Enrich(ctx, res.Intent, turnCtx) {
			turnCtx[k] = v
		}
	}

	out.Reply = c.generator.Generate(res.Intent, language, turnCtx)
	out.Stages[StageGeneration] = StatusOK

	turn := session.Turn{
		UserText:      text,
		AssistantText: out.Reply,
		Intent:        res.Intent,
		Timestamp:     time.Now(),
	}
	s.AppendTurn(turn)
	if c.recorder != nil {
		if err := c.recorder.Append(ctx, s.ID, turn); err != nil {
			c.logger.Warn("failed to persist turn",
				slog.String("session_id", s.ID),
				slog.String("error", err.Error()))
		}
	}

	s.Notify(protocol.NewOutbound(protocol.TypeIntentProcessed, map[string]any{
		"intent":     res.Intent,
		"confidence": res.Confidence,
		"response":   out.Reply,
		"language":   language,
		"source":     string(res.Source),
	}))

	c.synthesize(ctx, s, out, language)

	c.metrics.lastTurnMillis.Set(float64(time.Since(start).Milliseconds()))
	c.logger.Info("turn completed",
		slog.String("session_id", s.ID),
		slog.String("intent", res.Intent),
		slog.String("language", language),
		slog.Duration("duration", time.Since(start)))

	return out, nil
}

func (c *Coordinator) transcribe(ctx context.Context, pcm []byte, language string) (*stt.Transcription, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	wav := audio.EncodeWAV(pcm, c.format)
	return c.transcriber.Transcribe(callCtx, wav, stt.TranscribeConfig{
		Language:   language,
		SampleRate: c.format.SampleRate,
	})
}

// classify never fails a turn: a classifier error degrades to the unknown
// intent so the user still gets a reply.
func (c *Coordinator) classify(ctx context.Context, text, language string) *intent.Result {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.classifier.Classify(callCtx, text, language)
	if err != nil || res == nil {
		if err != nil {
			c.logger.Warn("classification failed, treating as unknown",
				slog.String("error", err.Error()))
		}
		return &intent.Result{
			Intent:     intent.IntentUnknown,
			Confidence: intent.UnknownConfidence,
			Language:   language,
			Source:     intent.SourceRules,
		}
	}
	return res
}

// synthesize attempts speech output for the reply. Failures degrade the turn
// to text-only: the reply has already been delivered via intent_processed.
func (c *Coordinator) synthesize(ctx context.Context, s *session.Session, out *Outcome, language string) {
	if c.synthesizer == nil {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	syn, err := c.synthesizer.Synthesize(callCtx, tts.SynthesizeRequest{
		Text:     out.Reply,
		Language: language,
	})
	if err != nil {
		out.Stages[StageSynthesis] = StatusFailed
		c.metrics.synthesisFailures.Add(1)
		c.logger.Warn("synthesis failed, delivering text only",
			slog.String("session_id", s.ID),
			slog.String("error", err.Error()))
		return
	}

	out.Audio = syn.Audio
	out.Format = syn.Format
	out.Stages[StageSynthesis] = StatusOK

	s.Notify(protocol.NewOutbound(protocol.TypeAudioResponse, map[string]any{
		"audio":      base64.StdEncoding.EncodeToString(syn.Audio),
		"format":     syn.Format,
		"sampleRate": syn.SampleRate,
		"text":       out.Reply,
		"language":   language,
	}))
}
