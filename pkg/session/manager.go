package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gramseva/vaani/pkg/audio"
	"github.com/gramseva/vaani/pkg/protocol"
)

// Config carries the manager's session policy.
type Config struct {
	// DefaultLanguage is assigned to new sessions.
	DefaultLanguage string

	// SupportedLanguages is the set accepted by set_language.
	SupportedLanguages []string

	// MaxAudioBytes caps the per-session audio buffer.
	MaxAudioBytes int
}

// Manager creates sessions, routes inbound protocol messages, and tears
// sessions down. One manager serves all connections.
type Manager struct {
	cfg       Config
	registry  *Registry
	runner    TurnRunner
	logger    *slog.Logger
	supported map[string]bool
}

// NewManager creates a manager. The runner executes pipeline turns; it must
// not be nil.
func NewManager(cfg Config, registry *Registry, runner TurnRunner, logger *slog.Logger) (*Manager, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("turn runner is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if len(cfg.SupportedLanguages) == 0 {
		cfg.SupportedLanguages = []string{cfg.DefaultLanguage}
	}
	if cfg.MaxAudioBytes <= 0 {
		cfg.MaxAudioBytes = audio.DefaultMaxBytes
	}

	supported := make(map[string]bool, len(cfg.SupportedLanguages))
	for _, lang := range cfg.SupportedLanguages {
		supported[lang] = true
	}

	return &Manager{
		cfg:       cfg,
		registry:  registry,
		runner:    runner,
		logger:    logger,
		supported: supported,
	}, nil
}

// Registry returns the manager's session registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// CreateSession registers a new session bound to the given connection and
// sends connection_established with the session id and server capabilities.
func (m *Manager) CreateSession(notifier Notifier) *Session {
	s := newSession(uuid.NewString(), m.cfg.DefaultLanguage, audio.NewBuffer(m.cfg.MaxAudioBytes), notifier)
	m.registry.Add(s)

	m.logger.Info("session created",
		slog.String("session_id", s.ID),
		slog.String("language", s.Language()),
		slog.Int("active", m.registry.Len()))

	s.Notify(protocol.NewOutbound(protocol.TypeConnectionEstablished, map[string]any{
		"sessionId": s.ID,
		"language":  s.Language(),
		"capabilities": map[string]any{
			"languages":  m.cfg.SupportedLanguages,
			"voiceInput": true,
			"textInput":  true,
		},
	}))
	return s
}

// CloseSession removes the session from the registry and releases its
// resources. Buffered audio is discarded without processing.
func (m *Manager) CloseSession(id, reason string) error {
	s, ok := m.registry.Remove(id)
	if !ok {
		return ErrSessionNotFound
	}

	m.logger.Info("session closed",
		slog.String("session_id", id),
		slog.String("reason", reason),
		slog.String("state", s.State().String()),
		slog.Int("turns", len(s.Conversation())))

	return s.Close()
}

// notify delivers an outbound message, tolerating delivery failures. A full
// or closed outbound buffer is the connection's problem to surface, not a
// dispatch error; the session itself stays healthy.
func (m *Manager) notify(s *Session, msg protocol.Message) error {
	if err := s.Notify(msg); err != nil {
		m.logger.Warn("outbound delivery failed",
			slog.String("session_id", s.ID),
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
	}
	return nil
}

// Dispatch handles one inbound message for a session. Handling is serialized
// per session: a message is fully processed, including any pipeline turn it
// triggers, before the next one starts. A non-nil error means the session no
// longer exists (ErrSessionNotFound or ErrSessionClosed); per-message problems
// are reported to the client as error messages instead.
func (m *Manager) Dispatch(ctx context.Context, sessionID string, msg protocol.Message) error {
	s, ok := m.registry.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	if s.Closed() {
		return ErrSessionClosed
	}
	s.Touch()

	switch msg.Type {
	case protocol.TypeSetLanguage:
		return m.handleSetLanguage(s, msg)
	case protocol.TypeSetContext:
		return m.handleSetContext(s, msg)
	case protocol.TypeVoiceCommand:
		return m.handleVoiceCommand(ctx, s, msg)
	case protocol.TypeStartRecording:
		return m.handleStartRecording(s)
	case protocol.TypeAudioChunk:
		return m.handleAudioChunk(s, msg)
	case protocol.TypeStopRecording:
		return m.handleStopRecording(ctx, s)
	case protocol.TypePing:
		return m.notify(s, protocol.NewOutbound(protocol.TypePong, nil))
	default:
		m.logger.Warn("unknown message type",
			slog.String("session_id", s.ID),
			slog.String("type", msg.Type))
		return m.notify(s, protocol.NewError(fmt.Sprintf("unknown message type: %s", msg.Type)))
	}
}

func (m *Manager) handleSetLanguage(s *Session, msg protocol.Message) error {
	lang, ok := protocol.String(msg.Data, "language")
	if !ok || lang == "" {
		return m.notify(s, protocol.NewError("set_language requires a language field"))
	}
	if !m.supported[lang] {
		return m.notify(s, protocol.NewError(fmt.Sprintf("unsupported language: %s", lang)))
	}

	s.SetLanguage(lang)
	return m.notify(s, protocol.NewOutbound(protocol.TypeAck, map[string]any{
		"action":   protocol.TypeSetLanguage,
		"language": lang,
	}))
}

func (m *Manager) handleSetContext(s *Session, msg protocol.Message) error {
	partial, ok := protocol.Map(msg.Data, "context")
	if !ok {
		return m.notify(s, protocol.NewError("set_context requires a context object"))
	}

	s.MergeContext(partial)
	return m.notify(s, protocol.NewOutbound(protocol.TypeAck, map[string]any{
		"action": protocol.TypeSetContext,
	}))
}

func (m *Manager) handleVoiceCommand(ctx context.Context, s *Session, msg protocol.Message) error {
	text, ok := protocol.String(msg.Data, "text")
	if !ok || text == "" {
		return m.notify(s, protocol.NewError("voice_command requires a text field"))
	}

	// Optional per-command overrides, applied before the turn runs.
	if lang, ok := protocol.String(msg.Data, "language"); ok && lang != "" {
		if !m.supported[lang] {
			return m.notify(s, protocol.NewError(fmt.Sprintf("unsupported language: %s", lang)))
		}
		s.SetLanguage(lang)
	}
	if partial, ok := protocol.Map(msg.Data, "context"); ok {
		s.MergeContext(partial)
	}

	return m.runTurn(ctx, s, TurnInput{Kind: TurnKindText, Text: text})
}

func (m *Manager) handleStartRecording(s *Session) error {
	if s.State() != StateIdle {
		return m.notify(s, protocol.NewError(
			fmt.Sprintf("cannot start recording while %s", s.State())))
	}

	s.Buffer().Reset()
	s.SetState(StateRecording)
	return m.notify(s, protocol.NewOutbound(protocol.TypeAck, map[string]any{
		"action": protocol.TypeStartRecording,
	}))
}

func (m *Manager) handleAudioChunk(s *Session, msg protocol.Message) error {
	if s.State() != StateRecording {
		return m.notify(s, protocol.NewError("audio chunk received while not recording"))
	}

	encoded, ok := protocol.String(msg.Data, "data")
	if !ok || encoded == "" {
		return m.notify(s, protocol.NewError("audio_chunk requires a data field"))
	}

	pcm, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return m.notify(s, protocol.NewError("malformed audio chunk"))
	}

	if err := s.Buffer().Append(pcm); err != nil {
		m.logger.Warn("audio buffer full",
			slog.String("session_id", s.ID),
			slog.Int("buffered", s.Buffer().Len()))
		return m.notify(s, protocol.NewError("audio buffer full; chunk discarded"))
	}
	return nil
}

func (m *Manager) handleStopRecording(ctx context.Context, s *Session) error {
	if s.State() != StateRecording {
		return m.notify(s, protocol.NewError("stop_recording received while not recording"))
	}

	pcm := s.Buffer().Bytes()
	s.Buffer().Reset()
	s.SetState(StateIdle)

	if len(pcm) == 0 {
		return m.notify(s, protocol.NewOutbound(protocol.TypeAck, map[string]any{
			"action": protocol.TypeStopRecording,
			"note":   "empty recording discarded",
		}))
	}

	return m.runTurn(ctx, s, TurnInput{Kind: TurnKindAudio, PCM: pcm})
}

func (m *Manager) runTurn(ctx context.Context, s *Session, in TurnInput) error {
	start := time.Now()
	err := m.runner.RunTurn(ctx, s, in)
	if err != nil {
		// The runner has already reported the failure to the client.
		m.logger.Error("turn failed",
			slog.String("session_id", s.ID),
			slog.String("kind", in.Kind),
			slog.String("error", err.Error()))
		return nil
	}

	m.logger.Debug("turn completed",
		slog.String("session_id", s.ID),
		slog.String("kind", in.Kind),
		slog.Duration("duration", time.Since(start)))
	return nil
}
