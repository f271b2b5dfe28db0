// Package session owns the set of live client connections: per-connection
// state machines, audio buffers, conversation history, and the manager that
// routes inbound protocol messages to pipeline work.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gramseva/vaani/pkg/audio"
	"github.com/gramseva/vaani/pkg/protocol"
)

var (
	// ErrSessionNotFound is returned when a session id is not registered.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned when delivering to a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// State is the session state machine position.
type State int32

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Turn is one request/response exchange. Immutable once appended.
type Turn struct {
	UserText      string    `json:"userText"`
	AssistantText string    `json:"assistantText"`
	Intent        string    `json:"intent"`
	Timestamp     time.Time `json:"timestamp"`
}

// Notifier delivers outbound messages to a session's connection. The
// coordinator holds this capability for the duration of one turn; it never
// touches the connection directly.
type Notifier interface {
	Send(msg protocol.Message) error
	Close() error
}

// Session is the server-side state for one client connection.
type Session struct {
	ID string

	// dispatchMu serializes message handling and pipeline execution for
	// this session. Two messages for one session are never processed in an
	// overlapping fashion.
	dispatchMu sync.Mutex

	state        atomic.Int32
	lastActivity atomic.Int64 // unix nanoseconds
	closed       atomic.Bool

	mu           sync.RWMutex // guards language, context, conversation
	language     string
	context      map[string]any
	conversation []Turn

	buffer   *audio.Buffer
	notifier Notifier
}

func newSession(id, language string, buffer *audio.Buffer, notifier Notifier) *Session {
	s := &Session{
		ID:       id,
		language: language,
		context:  make(map[string]any),
		buffer:   buffer,
		notifier: notifier,
	}
	s.state.Store(int32(StateIdle))
	s.Touch()
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// SetState atomically updates the state.
func (s *Session) SetState(state State) {
	s.state.Store(int32(state))
}

// Language returns the session's working language.
func (s *Session) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetLanguage updates the working language. Validation happens in the
// manager; this is a plain field update.
func (s *Session) SetLanguage(language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = language
}

// Context returns a copy of the session context.
func (s *Session) Context() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.context))
	for k, v := range s.context {
		out[k] = v
	}
	return out
}

// MergeContext shallow-merges keys into the session context. Existing keys
// not present in partial are preserved.
func (s *Session) MergeContext(partial map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range partial {
		s.context[k] = v
	}
}

// AppendTurn appends one turn to the conversation. The conversation is
// append-only and never reordered.
func (s *Session) AppendTurn(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = append(s.conversation, t)
}

// Conversation returns a copy of the conversation history.
func (s *Session) Conversation() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Turn, len(s.conversation))
	copy(out, s.conversation)
	return out
}

// Buffer returns the session's audio buffer.
func (s *Session) Buffer() *audio.Buffer {
	return s.buffer
}

// Touch updates the last-activity timestamp.
func (s *Session) Touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// LastActivity returns the time of the most recent inbound message.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// Notify delivers an outbound message to the session's connection. Messages
// for a closed session are dropped: a late pipeline result must not reach a
// connection that is already gone.
func (s *Session) Notify(msg protocol.Message) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	return s.notifier.Send(msg)
}

// Close marks the session closed, discards buffered audio without processing
// it, and releases the connection. Reachable from any state.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.buffer.Reset()
	return s.notifier.Close()
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// TurnInput is the input to one pipeline run.
type TurnInput struct {
	Kind string // TurnKindText or TurnKindAudio
	Text string // text path
	PCM  []byte // audio path: raw buffered PCM
}

// Turn input kinds.
const (
	TurnKindText  = "text"
	TurnKindAudio = "audio"
)

// TurnRunner executes one pipeline turn for a session. The implementation
// must not retain the session beyond the call.
type TurnRunner interface {
	RunTurn(ctx context.Context, s *Session, in TurnInput) error
}
