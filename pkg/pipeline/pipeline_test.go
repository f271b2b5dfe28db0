package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/matryer/is"

	"github.com/gramseva/vaani/pkg/ai/intent"
	sttfake "github.com/gramseva/vaani/pkg/ai/stt/fake"
	ttsfake "github.com/gramseva/vaani/pkg/ai/tts/fake"
	"github.com/gramseva/vaani/pkg/protocol"
	"github.com/gramseva/vaani/pkg/response"
	"github.com/gramseva/vaani/pkg/session"
)

// memNotifier records outbound messages in order.
type memNotifier struct {
	mu   sync.Mutex
	sent []protocol.Message
}

func (n *memNotifier) Send(msg protocol.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *memNotifier) Close() error { return nil }

func (n *memNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, m := range n.sent {
		out[i] = m.Type
	}
	return out
}

func (n *memNotifier) find(msgType string) (protocol.Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.sent {
		if m.Type == msgType {
			return m, true
		}
	}
	return protocol.Message{}, false
}

type memRecorder struct {
	mu    sync.Mutex
	turns []session.Turn
	err   error
}

func (r *memRecorder) Append(_ context.Context, _ string, t session.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.turns = append(r.turns, t)
	return nil
}

type harness struct {
	coord    *Coordinator
	manager  *session.Manager
	sess     *session.Session
	notifier *memNotifier
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	if cfg.Classifier == nil {
		cfg.Classifier = intent.NewRuleClassifier()
	}
	if cfg.Generator == nil {
		cfg.Generator = response.NewGenerator("en")
	}
	if cfg.Transcriber == nil {
		cfg.Transcriber = sttfake.NewFakeTranscriber("")
	}
	cfg.Logger = slog.Default()

	coord, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	m, err := session.NewManager(session.Config{
		DefaultLanguage:    "en",
		SupportedLanguages: []string{"en", "hi", "bn", "ta", "te", "mr"},
	}, session.NewRegistry(), coord, slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	n := &memNotifier{}
	return &harness{coord: coord, manager: m, sess: m.CreateSession(n), notifier: n}
}

// A Hindi text command flows through classification and generation and comes
// back as a Hindi reply with synthesized audio.
func TestTextTurnHindiWeather(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, Config{Synthesizer: ttsfake.NewFakeSynthesizer()})
	ctx := context.Background()

	h.manager.Dispatch(ctx, h.sess.ID, protocol.Message{
		Type: protocol.TypeSetLanguage,
		Data: map[string]any{"language": "hi"},
	})
	err := h.manager.Dispatch(ctx, h.sess.ID, protocol.Message{
		Type: protocol.TypeVoiceCommand,
		Data: map[string]any{"text": "मौसम बताओ"},
	})
	is.NoErr(err)

	msg, ok := h.notifier.find(protocol.TypeIntentProcessed)
	is.True(ok)
	label, _ := protocol.String(msg.Data, "intent")
	is.Equal(label, intent.IntentWeather)
	reply, _ := protocol.String(msg.Data, "response")
	is.True(reply != "")

	audioMsg, ok := h.notifier.find(protocol.TypeAudioResponse)
	is.True(ok)
	encoded, _ := protocol.String(audioMsg.Data, "audio")
	pcm, decErr := base64.StdEncoding.DecodeString(encoded)
	is.NoErr(decErr)
	is.True(len(pcm) > 0)

	turns := h.sess.Conversation()
	is.Equal(len(turns), 1)
	is.Equal(turns[0].Intent, intent.IntentWeather)
	is.Equal(h.sess.State(), session.StateIdle)
}

// An audio turn emits transcription before intent_processed.
func TestAudioTurnMessageOrder(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, Config{
		Transcriber: sttfake.NewFakeTranscriber("what is the weather today"),
	})

	_, err := h.coord.Execute(context.Background(), h.sess, session.TurnInput{
		Kind: session.TurnKindAudio,
		PCM:  []byte{1, 2, 3, 4},
	})
	is.NoErr(err)

	var trIdx, intIdx = -1, -1
	for i, typ := range h.notifier.types() {
		switch typ {
		case protocol.TypeTranscription:
			trIdx = i
		case protocol.TypeIntentProcessed:
			intIdx = i
		}
	}
	is.True(trIdx >= 0)
	is.True(intIdx > trIdx)

	turns := h.sess.Conversation()
	is.Equal(len(turns), 1)
	is.Equal(turns[0].UserText, "what is the weather today")
	is.Equal(turns[0].Intent, intent.IntentWeather)
}

// Transcription failure abandons the turn: error to the client, no
// conversation entry, session back to idle.
func TestTranscriptionFailureAbandonsTurn(t *testing.T) {
	is := is.New(t)
	failing := sttfake.NewFakeTranscriber("")
	failing.Err = errors.New("upstream 500")
	h := newHarness(t, Config{Transcriber: failing})

	out, err := h.coord.Execute(context.Background(), h.sess, session.TurnInput{
		Kind: session.TurnKindAudio,
		PCM:  []byte{1, 2},
	})
	is.True(err != nil)
	is.Equal(out.Stages[StageTranscription], StatusFailed)
	is.Equal(out.Stages[StageClassification], StatusSkipped)

	_, sawIntent := h.notifier.find(protocol.TypeIntentProcessed)
	is.True(!sawIntent)
	_, sawErr := h.notifier.find(protocol.TypeError)
	is.True(sawErr)
	is.Equal(len(h.sess.Conversation()), 0)
	is.Equal(h.sess.State(), session.StateIdle)
	is.Equal(h.coord.Metrics().TranscriptionFailures(), int64(1))
}

// Synthesis failure degrades to text-only: intent_processed is delivered, no
// audio_response follows, and the turn still lands in the conversation.
func TestSynthesisFailureDegradesToText(t *testing.T) {
	is := is.New(t)
	broken := ttsfake.NewFakeSynthesizer()
	broken.Err = errors.New("voice service down")
	h := newHarness(t, Config{Synthesizer: broken})

	out, err := h.coord.Execute(context.Background(), h.sess, session.TurnInput{
		Kind: session.TurnKindText,
		Text: "hello there",
	})
	is.NoErr(err)
	is.Equal(out.Stages[StageSynthesis], StatusFailed)

	_, sawIntent := h.notifier.find(protocol.TypeIntentProcessed)
	is.True(sawIntent)
	_, sawAudio := h.notifier.find(protocol.TypeAudioResponse)
	is.True(!sawAudio)
	is.Equal(len(h.sess.Conversation()), 1)
	is.Equal(h.coord.Metrics().SynthesisFailures(), int64(1))
}

// No synthesizer configured: synthesis is skipped, not failed.
func TestNoSynthesizerSkipsSynthesis(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, Config{})

	out, err := h.coord.Execute(context.Background(), h.sess, session.TurnInput{
		Kind: session.TurnKindText,
		Text: "namaste",
	})
	is.NoErr(err)
	is.Equal(out.Stages[StageSynthesis], StatusSkipped)
	is.Equal(out.Intent.Intent, intent.IntentGreeting)
}

// A classifier error degrades to the unknown intent instead of failing the
// turn.
func TestClassifierErrorDegradesToUnknown(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, Config{Classifier: failingClassifier{}})

	out, err := h.coord.Execute(context.Background(), h.sess, session.TurnInput{
		Kind: session.TurnKindText,
		Text: "anything",
	})
	is.NoErr(err)
	is.Equal(out.Intent.Intent, intent.IntentUnknown)
	is.True(out.Reply != "")
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string, string) (*intent.Result, error) {
	return nil, errors.New("model offline")
}

// Turns are handed to the recorder; recorder failures do not fail the turn.
func TestTurnPersistence(t *testing.T) {
	is := is.New(t)
	rec := &memRecorder{}
	h := newHarness(t, Config{Recorder: rec})

	_, err := h.coord.Execute(context.Background(), h.sess, session.TurnInput{
		Kind: session.TurnKindText,
		Text: "help",
	})
	is.NoErr(err)
	is.Equal(len(rec.turns), 1)
	is.Equal(rec.turns[0].Intent, intent.IntentHelp)

	rec.err = errors.New("redis down")
	_, err = h.coord.Execute(context.Background(), h.sess, session.TurnInput{
		Kind: session.TurnKindText,
		Text: "help",
	})
	is.NoErr(err)
	is.Equal(len(h.sess.Conversation()), 2)
}

// Session context flows into the generated reply.
func TestContextEnrichesReply(t *testing.T) {
	is := is.New(t)
	h := newHarness(t, Config{})

	h.sess.MergeContext(map[string]any{"weather": "heavy rain expected"})
	out, err := h.coord.Execute(context.Background(), h.sess, session.TurnInput{
		Kind: session.TurnKindText,
		Text: "what is the weather",
	})
	is.NoErr(err)
	is.Equal(out.Intent.Intent, intent.IntentWeather)
	is.True(strings.Contains(out.Reply, "heavy rain expected"))
}

func TestNewValidation(t *testing.T) {
	is := is.New(t)

	_, err := New(Config{})
	is.True(err != nil)

	_, err = New(Config{Transcriber: sttfake.NewFakeTranscriber("")})
	is.True(err != nil)
}
