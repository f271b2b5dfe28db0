package protocol

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewOutboundStampsTimestamp(t *testing.T) {
	before := time.Now().UnixMilli()
	msg := NewOutbound(TypePong, nil)
	after := time.Now().UnixMilli()

	if msg.Type != TypePong {
		t.Errorf("Type = %q, want %q", msg.Type, TypePong)
	}
	if msg.Timestamp < before || msg.Timestamp > after {
		t.Errorf("Timestamp = %d, want between %d and %d", msg.Timestamp, before, after)
	}
}

func TestNewError(t *testing.T) {
	msg := NewError("transcription failed")

	if msg.Type != TypeError {
		t.Errorf("Type = %q, want %q", msg.Type, TypeError)
	}
	text, ok := String(msg.Data, "message")
	if !ok || text != "transcription failed" {
		t.Errorf("message = %q, ok = %v", text, ok)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	raw := `{"type":"voice_command","data":{"text":"mausam batao","language":"hi"}}`

	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if msg.Type != TypeVoiceCommand {
		t.Errorf("Type = %q, want %q", msg.Type, TypeVoiceCommand)
	}
	if text, _ := String(msg.Data, "text"); text != "mausam batao" {
		t.Errorf("text = %q", text)
	}
	if lang, _ := String(msg.Data, "language"); lang != "hi" {
		t.Errorf("language = %q", lang)
	}
}

func TestFieldAccessors(t *testing.T) {
	data := map[string]any{
		"language": "hi",
		"context":  map[string]any{"district": "Nashik"},
		"count":    3,
	}

	if _, ok := String(data, "count"); ok {
		t.Error("String() should reject non-string fields")
	}
	if _, ok := String(nil, "language"); ok {
		t.Error("String() should handle nil payloads")
	}
	ctx, ok := Map(data, "context")
	if !ok || ctx["district"] != "Nashik" {
		t.Errorf("Map() = %v, ok = %v", ctx, ok)
	}
}
