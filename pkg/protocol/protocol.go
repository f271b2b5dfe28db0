// Package protocol defines the message envelope exchanged over the client
// WebSocket connection and the taxonomy of inbound and outbound message types.
package protocol

import "time"

// Inbound message types sent by clients.
const (
	TypeSetLanguage    = "set_language"
	TypeSetContext     = "set_context"
	TypeVoiceCommand   = "voice_command"
	TypeStartRecording = "start_recording"
	TypeAudioChunk     = "audio_chunk"
	TypeStopRecording  = "stop_recording"
	TypePing           = "ping"
)

// Outbound message types sent by the server.
const (
	TypeConnectionEstablished = "connection_established"
	TypeAck                   = "ack"
	TypeTranscription         = "transcription"
	TypeIntentProcessed       = "intent_processed"
	TypeAudioResponse         = "audio_response"
	TypePong                  = "pong"
	TypeError                 = "error"
)

// Message is the wire envelope. Inbound messages carry a type and an optional
// payload; outbound messages additionally carry a server timestamp in
// milliseconds since epoch.
type Message struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
}

// NewOutbound builds an outbound message stamped with the current server time.
func NewOutbound(msgType string, data map[string]any) Message {
	return Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewError builds an outbound error message.
func NewError(message string) Message {
	return NewOutbound(TypeError, map[string]any{"message": message})
}

// String extracts a string field from a message payload.
// Returns "" and false when the field is missing or not a string.
func String(data map[string]any, key string) (string, bool) {
	if data == nil {
		return "", false
	}
	s, ok := data[key].(string)
	return s, ok
}

// Map extracts a nested object field from a message payload.
func Map(data map[string]any, key string) (map[string]any, bool) {
	if data == nil {
		return nil, false
	}
	m, ok := data[key].(map[string]any)
	return m, ok
}
