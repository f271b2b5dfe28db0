// Package audio provides the per-session audio chunk buffer and WAV encoding
// of buffered PCM for submission to the transcription provider.
package audio

import (
	"fmt"
	"sync"
)

// DefaultMaxBytes caps a session's audio buffer when no limit is configured:
// roughly five minutes of 16kHz mono 16-bit PCM.
const DefaultMaxBytes = 16000 * 2 * 60 * 5

// Buffer accumulates raw audio chunks in arrival order while a session is
// recording. It is safe for concurrent use, though dispatch serialization
// means a single session never appends concurrently.
type Buffer struct {
	mu       sync.Mutex
	chunks   [][]byte
	total    int
	maxBytes int
}

// NewBuffer creates a buffer capped at maxBytes. A zero or negative cap
// means unlimited.
func NewBuffer(maxBytes int) *Buffer {
	return &Buffer{maxBytes: maxBytes}
}

// Append adds one chunk to the buffer. The chunk is copied so callers may
// reuse their slice.
func (b *Buffer) Append(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxBytes > 0 && b.total+len(chunk) > b.maxBytes {
		return fmt.Errorf("audio buffer full: %d bytes buffered, cap %d", b.total, b.maxBytes)
	}

	copied := make([]byte, len(chunk))
	copy(copied, chunk)
	b.chunks = append(b.chunks, copied)
	b.total += len(chunk)
	return nil
}

// Bytes concatenates the buffered chunks in arrival order.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]byte, 0, b.total)
	for _, chunk := range b.chunks {
		out = append(out, chunk...)
	}
	return out
}

// Len returns the total number of buffered bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// ChunkCount returns the number of buffered chunks.
func (b *Buffer) ChunkCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// Reset discards all buffered audio.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = nil
	b.total = 0
}
