package history

import (
	"context"
	"sync"

	"github.com/gramseva/vaani/pkg/session"
)

// MemoryStore keeps history in process memory. Suitable for single-instance
// deployments and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	turns map[string][]session.Turn

	maxTurns int
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxTurns caps the number of turns retained per session; older turns are
// dropped first. Zero means unlimited.
func WithMaxTurns(n int) MemoryOption {
	return func(s *MemoryStore) {
		s.maxTurns = n
	}
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{turns: make(map[string][]session.Turn)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records one turn.
func (s *MemoryStore) Append(_ context.Context, sessionID string, t session.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.turns[sessionID], t)
	if s.maxTurns > 0 && len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.turns[sessionID] = turns
	return nil
}

// Recent returns up to limit turns, newest first.
func (s *MemoryStore) Recent(_ context.Context, sessionID string, limit int) ([]session.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.turns[sessionID]
	if !ok {
		return nil, ErrNotFound
	}

	n := len(turns)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]session.Turn, n)
	for i := 0; i < n; i++ {
		out[i] = turns[len(turns)-1-i]
	}
	return out, nil
}

// Clear removes a session's history.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, sessionID)
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
