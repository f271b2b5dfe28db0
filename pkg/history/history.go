// Package history persists completed turns outside the session so transcripts
// survive disconnects. Two drivers are provided: an in-process memory store
// and a Redis-backed store.
package history

import (
	"context"
	"errors"

	"github.com/gramseva/vaani/pkg/session"
)

// ErrNotFound is returned when a session has no persisted history.
var ErrNotFound = errors.New("history: session not found")

// Store persists per-session conversation turns.
type Store interface {
	// Append records one completed turn for a session.
	Append(ctx context.Context, sessionID string, t session.Turn) error

	// Recent returns up to limit turns for a session, newest first. A limit
	// of zero or less returns all turns.
	Recent(ctx context.Context, sessionID string, limit int) ([]session.Turn, error)

	// Clear removes a session's history.
	Clear(ctx context.Context, sessionID string) error

	// Close releases the store's resources.
	Close() error
}
