package history

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/gramseva/vaani/pkg/session"
)

func turn(user, label string, at time.Time) session.Turn {
	return session.Turn{
		UserText:      user,
		AssistantText: "reply to " + user,
		Intent:        label,
		Timestamp:     at,
	}
}

func TestMemoryStoreAppendAndRecent(t *testing.T) {
	is := is.New(t)
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	is.NoErr(s.Append(ctx, "s1", turn("first", "greeting", now)))
	is.NoErr(s.Append(ctx, "s1", turn("second", "weather", now.Add(time.Second))))
	is.NoErr(s.Append(ctx, "s2", turn("other", "help", now)))

	turns, err := s.Recent(ctx, "s1", 0)
	is.NoErr(err)
	is.Equal(len(turns), 2)
	is.Equal(turns[0].UserText, "second") // newest first
	is.Equal(turns[1].UserText, "first")

	turns, err = s.Recent(ctx, "s1", 1)
	is.NoErr(err)
	is.Equal(len(turns), 1)
	is.Equal(turns[0].UserText, "second")
}

func TestMemoryStoreUnknownSession(t *testing.T) {
	is := is.New(t)
	s := NewMemoryStore()

	_, err := s.Recent(context.Background(), "nope", 0)
	is.Equal(err, ErrNotFound)
}

func TestMemoryStoreClear(t *testing.T) {
	is := is.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	s.Append(ctx, "s1", turn("hello", "greeting", time.Now()))
	is.NoErr(s.Clear(ctx, "s1"))

	_, err := s.Recent(ctx, "s1", 0)
	is.Equal(err, ErrNotFound)
}

func TestMemoryStoreMaxTurns(t *testing.T) {
	is := is.New(t)
	s := NewMemoryStore(WithMaxTurns(2))
	ctx := context.Background()
	now := time.Now()

	s.Append(ctx, "s1", turn("one", "help", now))
	s.Append(ctx, "s1", turn("two", "help", now.Add(time.Second)))
	s.Append(ctx, "s1", turn("three", "help", now.Add(2*time.Second)))

	turns, err := s.Recent(ctx, "s1", 0)
	is.NoErr(err)
	is.Equal(len(turns), 2)
	is.Equal(turns[0].UserText, "three")
	is.Equal(turns[1].UserText, "two") // oldest dropped
}
