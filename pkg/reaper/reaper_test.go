package reaper

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gramseva/vaani/pkg/protocol"
	"github.com/gramseva/vaani/pkg/session"
)

type noopNotifier struct{ closed bool }

func (n *noopNotifier) Send(protocol.Message) error { return nil }
func (n *noopNotifier) Close() error                { n.closed = true; return nil }

type noopRunner struct{}

func (noopRunner) RunTurn(context.Context, *session.Session, session.TurnInput) error { return nil }

func newTestManager(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.NewManager(session.Config{}, session.NewRegistry(), noopRunner{}, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	is := is.New(t)
	m := newTestManager(t)
	metrics := NewMetrics(prometheus.NewRegistry())
	r := New(Config{IdleTimeout: time.Minute}, m, metrics, slog.Default())

	n1, n2 := &noopNotifier{}, &noopNotifier{}
	m.CreateSession(n1)
	m.CreateSession(n2)
	is.Equal(m.Registry().Len(), 2)

	// Nothing is idle yet.
	is.Equal(r.Sweep(time.Now()), 0)
	is.Equal(m.Registry().Len(), 2)

	// Both sessions cross the threshold.
	evicted := r.Sweep(time.Now().Add(2 * time.Minute))
	is.Equal(evicted, 2)
	is.Equal(m.Registry().Len(), 0)
	is.True(n1.closed)
	is.True(n2.closed)

	is.Equal(testutil.ToFloat64(metrics.evictions), float64(2))
	is.Equal(testutil.ToFloat64(metrics.activeSessions), float64(0))
}

func TestSweepSparesActiveSessions(t *testing.T) {
	is := is.New(t)
	m := newTestManager(t)
	r := New(Config{IdleTimeout: 50 * time.Millisecond}, m, nil, slog.Default())

	idle := m.CreateSession(&noopNotifier{})
	active := m.CreateSession(&noopNotifier{})

	// Let both sessions age past the threshold, then the active one pings.
	time.Sleep(60 * time.Millisecond)
	m.Dispatch(context.Background(), active.ID, protocol.Message{Type: protocol.TypePing})

	evicted := r.Sweep(time.Now())
	is.Equal(evicted, 1)
	_, stillThere := m.Registry().Get(active.ID)
	is.True(stillThere)
	_, present := m.Registry().Get(idle.ID)
	is.True(!present)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	m := newTestManager(t)
	r := New(Config{IdleTimeout: time.Minute, Interval: 5 * time.Millisecond}, m, nil, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}
