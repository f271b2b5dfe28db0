// Package reaper evicts sessions that have been idle past a configured
// threshold so abandoned connections do not accumulate server state.
package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/gramseva/vaani/pkg/session"
)

// Config controls the sweep cadence and the idleness threshold.
type Config struct {
	// IdleTimeout is how long a session may go without an inbound message
	// before it is evicted. Zero means 5 minutes.
	IdleTimeout time.Duration

	// Interval is the sweep period. Zero means 30 seconds.
	Interval time.Duration
}

// Reaper periodically scans the session registry and closes idle sessions.
type Reaper struct {
	cfg     Config
	manager *session.Manager
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a reaper. Metrics may be nil.
func New(cfg Config, manager *session.Manager, metrics *Metrics, logger *slog.Logger) *Reaper {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{cfg: cfg, manager: manager, logger: logger, metrics: metrics}
}

// Run sweeps until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("session reaper started",
		slog.Duration("idle_timeout", r.cfg.IdleTimeout),
		slog.Duration("interval", r.cfg.Interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("session reaper stopped")
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Sweep evicts every session idle longer than the threshold and returns how
// many were evicted. Eviction is reachable from any session state.
func (r *Reaper) Sweep(now time.Time) int {
	evicted := 0
	for _, s := range r.manager.Registry().Snapshot() {
		idle := now.Sub(s.LastActivity())
		if idle < r.cfg.IdleTimeout {
			continue
		}

		if err := r.manager.CloseSession(s.ID, "idle timeout"); err != nil {
			continue
		}
		evicted++
		r.logger.Info("evicted idle session",
			slog.String("session_id", s.ID),
			slog.Duration("idle", idle))
	}

	if r.metrics != nil {
		r.metrics.sweeps.Inc()
		r.metrics.evictions.Add(float64(evicted))
		r.metrics.activeSessions.Set(float64(r.manager.Registry().Len()))
	}
	return evicted
}
