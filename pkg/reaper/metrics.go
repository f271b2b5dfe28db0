package reaper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the reaper's Prometheus collectors.
type Metrics struct {
	activeSessions prometheus.Gauge
	evictions      prometheus.Counter
	sweeps         prometheus.Counter
}

// NewMetrics registers the reaper's collectors with reg. Pass a fresh
// registry in tests to avoid duplicate-registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vaani_active_sessions",
			Help: "Number of live sessions after the most recent sweep.",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaani_sessions_evicted_total",
			Help: "Total sessions evicted for idleness.",
		}),
		sweeps: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaani_reaper_sweeps_total",
			Help: "Total reaper sweeps performed.",
		}),
	}
}
