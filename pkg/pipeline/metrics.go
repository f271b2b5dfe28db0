package pipeline

import "expvar"

// Metrics tracks coordinator counters. Vars start unpublished so multiple
// coordinators (tests included) never collide in the global expvar namespace;
// a deployment exposes them on /debug/vars by calling Publish once.
type Metrics struct {
	turns                 *expvar.Int
	transcriptionFailures *expvar.Int
	synthesisFailures     *expvar.Int
	lastTurnMillis        *expvar.Float
}

func newMetrics() *Metrics {
	return &Metrics{
		turns:                 new(expvar.Int),
		transcriptionFailures: new(expvar.Int),
		synthesisFailures:     new(expvar.Int),
		lastTurnMillis:        new(expvar.Float),
	}
}

// Turns returns the number of pipeline runs started.
func (m *Metrics) Turns() int64 { return m.turns.Value() }

// TranscriptionFailures returns the number of abandoned audio turns.
func (m *Metrics) TranscriptionFailures() int64 { return m.transcriptionFailures.Value() }

// SynthesisFailures returns the number of turns degraded to text-only.
func (m *Metrics) SynthesisFailures() int64 { return m.synthesisFailures.Value() }

// Publish registers the counters in the process-wide expvar namespace under
// the given prefix, making them visible on /debug/vars. Call at most once per
// prefix; expvar panics on duplicate names.
func (m *Metrics) Publish(prefix string) {
	expvar.Publish(prefix+".turns", m.turns)
	expvar.Publish(prefix+".transcription_failures", m.transcriptionFailures)
	expvar.Publish(prefix+".synthesis_failures", m.synthesisFailures)
	expvar.Publish(prefix+".last_turn_millis", m.lastTurnMillis)
}

// Metrics exposes the coordinator's counters.
func (c *Coordinator) Metrics() *Metrics { return c.metrics }
