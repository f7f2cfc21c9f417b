package goSession

import "sync/atomic"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess counts completed logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected or failed logins.
	MetricLoginFailure
	// MetricRegisterSuccess counts accepted registrations.
	MetricRegisterSuccess
	// MetricRegisterFailure counts rejected registrations.
	MetricRegisterFailure
	// MetricRefreshSuccess counts refresh calls that produced a new access token.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh calls that ended in logout.
	MetricRefreshFailure
	// MetricRefreshCoalesced counts callers that joined an in-flight refresh
	// instead of starting their own.
	MetricRefreshCoalesced
	// MetricRetryAttempt counts 401-driven request replays.
	MetricRetryAttempt
	// MetricRetryAbandoned counts 401s returned to the caller without a replay
	// (no refresh token, unreplayable body, or failed refresh).
	MetricRetryAbandoned
	// MetricProfileFetchSuccess counts profile fetches that stored a user.
	MetricProfileFetchSuccess
	// MetricProfileFetchFailure counts profile fetches that forced a logout.
	MetricProfileFetchFailure
	// MetricHydrate counts store hydrations at startup.
	MetricHydrate
	// MetricLogout counts logout transitions.
	MetricLogout

	metricIDCount
)

// MetricIDCount is the number of defined metric IDs.
const MetricIDCount = int(metricIDCount)

// paddedCounter keeps each counter on its own cache line so concurrent
// increments of different metrics do not contend.
type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

// Metrics holds atomic counters for session activity. The write path is
// allocation-free; when disabled all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].value.Add(1)
}

// Get returns the current value of the counter for id.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return m.counters[id].value.Load()
}

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies every counter into a fresh map.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return snapshot
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snapshot.Counters[id] = m.counters[id].value.Load()
	}
	return snapshot
}
