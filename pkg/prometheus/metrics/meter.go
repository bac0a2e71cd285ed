package metrics

import (
	"github.com/VictoriaMetrics/metrics"

	"github.com/memlabgo/memlab/pkg/prometheus/metrics/keyword"
)

// Meter counts the demo's lifecycle events. Counters are exposed on /metrics
// when the observation server is enabled and snapshotted into the end-of-run
// report either way.
type Meter interface {
	IncSequenceBuilds()
	IncWeakHits()
	IncWeakInvalidations()
	IncWeakRebuilds()
	IncLookasideHits()
	IncLookasideRebuilds()
	IncReleases()
	IncFallbackReclaims()
	IncForcedGCPasses()
	IncIOErrorsCaught()
	Snapshot() Snapshot
}

type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncSequenceBuilds() { metrics.GetOrCreateCounter(keyword.SequenceBuilds).Inc() }

func (m *Metrics) IncWeakHits() { metrics.GetOrCreateCounter(keyword.WeakHits).Inc() }

func (m *Metrics) IncWeakInvalidations() {
	metrics.GetOrCreateCounter(keyword.WeakInvalidations).Inc()
}

func (m *Metrics) IncWeakRebuilds() { metrics.GetOrCreateCounter(keyword.WeakRebuilds).Inc() }

func (m *Metrics) IncLookasideHits() { metrics.GetOrCreateCounter(keyword.LookasideHits).Inc() }

func (m *Metrics) IncLookasideRebuilds() {
	metrics.GetOrCreateCounter(keyword.LookasideRebuilds).Inc()
}

func (m *Metrics) IncReleases() { metrics.GetOrCreateCounter(keyword.Releases).Inc() }

func (m *Metrics) IncFallbackReclaims() {
	metrics.GetOrCreateCounter(keyword.FallbackReclaims).Inc()
}

func (m *Metrics) IncForcedGCPasses() { metrics.GetOrCreateCounter(keyword.ForcedGCPasses).Inc() }

func (m *Metrics) IncIOErrorsCaught() { metrics.GetOrCreateCounter(keyword.IOErrorsCaught).Inc() }

// Snapshot is a point-in-time view of every counter, serialized into the
// observations report and the /demo/state endpoint.
type Snapshot struct {
	SequenceBuilds    uint64 `json:"sequence_builds" yaml:"sequence_builds"`
	WeakHits          uint64 `json:"weak_hits" yaml:"weak_hits"`
	WeakInvalidations uint64 `json:"weak_invalidations" yaml:"weak_invalidations"`
	WeakRebuilds      uint64 `json:"weak_rebuilds" yaml:"weak_rebuilds"`
	LookasideHits     uint64 `json:"lookaside_hits" yaml:"lookaside_hits"`
	LookasideRebuilds uint64 `json:"lookaside_rebuilds" yaml:"lookaside_rebuilds"`
	Releases          uint64 `json:"releases" yaml:"releases"`
	FallbackReclaims  uint64 `json:"fallback_reclaims" yaml:"fallback_reclaims"`
	ForcedGCPasses    uint64 `json:"forced_gc_passes" yaml:"forced_gc_passes"`
	IOErrorsCaught    uint64 `json:"io_errors_caught" yaml:"io_errors_caught"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		SequenceBuilds:    metrics.GetOrCreateCounter(keyword.SequenceBuilds).Get(),
		WeakHits:          metrics.GetOrCreateCounter(keyword.WeakHits).Get(),
		WeakInvalidations: metrics.GetOrCreateCounter(keyword.WeakInvalidations).Get(),
		WeakRebuilds:      metrics.GetOrCreateCounter(keyword.WeakRebuilds).Get(),
		LookasideHits:     metrics.GetOrCreateCounter(keyword.LookasideHits).Get(),
		LookasideRebuilds: metrics.GetOrCreateCounter(keyword.LookasideRebuilds).Get(),
		Releases:          metrics.GetOrCreateCounter(keyword.Releases).Get(),
		FallbackReclaims:  metrics.GetOrCreateCounter(keyword.FallbackReclaims).Get(),
		ForcedGCPasses:    metrics.GetOrCreateCounter(keyword.ForcedGCPasses).Get(),
		IOErrorsCaught:    metrics.GetOrCreateCounter(keyword.IOErrorsCaught).Get(),
	}
}
