package recurrence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the work done by an Engine. A nil *Metrics records nothing.
type Metrics struct {
	expansions  prometheus.Counter
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	occurrences prometheus.Counter
}

// NewMetrics creates the engine counters and registers them on reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rrule",
			Subsystem: "engine",
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		expansions:  counter("expansions_total", "Number of Expand calls"),
		cacheHits:   counter("cache_hits_total", "Number of results served from the cache"),
		cacheMisses: counter("cache_misses_total", "Number of results computed after a cache miss"),
		occurrences: counter("occurrences_total", "Number of occurrences returned by computed expansions"),
	}
}

func (m *Metrics) expansion() {
	if m != nil {
		m.expansions.Inc()
	}
}

func (m *Metrics) cacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) cacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Metrics) emitted(n int) {
	if m != nil {
		m.occurrences.Add(float64(n))
	}
}
