package recurrence

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.expansion()
	m.cacheMiss()
	m.emitted(3)
	m.emitted(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.expansions))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheMisses))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.occurrences))

	count, err := testutil.GatherAndCount(reg, "rrule_engine_occurrences_total", "rrule_engine_expansions_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Panics(t, func() { NewMetrics(reg) }, "registering twice must fail")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.expansion()
		m.cacheHit()
		m.cacheMiss()
		m.emitted(1)
	})

	unregistered := NewMetrics(nil)
	unregistered.cacheHit()
	assert.Equal(t, 1.0, testutil.ToFloat64(unregistered.cacheHits))
}
