package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.HintGenerated("direct")
	m.Adapted("up")
	m.Scored(0.5)
	m.Flushed(3)
	m.FlushFailed(errors.New("x"))
	m.Recommended(2)
	m.PersistFailed("snapshot")
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.HintGenerated("socratic")
	m.HintGenerated("socratic")
	m.Adapted("up")
	m.Flushed(10)
	m.Flushed(4)
	m.FlushFailed(errors.New("disk full"))
	m.Recommended(5)
	m.PersistFailed("snapshot")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.hints.WithLabelValues("socratic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adaptations.WithLabelValues("up")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.flushes))
	assert.Equal(t, 14.0, testutil.ToFloat64(m.flushedEvents))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flushFailures))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.recommendations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures.WithLabelValues("snapshot")))
}

func TestSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.HintGenerated("direct")
	m.Scored(0.4)
	m.Scored(0.6)

	samples, err := Snapshot(reg)
	require.NoError(t, err)

	byName := make(map[string]float64)
	for _, s := range samples {
		byName[s.Name] = s.Value
	}
	assert.Equal(t, 1.0, byName[`quizmind_hints_total{strategy="direct"}`])
	assert.Equal(t, 2.0, byName["quizmind_performance_score_count"])
	assert.InDelta(t, 1.0, byName["quizmind_performance_score_sum"], 1e-9)
	assert.Contains(t, byName, "quizmind_analytics_flushes_total")

	for i := 1; i < len(samples); i++ {
		assert.LessOrEqual(t, samples[i-1].Name, samples[i].Name)
	}
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
