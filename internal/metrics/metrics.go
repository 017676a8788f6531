// Package metrics exposes Prometheus counters for engine activity.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quizmind"

// Metrics holds the engine's collectors. A nil *Metrics records nothing.
type Metrics struct {
	hints           *prometheus.CounterVec
	adaptations     *prometheus.CounterVec
	scores          prometheus.Histogram
	flushes         prometheus.Counter
	flushedEvents   prometheus.Counter
	flushFailures   prometheus.Counter
	recommendations prometheus.Counter
	persistFailures *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		hints: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hints_total",
			Help:      "Hints generated, by strategy.",
		}, []string{"strategy"}),
		adaptations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "difficulty_adaptations_total",
			Help:      "Difficulty adaptations, by direction.",
		}, []string{"direction"}),
		scores: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "performance_score",
			Help:      "Composite performance scores.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		flushes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_flushes_total",
			Help:      "Successful analytics flushes.",
		}),
		flushedEvents: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_events_flushed_total",
			Help:      "Analytics events written to the sink.",
		}),
		flushFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_flush_failures_total",
			Help:      "Failed analytics flushes.",
		}),
		recommendations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Content items recommended.",
		}),
		persistFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Failed store operations, by operation.",
		}, []string{"op"}),
	}
}

func (m *Metrics) HintGenerated(strategy string) {
	if m == nil {
		return
	}
	m.hints.WithLabelValues(strategy).Inc()
}

func (m *Metrics) Adapted(direction string) {
	if m == nil {
		return
	}
	m.adaptations.WithLabelValues(direction).Inc()
}

func (m *Metrics) Scored(score float64) {
	if m == nil {
		return
	}
	m.scores.Observe(score)
}

func (m *Metrics) Flushed(n int) {
	if m == nil {
		return
	}
	m.flushes.Inc()
	m.flushedEvents.Add(float64(n))
}

func (m *Metrics) FlushFailed(error) {
	if m == nil {
		return
	}
	m.flushFailures.Inc()
}

func (m *Metrics) Recommended(n int) {
	if m == nil {
		return
	}
	m.recommendations.Add(float64(n))
}

func (m *Metrics) PersistFailed(op string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(op).Inc()
}

// Sample is one flattened metric value.
type Sample struct {
	Name  string
	Value float64
}

// Snapshot gathers every metric from g as name{labels} samples sorted by
// name. Histograms report their sample count and sum.
func Snapshot(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				out = append(out, Sample{Name: name, Value: m.GetCounter().GetValue()})
			case m.GetGauge() != nil:
				out = append(out, Sample{Name: name, Value: m.GetGauge().GetValue()})
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				out = append(out,
					Sample{Name: name + "_count", Value: float64(h.GetSampleCount())},
					Sample{Name: name + "_sum", Value: h.GetSampleSum()},
				)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
