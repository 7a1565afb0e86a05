// Package metrics holds the Prometheus collectors of the extraction engine.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tallyx"

// Collectors groups every metric the engine records. A nil *Collectors is
// valid and records nothing.
type Collectors struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	fallbacks      *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	exportFailures *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend request attempts by outcome.",
		}, []string{"backend", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of single backend request attempts.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"backend"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Reports answered by the secondary backend after the primary failed.",
		}, []string{"report"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_cache_lookups_total",
			Help:      "Ledger cache lookups by result.",
		}, []string{"result"}),
		exportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_section_failures_total",
			Help:      "Full-export sections that failed.",
		}, []string{"section"}),
	}
	reg.MustRegister(c.requests, c.duration, c.fallbacks, c.cacheLookups, c.exportFailures)
	return c
}

// ObserveRequest records one backend attempt.
func (c *Collectors) ObserveRequest(backend, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(backend, outcome).Inc()
	c.duration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// Fallback records a report served by the secondary backend.
func (c *Collectors) Fallback(report string) {
	if c == nil {
		return
	}
	c.fallbacks.WithLabelValues(report).Inc()
}

// CacheLookup records a ledger cache lookup result.
func (c *Collectors) CacheLookup(result string) {
	if c == nil {
		return
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// ExportFailure records a failed export section.
func (c *Collectors) ExportFailure(section string) {
	if c == nil {
		return
	}
	c.exportFailures.WithLabelValues(section).Inc()
}

// Sample is one gathered series. Histograms report their sample count.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers every series of g in name order.
func Snapshot(g prometheus.Gatherer) ([]Sample, error) {
	mfs, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}
	var out []Sample
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: make(map[string]string, len(m.GetLabel()))}
			for _, lp := range m.GetLabel() {
				s.Labels[lp.GetName()] = lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				s.Value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				s.Value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				s.Value = float64(m.GetHistogram().GetSampleCount())
			}
			out = append(out, s)
		}
	}
	return out, nil
}
