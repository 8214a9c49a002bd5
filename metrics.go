package lockhash

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

type metrics struct {
	registry *prometheus.Registry

	runDuration *prometheus.HistogramVec
	missing     *prometheus.GaugeVec
	lookups     *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lockhash",
				Subsystem: "run",
				Name:      "duration_seconds",
				Help:      "insert phase durations",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2.0, 20),
			}, []string{"kind"}),
		missing: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "lockhash",
				Name:      "missing_entries",
				Help:      "keys absent or wrong after the last run",
			}, []string{"kind"}),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lockhash",
				Subsystem: "reader",
				Name:      "lookups_total",
				Help:      "lookups issued by concurrent readers during insert phases",
			}, []string{"kind", "result"}),
	}
	m.registry.MustRegister(m.runDuration, m.missing, m.lookups)
	return m
}

func (m *metrics) observe(r *Result) {
	kind := r.Kind.String()
	m.runDuration.WithLabelValues(kind).Observe(r.Elapsed.Seconds())
	m.missing.WithLabelValues(kind).Set(float64(r.MissingCount()))
	if r.Reads.Hits+r.Reads.Misses > 0 {
		m.lookups.WithLabelValues(kind, "hit").Add(float64(r.Reads.Hits))
		m.lookups.WithLabelValues(kind, "miss").Add(float64(r.Reads.Misses))
	}
}

// write dumps every metric family in the Prometheus text format.
func (m *metrics) write(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
