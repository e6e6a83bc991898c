// Package metrics exposes prometheus collectors for store activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "warcstore"

// Collector groups the store's prometheus collectors.
// A nil *Collector is valid and records nothing.
type Collector struct {
	RecordsAppended prometheus.Counter
	AppendErrors    *prometheus.CounterVec
	Rotations       prometheus.Counter
	CloseFailures   prometheus.Counter
	ActiveRecords   prometheus.Gauge
	WriteLatency    prometheus.Histogram
	BytesWritten    prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		RecordsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_appended_total",
			Help:      "Records successfully handed to a segment.",
		}),
		AppendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "append_errors_total",
			Help:      "Failed appends by error category.",
		}, []string{"category"}),
		Rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotations_total",
			Help:      "Segments opened by rotation.",
		}),
		CloseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_close_failures_total",
			Help:      "Retired segments that failed to close cleanly.",
		}),
		ActiveRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_segment_records",
			Help:      "Records counted against the active segment.",
		}),
		WriteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_duration_seconds",
			Help:      "Time spent serializing one record into its segment.",
			Buckets:   prometheus.DefBuckets,
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Bytes handed to segment sinks.",
		}),
	}

	reg.MustRegister(
		c.RecordsAppended, c.AppendErrors, c.Rotations, c.CloseFailures,
		c.ActiveRecords, c.WriteLatency, c.BytesWritten,
	)
	return c
}

func (c *Collector) ObserveAppend(bytes int64, took time.Duration) {
	if c == nil {
		return
	}
	c.RecordsAppended.Inc()
	c.BytesWritten.Add(float64(bytes))
	c.WriteLatency.Observe(took.Seconds())
}

func (c *Collector) ObserveError(category string) {
	if c == nil {
		return
	}
	c.AppendErrors.WithLabelValues(category).Inc()
}

func (c *Collector) ObserveRotation() {
	if c == nil {
		return
	}
	c.Rotations.Inc()
}

func (c *Collector) ObserveCloseFailure() {
	if c == nil {
		return
	}
	c.CloseFailures.Inc()
}

func (c *Collector) SetActiveRecords(n uint32) {
	if c == nil {
		return
	}
	c.ActiveRecords.Set(float64(n))
}
