package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal   *prometheus.CounterVec
	fallbacksTotal *prometheus.CounterVec
	cacheTotal     *prometheus.CounterVec
	divergences    *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a Prometheus recorder on the default registry. Call it once per process.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder whose collectors are registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ethflow_feed_fetches_total",
				Help: "Upstream feed calls by feed and outcome",
			},
			[]string{"feed", "outcome"},
		),
		fallbacksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ethflow_fallbacks_total",
				Help: "Times synthetic data replaced an upstream feed",
			},
			[]string{"feed", "reason"},
		),
		cacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ethflow_volume_cache_requests_total",
				Help: "Volume cache lookups by mode and result",
			},
			[]string{"mode", "hit"},
		),
		divergences: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ethflow_divergences",
				Help: "Divergence points in the last computed series",
			},
			[]string{"mode"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ethflow_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records one upstream call.
func (r *Recorder) RecordFetch(feed, outcome string) {
	r.fetchesTotal.WithLabelValues(feed, outcome).Inc()
}

// RecordFallback records a switch to synthetic data.
func (r *Recorder) RecordFallback(feed, reason string) {
	r.fallbacksTotal.WithLabelValues(feed, reason).Inc()
}

// RecordCache records a volume cache lookup.
func (r *Recorder) RecordCache(mode string, hit bool) {
	r.cacheTotal.WithLabelValues(mode, strconv.FormatBool(hit)).Inc()
}

// RecordDivergences sets the divergence gauge for a mode.
func (r *Recorder) RecordDivergences(mode string, n int) {
	r.divergences.WithLabelValues(mode).Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordFetch(string, string)    {}
func (Nop) RecordFallback(string, string) {}
func (Nop) RecordCache(string, bool)      {}
func (Nop) RecordDivergences(string, int) {}
func (Nop) RecordLatency(string, float64) {}
