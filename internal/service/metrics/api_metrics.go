package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ethflow",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of dashboard endpoints",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ethflow",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by dashboard endpoint and kind",
		},
		[]string{"endpoint", "kind"},
	)

	RefreshRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ethflow",
			Subsystem: "api",
			Name:      "refresh_rejected_total",
			Help:      "Forced refreshes rejected by the per-client limiter",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors, RefreshRejected)
	})
}
