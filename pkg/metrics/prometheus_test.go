package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"EthFlow/internal/domain/repository"
)

var (
	_ repository.Metrics = (*Recorder)(nil)
	_ repository.Metrics = Nop{}
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordFetch("coingecko", "ok")
	r.RecordFetch("coingecko", "ok")
	r.RecordFetch("uniswap", "rate_limited")
	r.RecordFallback("uniswap", "rate_limited")
	r.RecordCache("whale", true)
	r.RecordCache("whale", false)
	r.RecordDivergences("regular", 4)
	r.RecordLatency("dashboard", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetchesTotal.WithLabelValues("coingecko", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchesTotal.WithLabelValues("uniswap", "rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fallbacksTotal.WithLabelValues("uniswap", "rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheTotal.WithLabelValues("whale", "true")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.divergences.WithLabelValues("regular")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}

func TestNewWithRegistry_Isolated(t *testing.T) {
	assert.NotPanics(t, func() {
		NewWithRegistry(prometheus.NewRegistry())
		NewWithRegistry(prometheus.NewRegistry())
	})
}
