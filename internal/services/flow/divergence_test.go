package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EthFlow/internal/domain/models"
)

func points(flows, prices []float64) []models.CombinedPoint {
	out := make([]models.CombinedPoint, len(flows))
	for i := range flows {
		out[i] = models.CombinedPoint{
			Timestamp:  time.UnixMilli(t0 + int64(i)*HourMs).UTC(),
			NetFlowUSD: flows[i],
			Price:      prices[i],
		}
	}
	return out
}

func TestNormalize(t *testing.T) {
	got := Normalize([]float64{200_000, -350_000, -75_000})
	require.Len(t, got, 3)
	assert.Equal(t, 1.0, got[0])
	assert.Equal(t, 0.0, got[1])
	assert.InDelta(t, 0.5, got[2], 1e-9)
}

func TestNormalize_Bounds(t *testing.T) {
	values := []float64{-3.7, 12, 0.1, 44.4, -19, 7}
	got := Normalize(values)

	lo, hi := got[0], got[0]
	for _, v := range got {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestNormalize_FlatSeries(t *testing.T) {
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, Normalize([]float64{7, 7, 7}))
	assert.Equal(t, []float64{0.5}, Normalize([]float64{-1}))
	assert.Empty(t, Normalize(nil))
}

func TestClassify(t *testing.T) {
	th := Thresholds{FlowDelta: 0.05, PriceDelta: 2}

	tests := []struct {
		name       string
		flowDelta  float64
		priceDelta float64
		want       models.DivergenceKind
	}{
		{"buying into falling price", 0.8, -10, models.DivergenceInflowPriceDown},
		{"selling into rising price", -0.6, 4, models.DivergenceOutflowPriceUp},
		{"both down", -1, -15, models.DivergenceNone},
		{"both up", 0.3, 5, models.DivergenceNone},
		{"flow delta at threshold", 0.05, -10, models.DivergenceNone},
		{"price delta at threshold", 0.9, -2, models.DivergenceNone},
		{"small flow move", 0.01, -50, models.DivergenceNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.flowDelta, tt.priceDelta, th))
		})
	}
}

func TestAnnotate_SameDirectionIsNotDivergence(t *testing.T) {
	pts := points([]float64{200_000, -350_000}, []float64{3000, 2985})

	got := Annotate(pts, Thresholds{FlowDelta: 0.05, PriceDelta: 2})
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].NormalizedNetFlow)
	assert.Equal(t, 0.0, got[1].NormalizedNetFlow)
	assert.False(t, got[0].Divergence)
	assert.False(t, got[1].Divergence)
}

func TestAnnotate_InflowWhilePriceDrops(t *testing.T) {
	// normalized flow goes 0.1 -> 0.9 -> 0 while price drops $10 then rises $5
	pts := points([]float64{-80, 0, -90, 10}, []float64{3000, 2990, 2995, 2995})

	got := Annotate(pts, Thresholds{FlowDelta: 0.05, PriceDelta: 2})
	require.Len(t, got, 4)
	assert.False(t, got[0].Divergence)

	assert.True(t, got[1].Divergence)
	assert.Equal(t, models.DivergenceInflowPriceDown, got[1].DivergenceKind)
	assert.Equal(t, "Divergence: High buying volume but price dropping", got[1].DivergenceMessage)

	assert.True(t, got[2].Divergence)
	assert.Equal(t, models.DivergenceOutflowPriceUp, got[2].DivergenceKind)
	assert.Equal(t, "Divergence: High selling volume but price rising", got[2].DivergenceMessage)

	// flat price
	assert.False(t, got[3].Divergence)
	assert.Equal(t, 2, CountDivergences(got))
}

func TestAnnotate_Idempotent(t *testing.T) {
	pts := points([]float64{5, -20, 40, 10, -7}, []float64{3000, 3010, 2990, 2999, 3020})
	th := Thresholds{FlowDelta: 0.05, PriceDelta: 2}

	once := Annotate(append([]models.CombinedPoint(nil), pts...), th)
	snapshot := append([]models.CombinedPoint(nil), once...)
	twice := Annotate(once, th)

	assert.Equal(t, snapshot, twice)
}

func TestAnnotate_ClearsStaleTags(t *testing.T) {
	pts := points([]float64{1, 1}, []float64{3000, 3000})
	pts[0].Divergence = true
	pts[0].DivergenceKind = models.DivergenceOutflowPriceUp
	pts[1].DivergenceMessage = "stale"

	got := Annotate(pts, Thresholds{FlowDelta: 0.05, PriceDelta: 2})
	for _, p := range got {
		assert.False(t, p.Divergence)
		assert.Equal(t, models.DivergenceNone, p.DivergenceKind)
		assert.Empty(t, p.DivergenceMessage)
		assert.Equal(t, 0.5, p.NormalizedNetFlow)
	}
}

func TestCombine(t *testing.T) {
	buckets := []models.VolumeBucket{
		{BucketStartMs: t0, BuyVolumeUSD: 100_000, SellVolumeUSD: 300_000},
		{BucketStartMs: t0 + HourMs, BuyVolumeUSD: 900_000, SellVolumeUSD: 100_000},
	}
	prices := []models.PricePoint{
		{TimestampMs: t0 + 60_000, Price: 3000},
		{TimestampMs: t0 + HourMs, Price: 2950},
	}

	got := Combine(buckets, prices, DefaultConfig())
	// the first bucket starts before the first price sample and is outside the overlap
	require.Len(t, got, 1)
	assert.Equal(t, 800_000.0, got[0].NetFlowUSD)
	assert.Equal(t, 2950.0, got[0].Price)
	assert.False(t, got[0].Divergence)

	prices[0].TimestampMs = t0
	got = Combine(buckets, prices, DefaultConfig())
	require.Len(t, got, 2)
	assert.Equal(t, models.DivergenceInflowPriceDown, got[1].DivergenceKind)
}
