package fallback

import (
	"math/rand"
	"sync"
	"time"

	"EthFlow/internal/domain/models"
	"EthFlow/internal/services/flow"
)

const (
	hours           = 24
	minSwapsPerHour = 200
	maxSwapsPerHour = 500 // exclusive
	minSwapUSD      = 5_000
	maxSwapUSD      = 1_500_000
)

// VolumeGenerator synthesizes a day of pool activity when the trade feed is down.
// The output goes through the same bucketing as live data, so whale filtering and
// hour alignment behave identically. It is never cached.
type VolumeGenerator struct {
	mu        sync.Mutex
	rnd       *rand.Rand
	threshold float64
	now       func() time.Time
}

func NewVolumeGenerator(rnd *rand.Rand, whaleThresholdUSD float64, now func() time.Time) *VolumeGenerator {
	if now == nil {
		now = time.Now
	}
	return &VolumeGenerator{rnd: rnd, threshold: whaleThresholdUSD, now: now}
}

// Generate returns up to 24 hourly buckets ending at the current hour.
// Hours without volume after filtering are omitted.
func (g *VolumeGenerator) Generate(whaleMode bool) []models.VolumeBucket {
	return flow.Bucketize(g.trades(), whaleMode, g.threshold)
}

func (g *VolumeGenerator) trades() []models.RawTrade {
	g.mu.Lock()
	defer g.mu.Unlock()

	current := flow.FloorHour(g.now().UnixMilli())
	trades := make([]models.RawTrade, 0, hours*(minSwapsPerHour+maxSwapsPerHour)/2)
	for i := hours - 1; i >= 0; i-- {
		hourStart := current - int64(i)*flow.HourMs
		n := minSwapsPerHour + g.rnd.Intn(maxSwapsPerHour-minSwapsPerHour)
		for j := 0; j < n; j++ {
			usd := minSwapUSD + g.rnd.Float64()*(maxSwapUSD-minSwapUSD)
			sec := (hourStart + g.rnd.Int63n(flow.HourMs)) / 1000
			trades = append(trades, syntheticTrade(sec, usd, g.rnd.Float64() > 0.5))
		}
	}
	return trades
}

func syntheticTrade(sec int64, usd float64, buy bool) models.RawTrade {
	const refPrice = 3000.0
	t := models.RawTrade{TimestampSeconds: sec, AmountUSD: usd}
	if buy {
		t.AmountQuoteIn, t.AmountBaseOut = usd, usd/refPrice
	} else {
		t.AmountBaseIn, t.AmountQuoteOut = usd/refPrice, usd
	}
	return t
}
