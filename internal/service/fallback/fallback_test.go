package fallback

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EthFlow/internal/domain/models"
	"EthFlow/internal/domain/repository"
	"EthFlow/internal/services/flow"
	applogger "EthFlow/pkg/logger"
	"EthFlow/pkg/metrics"
)

var fixedNow = time.Date(2024, 1, 2, 15, 42, 0, 0, time.UTC)

func nowFn() time.Time { return fixedNow }

func TestVolumeGenerator_Regular(t *testing.T) {
	g := NewVolumeGenerator(rand.New(rand.NewSource(7)), 500_000, nowFn)
	buckets := g.Generate(false)

	require.Len(t, buckets, 24)
	current := flow.FloorHour(fixedNow.UnixMilli())
	assert.Equal(t, current, buckets[23].BucketStartMs)
	assert.Equal(t, current-23*flow.HourMs, buckets[0].BucketStartMs)
	for _, b := range buckets {
		assert.Zero(t, b.BucketStartMs%flow.HourMs)
		assert.GreaterOrEqual(t, b.TradeCount, minSwapsPerHour)
		assert.Less(t, b.TradeCount, maxSwapsPerHour)
		assert.Greater(t, b.BuyVolumeUSD, 0.0)
		assert.Greater(t, b.SellVolumeUSD, 0.0)
		assert.GreaterOrEqual(t, b.TotalVolumeUSD(), float64(b.TradeCount)*minSwapUSD)
	}
}

func TestVolumeGenerator_WhaleFiltersSmallSwaps(t *testing.T) {
	g := NewVolumeGenerator(rand.New(rand.NewSource(7)), 500_000, nowFn)
	regular := g.Generate(false)

	g = NewVolumeGenerator(rand.New(rand.NewSource(7)), 500_000, nowFn)
	whale := g.Generate(true)

	require.NotEmpty(t, whale)
	require.Len(t, regular, len(whale))
	for i := range whale {
		assert.Less(t, whale[i].TradeCount, regular[i].TradeCount)
		assert.GreaterOrEqual(t, whale[i].TotalVolumeUSD(), float64(whale[i].TradeCount)*500_000)
	}
}

func TestVolumeGenerator_HighThresholdYieldsNothing(t *testing.T) {
	g := NewVolumeGenerator(rand.New(rand.NewSource(1)), maxSwapUSD, nowFn)
	assert.Empty(t, g.Generate(true))
}

type stubFeed struct {
	current models.CurrentPrice
	points  []models.PricePoint
	err     error
}

func (s *stubFeed) GetCurrentPrice(context.Context) (models.CurrentPrice, error) {
	return s.current, s.err
}

func (s *stubFeed) GetHistoricalPrices(context.Context, int) ([]models.PricePoint, error) {
	return s.points, s.err
}

func newFeed(inner repository.PriceFeed, enabled bool) *PriceFeed {
	return NewPriceFeed(inner, enabled, rand.New(rand.NewSource(3)), metrics.Nop{}, applogger.Nop(), nowFn)
}

func TestPriceFeed_Live(t *testing.T) {
	inner := &stubFeed{
		current: models.CurrentPrice{Current: 3500, High24h: 3600, Low24h: 3400},
		points:  []models.PricePoint{{TimestampMs: 1, Price: 3490}, {TimestampMs: 2, Price: 3510}},
	}
	p := newFeed(inner, true)

	cur, meta, err := p.CurrentPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SourceLive, meta.Source)
	assert.Equal(t, 3500.0, cur.Current)

	pts, meta, err := p.HistoricalPrices(context.Background(), 24)
	require.NoError(t, err)
	assert.False(t, meta.IsFallback())
	assert.Equal(t, inner.points, pts)
}

func TestPriceFeed_FallbackOnRateLimit(t *testing.T) {
	inner := &stubFeed{current: models.CurrentPrice{Current: 4000}}
	p := newFeed(inner, true)

	// seed the last known price from a live call
	_, _, err := p.CurrentPrice(context.Background())
	require.NoError(t, err)

	inner.err = fmt.Errorf("coingecko: %w", repository.ErrRateLimited)
	pts, meta, err := p.HistoricalPrices(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, meta.Source)
	assert.True(t, meta.RateLimited)
	assert.NotEmpty(t, meta.Error)

	require.Len(t, pts, 25)
	end := flow.FloorHour(fixedNow.UnixMilli())
	assert.Equal(t, end, pts[24].TimestampMs)
	assert.Equal(t, 4000.0, pts[24].Price)
	for i := 1; i < len(pts); i++ {
		assert.Equal(t, flow.HourMs, pts[i].TimestampMs-pts[i-1].TimestampMs)
		assert.InEpsilon(t, pts[i-1].Price, pts[i].Price, 0.01)
	}
}

func TestPriceFeed_FallbackCurrent(t *testing.T) {
	p := newFeed(&stubFeed{err: repository.ErrUpstreamUnavailable}, true)

	cur, meta, err := p.CurrentPrice(context.Background())
	require.NoError(t, err)
	assert.True(t, meta.IsFallback())
	assert.False(t, meta.RateLimited)
	assert.Equal(t, DefaultPrice, cur.Current)
	assert.GreaterOrEqual(t, cur.High24h, cur.Current)
	assert.LessOrEqual(t, cur.Low24h, cur.Current)
}

func TestPriceFeed_Disabled(t *testing.T) {
	boom := errors.New("boom")
	p := newFeed(&stubFeed{err: boom}, false)

	_, meta, err := p.HistoricalPrices(context.Background(), 24)
	assert.ErrorIs(t, err, boom)
	assert.True(t, meta.IsFallback())
}

func TestSummarize(t *testing.T) {
	got := summarize([]models.PricePoint{{Price: 100}, {Price: 120}, {Price: 90}, {Price: 110}})
	assert.Equal(t, 110.0, got.Current)
	assert.Equal(t, 120.0, got.High24h)
	assert.Equal(t, 90.0, got.Low24h)
	assert.InDelta(t, 10.0, got.PriceChangePercentage24h, 1e-9)
	assert.Equal(t, models.CurrentPrice{}, summarize(nil))
}
