package repository

import (
	"context"

	"EthFlow/internal/domain/models"
)

// PriceFeed supplies ETH/USD quotes.
type PriceFeed interface {
	GetCurrentPrice(ctx context.Context) (models.CurrentPrice, error)
	GetHistoricalPrices(ctx context.Context, rangeHours int) ([]models.PricePoint, error)
}

// TradeFeed supplies raw swaps for a pool. Callers needing more than limit must paginate.
type TradeFeed interface {
	GetRecentTrades(ctx context.Context, poolID string, sinceEpochSeconds int64, limit int) ([]models.RawTrade, error)
}

// VolumeCache memoizes aggregated buckets per mode. Each mode is an independent slot.
type VolumeCache interface {
	// Get returns the stored entry regardless of age.
	Get(ctx context.Context, mode models.VolumeMode) (models.VolumeCacheEntry, bool)
	// Put overwrites the slot and stamps the current time.
	Put(ctx context.Context, mode models.VolumeMode, buckets []models.VolumeBucket) error
	// IsValid reports whether the slot exists and is younger than the TTL.
	IsValid(ctx context.Context, mode models.VolumeMode) bool
}

type Metrics interface {
	RecordFetch(feed, outcome string)
	RecordFallback(feed, reason string)
	RecordCache(mode string, hit bool)
	RecordDivergences(mode string, n int)
	RecordLatency(op string, seconds float64)
}
