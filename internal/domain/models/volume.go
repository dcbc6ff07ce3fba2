package models

import "time"

// VolumeMode selects which cache slot and filter an aggregation uses.
type VolumeMode string

const (
	ModeRegular VolumeMode = "regular"
	ModeWhale   VolumeMode = "whale"
)

// ModeFor maps the whale flag to a mode.
func ModeFor(whale bool) VolumeMode {
	if whale {
		return ModeWhale
	}
	return ModeRegular
}

// IsWhale reports whether the mode filters out small trades.
func (m VolumeMode) IsWhale() bool { return m == ModeWhale }

// VolumeBucket holds one hour of aggregated swap volume.
// BucketStartMs is always a multiple of one hour.
type VolumeBucket struct {
	BucketStartMs int64   `json:"timestamp"`
	BuyVolumeUSD  float64 `json:"buy_volume_usd"`
	SellVolumeUSD float64 `json:"sell_volume_usd"`
	TradeCount    int     `json:"trade_count"`
}

// TotalVolumeUSD is buy plus sell volume.
func (b VolumeBucket) TotalVolumeUSD() float64 { return b.BuyVolumeUSD + b.SellVolumeUSD }

// IsEmpty reports a bucket with no classified volume.
func (b VolumeBucket) IsEmpty() bool { return b.BuyVolumeUSD == 0 && b.SellVolumeUSD == 0 }

// VolumeCacheEntry is one cached aggregation result.
type VolumeCacheEntry struct {
	Mode     VolumeMode     `json:"mode"`
	Buckets  []VolumeBucket `json:"buckets"`
	CachedAt int64          `json:"cached_at_ms"`
}

// CachedTime returns CachedAt as a time.
func (e VolumeCacheEntry) CachedTime() time.Time { return time.UnixMilli(e.CachedAt) }

// NetFlowPoint is buy minus sell volume for one bucket.
type NetFlowPoint struct {
	TimestampMs int64   `json:"timestamp"`
	NetFlowUSD  float64 `json:"net_flow_usd"`
}

// VolumeRatio is the buy/sell ratio view of a bucket.
type VolumeRatio struct {
	TimestampMs    int64   `json:"timestamp"`
	BuyVolumeUSD   float64 `json:"buy_volume_usd"`
	SellVolumeUSD  float64 `json:"sell_volume_usd"`
	TotalVolumeUSD float64 `json:"total_volume_usd"`
	Ratio          float64 `json:"ratio"`
	DisplayRatio   float64 `json:"display_ratio"`
	ExceededCap    bool    `json:"exceeded_cap"`
	TradeCount     int     `json:"trade_count"`
}
