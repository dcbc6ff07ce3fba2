package models

import "time"

// DataSource tells the client whether data came from the upstream or was synthesized.
type DataSource string

const (
	SourceLive     DataSource = "live"
	SourceFallback DataSource = "fallback"
)

// FeedMeta describes where a feed result came from.
type FeedMeta struct {
	Source      DataSource `json:"source"`
	RateLimited bool       `json:"rate_limited"`
	Error       string     `json:"error,omitempty"`
}

// Live returns metadata for a successful upstream fetch.
func Live() FeedMeta { return FeedMeta{Source: SourceLive} }

// IsFallback reports whether the data is synthetic.
func (m FeedMeta) IsFallback() bool { return m.Source == SourceFallback }

// VolumeResult is the output of the volume chain.
type VolumeResult struct {
	Mode     VolumeMode     `json:"mode"`
	Buckets  []VolumeBucket `json:"buckets"`
	Cached   bool           `json:"cached"`
	CachedAt *time.Time     `json:"cached_at,omitempty"`
	FeedMeta
}

// NetFlowResult is the annotated combined series plus the metadata of both chains.
type NetFlowResult struct {
	Mode            VolumeMode      `json:"mode"`
	ToleranceMs     int64           `json:"tolerance_ms"`
	Points          []CombinedPoint `json:"points"`
	DivergenceCount int             `json:"divergence_count"`
	Price           FeedMeta        `json:"price"`
	Volume          FeedMeta        `json:"volume"`
}

// Dashboard is the full snapshot served to the presentation layer.
type Dashboard struct {
	GeneratedAt       time.Time         `json:"generated_at"`
	WhaleMode         bool              `json:"whale_mode"`
	WhaleThresholdUSD float64           `json:"whale_threshold_usd"`
	FilterDescription string            `json:"filter_description"`
	Current           *CurrentPrice     `json:"current,omitempty"`
	Prices            []PricePoint      `json:"prices"`
	Buckets           []VolumeBucket    `json:"buckets"`
	Combined          []CombinedPoint   `json:"combined"`
	Ratios            []VolumeRatio     `json:"ratios"`
	DivergenceCount   int               `json:"divergence_count"`
	PriceSource       DataSource        `json:"price_source"`
	VolumeSource      DataSource        `json:"volume_source"`
	RateLimited       bool              `json:"rate_limited"`
	Errors            map[string]string `json:"errors,omitempty"`
}

// PriceResult is the current quote plus where it came from.
type PriceResult struct {
	CurrentPrice
	FeedMeta
}

// PriceSeriesResult is the historical series plus where it came from.
type PriceSeriesResult struct {
	Hours  int          `json:"hours"`
	Points []PricePoint `json:"points"`
	FeedMeta
}

// RatioResult is the buy/sell ratio view of the volume chain.
type RatioResult struct {
	Mode   VolumeMode    `json:"mode"`
	Cap    float64       `json:"cap"`
	Ratios []VolumeRatio `json:"ratios"`
	FeedMeta
}
