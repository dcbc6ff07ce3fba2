package flow

import "time"

// HourMs is the width of one volume bucket in milliseconds.
const HourMs int64 = 3_600_000

// Config carries every tunable of the pipeline. Stages take it explicitly so they
// can be tested in isolation.
type Config struct {
	WhaleThresholdUSD   float64
	ToleranceMs         int64
	FlowDeltaThreshold  float64
	PriceDeltaThreshold float64
	CacheTTL            time.Duration
	RatioCap            float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		WhaleThresholdUSD:   500_000,
		ToleranceMs:         1_800_000,
		FlowDeltaThreshold:  0.05,
		PriceDeltaThreshold: 2,
		CacheTTL:            5 * time.Minute,
		RatioCap:            10,
	}
}

// FloorHour rounds an epoch millisecond timestamp down to its hour boundary.
func FloorHour(ms int64) int64 {
	return (ms / HourMs) * HourMs
}
