package flow

import (
	"sort"

	"EthFlow/internal/domain/models"
)

// Aggregate groups trades into hourly buckets split by direction.
//
// In whale mode trades with AmountUSD <= whaleThresholdUSD are dropped before they
// touch any bucket, and the missing-hour fill is skipped so sparse whale activity
// is not padded with zero bars. In regular mode every hour in
// [rangeStartMs, rangeEndMs] is present in the output.
func Aggregate(trades []models.RawTrade, whaleMode bool, whaleThresholdUSD float64, rangeStartMs, rangeEndMs int64) []models.VolumeBucket {
	buckets := Bucketize(trades, whaleMode, whaleThresholdUSD)
	if whaleMode {
		return buckets
	}
	return FillMissingHours(buckets, rangeStartMs, rangeEndMs)
}

// Bucketize accumulates classified trades per hour, drops hours without volume
// and sorts the result by bucket start.
func Bucketize(trades []models.RawTrade, whaleMode bool, whaleThresholdUSD float64) []models.VolumeBucket {
	hourly := make(map[int64]*models.VolumeBucket)

	for _, t := range trades {
		if whaleMode && t.AmountUSD <= whaleThresholdUSD {
			continue
		}
		side := t.Side()
		if side == models.SideUnknown {
			continue
		}

		start := FloorHour(t.TimestampMs())
		b, ok := hourly[start]
		if !ok {
			b = &models.VolumeBucket{BucketStartMs: start}
			hourly[start] = b
		}

		b.TradeCount++
		if side == models.SideBuy {
			b.BuyVolumeUSD += t.AmountUSD
		} else {
			b.SellVolumeUSD += t.AmountUSD
		}
	}

	out := make([]models.VolumeBucket, 0, len(hourly))
	for _, b := range hourly {
		if b.IsEmpty() {
			continue
		}
		out = append(out, *b)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].BucketStartMs < out[j].BucketStartMs
	})
	return out
}

// FillMissingHours walks every hour boundary from startMs to endMs inclusive and
// returns one bucket per boundary, keeping existing buckets and synthesizing zero
// ones for the gaps. Buckets outside the range are not carried over.
func FillMissingHours(buckets []models.VolumeBucket, startMs, endMs int64) []models.VolumeBucket {
	if endMs < startMs {
		return []models.VolumeBucket{}
	}

	byStart := make(map[int64]models.VolumeBucket, len(buckets))
	for _, b := range buckets {
		byStart[b.BucketStartMs] = b
	}

	out := make([]models.VolumeBucket, 0, (endMs-startMs)/HourMs+1)
	for t := startMs; t <= endMs; t += HourMs {
		hour := FloorHour(t)
		if b, ok := byStart[hour]; ok {
			out = append(out, b)
			continue
		}
		out = append(out, models.VolumeBucket{BucketStartMs: hour})
	}
	return out
}
