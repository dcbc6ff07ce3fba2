package flow

import "EthFlow/internal/domain/models"

// minSellVolume stands in for an empty sell side so the ratio stays finite.
const minSellVolume = 0.001

// Ratios converts buckets into buy/sell ratios. DisplayRatio is clamped to displayCap;
// a non-positive cap disables clamping.
func Ratios(buckets []models.VolumeBucket, displayCap float64) []models.VolumeRatio {
	out := make([]models.VolumeRatio, len(buckets))
	for i, b := range buckets {
		sell := b.SellVolumeUSD
		if sell == 0 {
			sell = minSellVolume
		}
		ratio := b.BuyVolumeUSD / sell

		display := ratio
		exceeded := false
		if displayCap > 0 && ratio > displayCap {
			display = displayCap
			exceeded = true
		}

		out[i] = models.VolumeRatio{
			TimestampMs:    b.BucketStartMs,
			BuyVolumeUSD:   b.BuyVolumeUSD,
			SellVolumeUSD:  b.SellVolumeUSD,
			TotalVolumeUSD: b.TotalVolumeUSD(),
			Ratio:          ratio,
			DisplayRatio:   display,
			ExceededCap:    exceeded,
			TradeCount:     b.TradeCount,
		}
	}
	return out
}
