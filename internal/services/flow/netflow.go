package flow

import "EthFlow/internal/domain/models"

// ComputeNetFlow returns buy minus sell volume per bucket, preserving order.
func ComputeNetFlow(buckets []models.VolumeBucket) []models.NetFlowPoint {
	out := make([]models.NetFlowPoint, len(buckets))
	for i, b := range buckets {
		out[i] = models.NetFlowPoint{
			TimestampMs: b.BucketStartMs,
			NetFlowUSD:  b.BuyVolumeUSD - b.SellVolumeUSD,
		}
	}
	return out
}
