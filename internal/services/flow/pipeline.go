package flow

import "EthFlow/internal/domain/models"

// Combine runs net flow, alignment and annotation over already aggregated buckets.
func Combine(buckets []models.VolumeBucket, prices []models.PricePoint, cfg Config) []models.CombinedPoint {
	points := Align(ComputeNetFlow(buckets), prices, cfg.ToleranceMs)
	return Annotate(points, ThresholdsFrom(cfg))
}
