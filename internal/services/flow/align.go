package flow

import (
	"sort"
	"time"

	"EthFlow/internal/domain/models"
)

// Align pairs every net flow point with the nearest price sample inside the
// overlap of both series. Pairs further apart than toleranceMs are dropped.
// Several net flow points may share one price sample. Inputs are not mutated.
func Align(netFlow []models.NetFlowPoint, prices []models.PricePoint, toleranceMs int64) []models.CombinedPoint {
	out := make([]models.CombinedPoint, 0, len(netFlow))
	if len(netFlow) == 0 || len(prices) == 0 {
		return out
	}

	flows := make([]models.NetFlowPoint, len(netFlow))
	copy(flows, netFlow)
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].TimestampMs < flows[j].TimestampMs })

	quotes := make([]models.PricePoint, len(prices))
	copy(quotes, prices)
	sort.SliceStable(quotes, func(i, j int) bool { return quotes[i].TimestampMs < quotes[j].TimestampMs })

	start := max(flows[0].TimestampMs, quotes[0].TimestampMs)
	end := min(flows[len(flows)-1].TimestampMs, quotes[len(quotes)-1].TimestampMs)
	if start > end {
		return out
	}

	flows = within(flows, start, end, func(p models.NetFlowPoint) int64 { return p.TimestampMs })
	quotes = within(quotes, start, end, func(p models.PricePoint) int64 { return p.TimestampMs })
	if len(quotes) == 0 {
		return out
	}

	for _, f := range flows {
		closest := nearest(quotes, f.TimestampMs)
		if absDiff(closest.TimestampMs, f.TimestampMs) > toleranceMs {
			continue
		}
		out = append(out, models.CombinedPoint{
			Timestamp:  time.UnixMilli(f.TimestampMs).UTC(),
			NetFlowUSD: f.NetFlowUSD,
			Price:      closest.Price,
		})
	}
	return out
}

// nearest scans linearly and keeps the first candidate on ties.
func nearest(quotes []models.PricePoint, ts int64) models.PricePoint {
	closest := quotes[0]
	for _, q := range quotes[1:] {
		if absDiff(q.TimestampMs, ts) < absDiff(closest.TimestampMs, ts) {
			closest = q
		}
	}
	return closest
}

func within[T any](xs []T, start, end int64, ts func(T) int64) []T {
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if t := ts(x); t >= start && t <= end {
			out = append(out, x)
		}
	}
	return out
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
