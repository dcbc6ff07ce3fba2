package flow

import "EthFlow/internal/domain/models"

// Thresholds decide when a move between consecutive points is significant.
type Thresholds struct {
	FlowDelta  float64 // normalized net flow units
	PriceDelta float64 // absolute USD
}

// ThresholdsFrom extracts the divergence thresholds from cfg.
func ThresholdsFrom(cfg Config) Thresholds {
	return Thresholds{FlowDelta: cfg.FlowDeltaThreshold, PriceDelta: cfg.PriceDeltaThreshold}
}

// Normalize min-max scales values into [0, 1]. A flat series maps to 0.5.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	if hi == lo {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}

	span := hi - lo
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// Annotate normalizes net flow in place and tags points whose flow and price moved
// in opposite directions beyond th. Point 0 is never tagged. Previous tags are
// cleared first, so calling it twice gives the same result.
func Annotate(points []models.CombinedPoint, th Thresholds) []models.CombinedPoint {
	if len(points) == 0 {
		return points
	}

	flows := make([]float64, len(points))
	for i, p := range points {
		flows[i] = p.NetFlowUSD
	}
	for i, n := range Normalize(flows) {
		points[i].NormalizedNetFlow = n
		points[i].Divergence = false
		points[i].DivergenceKind = models.DivergenceNone
		points[i].DivergenceMessage = ""
	}

	for i := 1; i < len(points); i++ {
		kind := Classify(
			points[i].NormalizedNetFlow-points[i-1].NormalizedNetFlow,
			points[i].Price-points[i-1].Price,
			th,
		)
		if kind == models.DivergenceNone {
			continue
		}
		points[i].Divergence = true
		points[i].DivergenceKind = kind
		points[i].DivergenceMessage = kind.Message()
	}
	return points
}

// Classify maps a pair of deltas to a divergence kind. Both deltas must strictly
// exceed their thresholds in magnitude.
func Classify(flowDelta, priceDelta float64, th Thresholds) models.DivergenceKind {
	if abs(flowDelta) <= th.FlowDelta || abs(priceDelta) <= th.PriceDelta {
		return models.DivergenceNone
	}
	switch {
	case flowDelta > 0 && priceDelta < 0:
		return models.DivergenceInflowPriceDown
	case flowDelta < 0 && priceDelta > 0:
		return models.DivergenceOutflowPriceUp
	default:
		return models.DivergenceNone
	}
}

// CountDivergences returns the number of tagged points.
func CountDivergences(points []models.CombinedPoint) int {
	n := 0
	for _, p := range points {
		if p.Divergence {
			n++
		}
	}
	return n
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
