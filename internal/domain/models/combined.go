package models

import "time"

// DivergenceKind names the direction of a flow/price divergence.
type DivergenceKind string

const (
	DivergenceNone            DivergenceKind = ""
	DivergenceInflowPriceDown DivergenceKind = "INFLOW_PRICE_DOWN"
	DivergenceOutflowPriceUp  DivergenceKind = "OUTFLOW_PRICE_UP"
)

// Message returns the human readable description of the divergence.
func (k DivergenceKind) Message() string {
	switch k {
	case DivergenceInflowPriceDown:
		return "Divergence: High buying volume but price dropping"
	case DivergenceOutflowPriceUp:
		return "Divergence: High selling volume but price rising"
	default:
		return ""
	}
}

// CombinedPoint pairs a net flow bucket with its nearest price sample.
// NormalizedNetFlow and the divergence fields are filled in by the annotator
// once the whole series is known.
type CombinedPoint struct {
	Timestamp         time.Time      `json:"timestamp"`
	NetFlowUSD        float64        `json:"net_flow_usd"`
	NormalizedNetFlow float64        `json:"normalized_net_flow"`
	Price             float64        `json:"price"`
	Divergence        bool           `json:"divergence"`
	DivergenceKind    DivergenceKind `json:"divergence_kind,omitempty"`
	DivergenceMessage string         `json:"divergence_message,omitempty"`
}
