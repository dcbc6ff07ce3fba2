package models

// RawTrade is a single swap as reported by the trade feed.
// Base is the traded asset (WETH), quote is the pricing asset (USDC).
type RawTrade struct {
	TimestampSeconds int64   `json:"timestamp"`
	AmountBaseIn     float64 `json:"amount_base_in"`
	AmountBaseOut    float64 `json:"amount_base_out"`
	AmountQuoteIn    float64 `json:"amount_quote_in"`
	AmountQuoteOut   float64 `json:"amount_quote_out"`
	AmountUSD        float64 `json:"amount_usd"`
}

// TradeSide is the direction of a trade relative to the base asset.
type TradeSide int

const (
	SideUnknown TradeSide = iota
	SideBuy
	SideSell
)

// Side classifies the trade. Base out + quote in is a buy of the base asset,
// base in + quote out is a sell. Anything else is unknown.
func (t RawTrade) Side() TradeSide {
	switch {
	case t.AmountBaseOut > 0 && t.AmountQuoteIn > 0:
		return SideBuy
	case t.AmountBaseIn > 0 && t.AmountQuoteOut > 0:
		return SideSell
	default:
		return SideUnknown
	}
}

// TimestampMs returns the trade time in epoch milliseconds.
func (t RawTrade) TimestampMs() int64 { return t.TimestampSeconds * 1000 }
