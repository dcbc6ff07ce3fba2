package models

// PricePoint is one sample of the external price feed.
type PricePoint struct {
	TimestampMs int64   `json:"timestamp"`
	Price       float64 `json:"price"`
}

// CurrentPrice is the latest quote with 24h statistics.
type CurrentPrice struct {
	Current                  float64 `json:"current"`
	High24h                  float64 `json:"high_24h"`
	Low24h                   float64 `json:"low_24h"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
}
