package models

// Requests for the dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type PricesRequest struct {
	Hours int `query:"hours" json:"hours" default:"24" validate:"gte=1,lte=168"`
}

type VolumeRequest struct {
	Whale   bool `query:"whale" json:"whale"`
	Refresh bool `query:"refresh" json:"refresh"`
}

type RatioRequest struct {
	Whale bool `query:"whale" json:"whale"`
}

type NetFlowRequest struct {
	Whale       bool  `query:"whale" json:"whale"`
	Refresh     bool  `query:"refresh" json:"refresh"`
	ToleranceMs int64 `query:"tolerance_ms" json:"tolerance_ms" default:"1800000" validate:"gte=1,lte=86400000"`
}

type DashboardRequest struct {
	Whale   bool `query:"whale" json:"whale"`
	Refresh bool `query:"refresh" json:"refresh"`
}
