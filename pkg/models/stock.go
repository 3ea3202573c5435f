// Package models defines the core data structures shared by the data
// providers and the valuation engine.
package models

import "time"

// Quote represents a real-time stock quote.
type Quote struct {
	Ticker            string    `json:"ticker"`
	Name              string    `json:"name"`
	LastPrice         float64   `json:"last_price"`
	Change            float64   `json:"change"`
	ChangePct         float64   `json:"change_pct"`
	MarketCap         float64   `json:"market_cap"`
	PE                float64   `json:"pe,omitempty"`
	EPS               float64   `json:"eps,omitempty"`
	SharesOutstanding float64   `json:"shares_outstanding"`
	Exchange          string    `json:"exchange"`
	Timestamp         time.Time `json:"timestamp"`
}

// ShareStatisticsData represents share float statistics.
type ShareStatisticsData struct {
	Symbol            string  `json:"symbol"`
	SharesOutstanding int64   `json:"shares_outstanding"`
	FloatShares       int64   `json:"float_shares,omitempty"`
	FreeFloatPct      float64 `json:"free_float_pct,omitempty"`
}
