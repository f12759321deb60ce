// data/models.go
package data

import (
	"sort"
	"time"
)

const IntervalDaily = "1d"

// PriceBar is one end-of-day OHLCV bar. Series are always ordered by
// ascending date with unique dates.
type PriceBar struct {
	Date          time.Time `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	Volume        int64     `json:"volume"`
	AdjustedClose float64   `json:"adjusted_close,omitempty"`
}

// Fundamentals is the per-ticker fundamental snapshot served by providers.
// Everything except the ticker is best-effort; sources differ in coverage.
type Fundamentals struct {
	Ticker         string  `json:"ticker"`
	Name           string  `json:"name,omitempty"`
	Sector         string  `json:"sector,omitempty"`
	Industry       string  `json:"industry,omitempty"`
	MarketCap      float64 `json:"market_cap,omitempty"`
	PERatio        float64 `json:"pe_ratio,omitempty"`
	ForwardPE      float64 `json:"forward_pe,omitempty"`
	DividendYield  float64 `json:"dividend_yield,omitempty"`
	Beta           float64 `json:"beta,omitempty"`
	EPS            float64 `json:"eps,omitempty"`
	PriceToBook    float64 `json:"price_to_book,omitempty"`
	DebtToEquity   float64 `json:"debt_to_equity,omitempty"`
	ReturnOnEquity float64 `json:"return_on_equity,omitempty"`
	ProfitMargins  float64 `json:"profit_margins,omitempty"`
	RevenueGrowth  float64 `json:"revenue_growth,omitempty"`
	LastUpdated    string  `json:"last_updated"`
}

// Closes extracts the close-price column of a bar series.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// SortBars orders bars by ascending date in place.
func SortBars(bars []PriceBar) {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
}
