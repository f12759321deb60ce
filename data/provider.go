// data/provider.go
package data

import (
	"context"
	"strings"
	"time"
)

// Provider is the adapter contract every data source implements. GetPrices
// must return bars sorted ascending by date and an empty slice, not an
// error, when the range simply has no data.
type Provider interface {
	Name() string
	GetPrices(ctx context.Context, ticker string, start, end time.Time, interval string) ([]PriceBar, error)
	GetFundamentals(ctx context.Context, ticker string) (*Fundamentals, error)
}

// normalizeTicker trims and upper-cases a symbol before it reaches a source.
func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
