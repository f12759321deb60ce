// portfolio/portfolio.go
package portfolio

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Holding is one ticker's position. Long and short legs are tracked
// separately; all quantities and cost bases are non-negative.
type Holding struct {
	LongQuantity   float64 `json:"long" yaml:"long"`
	LongCostBasis  float64 `json:"long_cost_basis" yaml:"long_cost_basis"`
	ShortQuantity  float64 `json:"short" yaml:"short"`
	ShortCostBasis float64 `json:"short_cost_basis" yaml:"short_cost_basis"`
}

// LongValue is quantity x cost basis of the long leg. Valuation goes through
// decimal so a large share count cannot smear the cost basis before the
// number reaches the statistics layer.
func (h Holding) LongValue() float64 {
	v, _ := decimal.NewFromFloat(h.LongQuantity).
		Mul(decimal.NewFromFloat(h.LongCostBasis)).Float64()
	return v
}

// ShortValue is quantity x cost basis of the short leg.
func (h Holding) ShortValue() float64 {
	v, _ := decimal.NewFromFloat(h.ShortQuantity).
		Mul(decimal.NewFromFloat(h.ShortCostBasis)).Float64()
	return v
}

// Value is the net position value, long minus short.
func (h Holding) Value() float64 {
	return h.LongValue() - h.ShortValue()
}

// Portfolio is cash plus per-ticker holdings.
type Portfolio struct {
	Cash      float64            `json:"cash" yaml:"cash"`
	Positions map[string]Holding `json:"positions" yaml:"positions"`
}

// TotalValue is cash plus the net value of every position. It can be
// negative when shorts or leverage dominate; callers dividing by it must
// check for zero first.
func (p *Portfolio) TotalValue() float64 {
	total := p.Cash
	for _, h := range p.Positions {
		total += h.Value()
	}
	return total
}

// Tickers returns the held symbols in sorted order, so every consumer
// iterates the portfolio deterministically.
func (p *Portfolio) Tickers() []string {
	tickers := make([]string, 0, len(p.Positions))
	for t := range p.Positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Validate rejects negative quantities or cost bases.
func (p *Portfolio) Validate() error {
	for ticker, h := range p.Positions {
		if h.LongQuantity < 0 || h.LongCostBasis < 0 || h.ShortQuantity < 0 || h.ShortCostBasis < 0 {
			return fmt.Errorf("position %s has negative quantity or cost basis", ticker)
		}
	}
	return nil
}
