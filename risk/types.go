// risk/types.go
package risk

import (
	"encoding/json"
	"sort"

	"quant_risk_go/utils"
)

// Metrics is the full set of risk statistics for one price series, either a
// single asset or the implied portfolio path.
//
// Degenerate inputs produce documented sentinels rather than errors:
// SharpeRatio is 0 when the excess-return deviation is zero or undefined,
// SortinoRatio and OmegaRatio are +Inf when there is no downside, and Beta
// is NaN when the market series has zero variance. Beta, Alpha and
// InformationRatio are nil unless a benchmark series was supplied.
type Metrics struct {
	Volatility          float64  `json:"volatility"`
	VaR95               float64  `json:"var_95"`
	VaR99               float64  `json:"var_99"`
	CVaR95              float64  `json:"cvar_95"`
	MaxDrawdown         float64  `json:"max_drawdown"`
	MaxDrawdownDuration int      `json:"max_drawdown_duration"`
	SharpeRatio         float64  `json:"sharpe_ratio"`
	SortinoRatio        float64  `json:"sortino_ratio"`
	OmegaRatio          float64  `json:"omega_ratio"`
	Beta                *float64 `json:"beta,omitempty"`
	Alpha               *float64 `json:"alpha,omitempty"`
	InformationRatio    *float64 `json:"information_ratio,omitempty"`
	AnnualizedReturn    float64  `json:"annualized_return"`
	Skewness            float64  `json:"skewness"`
	Kurtosis            float64  `json:"kurtosis"`
	PositiveDays        float64  `json:"positive_days"`
	RiskFreeRate        float64  `json:"risk_free_rate"`
	// PortfolioValue is the currency basis VaR/CVaR were scaled by.
	PortfolioValue float64 `json:"portfolio_value"`
}

// MarshalJSON renders non-finite sentinel values as null; encoding/json
// rejects NaN and infinities outright, and downstream consumers must not
// mistake a sentinel for a real number.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type alias struct {
		Volatility          *float64 `json:"volatility"`
		VaR95               *float64 `json:"var_95"`
		VaR99               *float64 `json:"var_99"`
		CVaR95              *float64 `json:"cvar_95"`
		MaxDrawdown         *float64 `json:"max_drawdown"`
		MaxDrawdownDuration int      `json:"max_drawdown_duration"`
		SharpeRatio         *float64 `json:"sharpe_ratio"`
		SortinoRatio        *float64 `json:"sortino_ratio"`
		OmegaRatio          *float64 `json:"omega_ratio"`
		Beta                *float64 `json:"beta,omitempty"`
		Alpha               *float64 `json:"alpha,omitempty"`
		InformationRatio    *float64 `json:"information_ratio,omitempty"`
		AnnualizedReturn    *float64 `json:"annualized_return"`
		Skewness            *float64 `json:"skewness"`
		Kurtosis            *float64 `json:"kurtosis"`
		PositiveDays        *float64 `json:"positive_days"`
		RiskFreeRate        *float64 `json:"risk_free_rate"`
		PortfolioValue      *float64 `json:"portfolio_value"`
	}
	return json.Marshal(alias{
		Volatility:          finiteOrNil(m.Volatility),
		VaR95:               finiteOrNil(m.VaR95),
		VaR99:               finiteOrNil(m.VaR99),
		CVaR95:              finiteOrNil(m.CVaR95),
		MaxDrawdown:         finiteOrNil(m.MaxDrawdown),
		MaxDrawdownDuration: m.MaxDrawdownDuration,
		SharpeRatio:         finiteOrNil(m.SharpeRatio),
		SortinoRatio:        finiteOrNil(m.SortinoRatio),
		OmegaRatio:          finiteOrNil(m.OmegaRatio),
		Beta:                finitePtrOrNil(m.Beta),
		Alpha:               finitePtrOrNil(m.Alpha),
		InformationRatio:    finitePtrOrNil(m.InformationRatio),
		AnnualizedReturn:    finiteOrNil(m.AnnualizedReturn),
		Skewness:            finiteOrNil(m.Skewness),
		Kurtosis:            finiteOrNil(m.Kurtosis),
		PositiveDays:        finiteOrNil(m.PositiveDays),
		RiskFreeRate:        finiteOrNil(m.RiskFreeRate),
		PortfolioValue:      finiteOrNil(m.PortfolioValue),
	})
}

func finiteOrNil(v float64) *float64 {
	if !utils.IsFinite(v) {
		return nil
	}
	return &v
}

func finitePtrOrNil(v *float64) *float64 {
	if v == nil || !utils.IsFinite(*v) {
		return nil
	}
	return v
}

// CorrelationMatrix is a symmetric, unit-diagonal matrix of pairwise Pearson
// correlations, keyed by ticker.
type CorrelationMatrix struct {
	Tickers []string
	Values  [][]float64
}

// At returns the correlation between two tickers; NaN for unknown tickers.
func (c *CorrelationMatrix) At(a, b string) float64 {
	i := c.index(a)
	j := c.index(b)
	if i < 0 || j < 0 {
		return nan()
	}
	return c.Values[i][j]
}

func (c *CorrelationMatrix) index(ticker string) int {
	i := sort.SearchStrings(c.Tickers, ticker)
	if i < len(c.Tickers) && c.Tickers[i] == ticker {
		return i
	}
	return -1
}

// MarshalJSON renders the matrix as nested ticker-keyed maps, matching the
// shape upstream consumers expect.
func (c *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]*float64, len(c.Tickers))
	for i, a := range c.Tickers {
		row := make(map[string]*float64, len(c.Tickers))
		for j, b := range c.Tickers {
			row[b] = finiteOrNil(c.Values[i][j])
		}
		out[a] = row
	}
	return json.Marshal(out)
}
