// risk/metrics.go
package risk

import (
	"fmt"
	"math"
	"sort"

	"quant_risk_go/data"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// tradingDays is the annualization convention for daily series.
const tradingDays = 252

// monteCarloDraws is the fixed sample count for simulated VaR.
const monteCarloDraws = 10000

// VarMethod is the closed set of VaR estimation techniques. Keeping this a
// typed enumeration makes an unknown method a compile-time concern; strings
// from config or requests go through ParseVarMethod at the boundary.
type VarMethod int

const (
	VarHistorical VarMethod = iota
	VarParametric
	VarMonteCarlo
)

func (m VarMethod) String() string {
	switch m {
	case VarHistorical:
		return "historical"
	case VarParametric:
		return "parametric"
	case VarMonteCarlo:
		return "monte_carlo"
	default:
		return fmt.Sprintf("VarMethod(%d)", int(m))
	}
}

// ParseVarMethod converts a method name into its enum value, rejecting
// anything it does not recognize.
func ParseVarMethod(name string) (VarMethod, error) {
	switch name {
	case "historical":
		return VarHistorical, nil
	case "parametric":
		return VarParametric, nil
	case "monte_carlo":
		return VarMonteCarlo, nil
	default:
		return 0, fmt.Errorf("unsupported VaR calculation method: %q", name)
	}
}

// MetricsCalculator computes return statistics for daily price series. It is
// stateless apart from the configured risk-free rate and the Monte-Carlo
// seed, so a single instance can serve many series.
type MetricsCalculator struct {
	RiskFreeRate      float64
	dailyRiskFreeRate float64
	mcSeed            uint64
}

// NewMetricsCalculator derives the daily risk-free rate from the annualized
// one. The Monte-Carlo source is seeded per call from a fixed seed so
// repeated analyses of the same inputs reproduce the same numbers.
func NewMetricsCalculator(riskFreeRate float64) *MetricsCalculator {
	return &MetricsCalculator{
		RiskFreeRate:      riskFreeRate,
		dailyRiskFreeRate: math.Pow(1+riskFreeRate, 1.0/tradingDays) - 1,
		mcSeed:            42,
	}
}

// Volatility is the standard deviation of the whole series, annualized by
// sqrt(252) when requested.
func (c *MetricsCalculator) Volatility(r ReturnSeries, annualized bool) float64 {
	vol := r.Std()
	if annualized {
		vol *= math.Sqrt(tradingDays)
	}
	return vol
}

// RollingVolatility is the windowed standard deviation. The result has
// len(r)-window+1 entries, the first covering the series' first full window.
func (c *MetricsCalculator) RollingVolatility(r ReturnSeries, window int, annualized bool) []float64 {
	if window <= 0 || r.Len() < window {
		return nil
	}
	out := make([]float64, 0, r.Len()-window+1)
	for i := window; i <= r.Len(); i++ {
		vol := stat.StdDev(r.Values[i-window:i], nil)
		if annualized {
			vol *= math.Sqrt(tradingDays)
		}
		out = append(out, vol)
	}
	return out
}

// VaR estimates the loss magnitude not expected to be exceeded at the given
// confidence level, scaled by the square-root-of-time rule over the horizon
// (in days) and by portfolioValue into currency units.
func (c *MetricsCalculator) VaR(r ReturnSeries, confidence float64, horizonDays int, method VarMethod, portfolioValue float64) (float64, error) {
	alpha := 1 - confidence

	var v float64
	switch method {
	case VarHistorical:
		v = -percentile(r.Values, alpha)
	case VarParametric:
		z := distuv.UnitNormal.Quantile(alpha)
		v = -(r.Mean() + z*r.Std())
	case VarMonteCarlo:
		v = -percentile(c.simulateReturns(r), alpha)
	default:
		return 0, fmt.Errorf("unsupported VaR calculation method: %q", method)
	}

	return v * math.Sqrt(float64(horizonDays)) * portfolioValue, nil
}

// CVaR is the expected shortfall: the negative mean of all returns at or
// below the VaR percentile cutoff, scaled like VaR. Always at least the VaR
// magnitude for the same confidence level.
func (c *MetricsCalculator) CVaR(r ReturnSeries, confidence float64, horizonDays int, portfolioValue float64) float64 {
	if r.Len() == 0 {
		return 0
	}
	cutoff := percentile(r.Values, 1-confidence)

	var sum float64
	var n int
	for _, v := range r.Values {
		if v <= cutoff {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return -(sum / float64(n)) * math.Sqrt(float64(horizonDays)) * portfolioValue
}

// Drawdown returns the full drawdown series (close/peak - 1, always <= 0),
// the maximum drawdown magnitude, and the longest run of consecutive
// strictly-negative drawdown in bars, counting a run still open at the end
// of the series.
func (c *MetricsCalculator) Drawdown(bars []data.PriceBar) ([]float64, float64, int) {
	if len(bars) == 0 {
		return nil, 0, 0
	}

	drawdowns := make([]float64, len(bars))
	peak := bars[0].Close
	minDD := 0.0
	longest, current := 0, 0
	for i, b := range bars {
		if b.Close > peak {
			peak = b.Close
		}
		dd := b.Close/peak - 1
		drawdowns[i] = dd
		if dd < minDD {
			minDD = dd
		}
		if dd < 0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return drawdowns, math.Abs(minDD), longest
}

// SharpeRatio is mean excess return over its standard deviation, 0 when the
// deviation is zero or undefined. The zero sentinel deliberately swallows
// the divide-by-zero instead of propagating NaN.
func (c *MetricsCalculator) SharpeRatio(r ReturnSeries, annualized bool) float64 {
	excess := make([]float64, r.Len())
	for i, v := range r.Values {
		excess[i] = v - c.dailyRiskFreeRate
	}

	std := stat.StdDev(excess, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}

	sharpe := stat.Mean(excess, nil) / std
	if annualized {
		sharpe *= math.Sqrt(tradingDays)
	}
	return sharpe
}

// SortinoRatio divides mean excess return by the deviation of sub-threshold
// excess returns only. +Inf is the documented sentinel for a series with no
// usable downside deviation; it is not an error.
func (c *MetricsCalculator) SortinoRatio(r ReturnSeries, minAcceptableReturn float64, annualized bool) float64 {
	excess := make([]float64, r.Len())
	var downside []float64
	for i, v := range r.Values {
		e := v - minAcceptableReturn
		excess[i] = e
		if e < 0 {
			downside = append(downside, e)
		}
	}

	downsideDev := stat.StdDev(downside, nil)
	if downsideDev == 0 || math.IsNaN(downsideDev) {
		return math.Inf(1)
	}

	sortino := stat.Mean(excess, nil) / downsideDev
	if annualized {
		sortino *= math.Sqrt(tradingDays)
	}
	return sortino
}

// Beta is cov(asset, market)/var(market) over the date-aligned overlap of
// the two series. NaN is the sentinel for a zero-variance market.
func (c *MetricsCalculator) Beta(r, market ReturnSeries) float64 {
	asset, mkt := alignSeries(r, market)
	if asset.Len() == 0 {
		return nan()
	}

	marketVar := stat.Variance(mkt.Values, nil)
	if marketVar == 0 || math.IsNaN(marketVar) {
		return nan()
	}
	return stat.Covariance(asset.Values, mkt.Values, nil) / marketVar
}

// Alpha is the CAPM excess return over the benchmark. Pass a precomputed
// beta to avoid recomputing it, or nil to derive it here. Annualization
// compounds the daily alpha over 252 days.
func (c *MetricsCalculator) Alpha(r, market ReturnSeries, beta *float64, annualized bool) float64 {
	asset, mkt := alignSeries(r, market)

	var b float64
	if beta != nil {
		b = *beta
	} else {
		b = c.Beta(asset, mkt)
	}

	alpha := asset.Mean() - c.dailyRiskFreeRate - b*(mkt.Mean()-c.dailyRiskFreeRate)
	if annualized {
		alpha = math.Pow(1+alpha, tradingDays) - 1
	}
	return alpha
}

// InformationRatio is the mean of the asset-minus-benchmark excess series
// over its standard deviation, annualized by sqrt(252).
func (c *MetricsCalculator) InformationRatio(r, benchmark ReturnSeries, annualized bool) float64 {
	asset, bench := alignSeries(r, benchmark)

	excess := make([]float64, asset.Len())
	for i := range asset.Values {
		excess[i] = asset.Values[i] - bench.Values[i]
	}

	ir := stat.Mean(excess, nil) / stat.StdDev(excess, nil)
	if annualized {
		ir *= math.Sqrt(tradingDays)
	}
	return ir
}

// OmegaRatio is the sum of gains above the threshold over the sum of
// shortfalls below it; +Inf is the sentinel when there are no shortfalls.
func (c *MetricsCalculator) OmegaRatio(r ReturnSeries, threshold float64) float64 {
	var gains, losses float64
	for _, v := range r.Values {
		if v > threshold {
			gains += v - threshold
		} else {
			losses += threshold - v
		}
	}
	if losses == 0 {
		return math.Inf(1)
	}
	return gains / losses
}

// CorrelationMatrix computes the pairwise Pearson correlations between the
// given return series, aligned by date per pair. The result is symmetric
// with an exact unit diagonal.
func (c *MetricsCalculator) CorrelationMatrix(returns map[string]ReturnSeries) *CorrelationMatrix {
	tickers := sortedKeys(returns)
	n := len(tickers)

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := alignSeries(returns[tickers[i]], returns[tickers[j]])
			corr := stat.Correlation(a.Values, b.Values, nil)
			values[i][j] = corr
			values[j][i] = corr
		}
	}
	return &CorrelationMatrix{Tickers: tickers, Values: values}
}

// CovarianceMatrix builds the sample covariance matrix of the given return
// series in the supplied ticker order.
func (c *MetricsCalculator) CovarianceMatrix(tickers []string, returns map[string]ReturnSeries) *mat.SymDense {
	n := len(tickers)
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a, b := alignSeries(returns[tickers[i]], returns[tickers[j]])
			cov.SetSym(i, j, stat.Covariance(a.Values, b.Values, nil))
		}
	}
	return cov
}

// RiskContribution decomposes portfolio volatility by asset: contribution_i
// = w_i * (cov*w)_i / sqrt(w' cov w). The contributions sum back to the
// portfolio volatility (Euler identity). A zero-volatility portfolio yields
// all-zero contributions.
func (c *MetricsCalculator) RiskContribution(weights []float64, cov *mat.SymDense) []float64 {
	n := len(weights)
	w := mat.NewVecDense(n, weights)

	portfolioVol := math.Sqrt(mat.Inner(w, cov, w))

	contrib := make([]float64, n)
	if portfolioVol == 0 || math.IsNaN(portfolioVol) {
		return contrib
	}

	var marginal mat.VecDense
	marginal.MulVec(cov, w)
	for i := 0; i < n; i++ {
		contrib[i] = weights[i] * marginal.AtVec(i) / portfolioVol
	}
	return contrib
}

// RiskMetrics aggregates every statistic for one price series. Beta, alpha
// and information ratio are populated only when a benchmark series is
// supplied. portfolioValue is the currency basis for VaR/CVaR scaling.
func (c *MetricsCalculator) RiskMetrics(bars, benchmark []data.PriceBar, portfolioValue float64) (*Metrics, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("need at least 2 price bars to compute risk metrics, got %d", len(bars))
	}

	returns, err := Returns(bars, SimpleReturns)
	if err != nil {
		return nil, err
	}

	var95, _ := c.VaR(returns, 0.95, 1, VarHistorical, portfolioValue)
	var99, _ := c.VaR(returns, 0.99, 1, VarHistorical, portfolioValue)
	_, maxDD, ddDuration := c.Drawdown(bars)

	positive := 0
	for _, v := range returns.Values {
		if v > 0 {
			positive++
		}
	}

	m := &Metrics{
		Volatility:          c.Volatility(returns, true),
		VaR95:               var95,
		VaR99:               var99,
		CVaR95:              c.CVaR(returns, 0.95, 1, portfolioValue),
		MaxDrawdown:         maxDD,
		MaxDrawdownDuration: ddDuration,
		SharpeRatio:         c.SharpeRatio(returns, true),
		SortinoRatio:        c.SortinoRatio(returns, 0, true),
		OmegaRatio:          c.OmegaRatio(returns, 0),
		AnnualizedReturn:    math.Pow(1+returns.Mean(), tradingDays) - 1,
		Skewness:            stat.Skew(returns.Values, nil),
		Kurtosis:            stat.ExKurtosis(returns.Values, nil),
		PositiveDays:        float64(positive) / float64(returns.Len()),
		RiskFreeRate:        c.RiskFreeRate,
		PortfolioValue:      portfolioValue,
	}

	if len(benchmark) >= 2 {
		benchReturns, err := Returns(benchmark, SimpleReturns)
		if err != nil {
			return nil, err
		}
		beta := c.Beta(returns, benchReturns)
		alpha := c.Alpha(returns, benchReturns, &beta, true)
		ir := c.InformationRatio(returns, benchReturns, true)
		m.Beta = &beta
		m.Alpha = &alpha
		m.InformationRatio = &ir
	}

	return m, nil
}

// simulateReturns draws the Monte-Carlo sample from Normal(mean, std) of the
// historical series. The source is re-seeded per call, so identical inputs
// give identical draws.
func (c *MetricsCalculator) simulateReturns(r ReturnSeries) []float64 {
	mean := r.Mean()
	std := r.Std()
	if math.IsNaN(std) {
		std = 0
	}

	dist := distuv.Normal{Mu: mean, Sigma: std, Src: rand.NewSource(c.mcSeed)}
	samples := make([]float64, monteCarloDraws)
	for i := range samples {
		if std == 0 {
			samples[i] = mean
			continue
		}
		samples[i] = dist.Rand()
	}
	return samples
}

// percentile is the linearly-interpolated quantile of the values at p in
// [0, 1], matching the convention of the statistics stacks this module's
// numbers are compared against.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return nan()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

func sortedKeys(m map[string]ReturnSeries) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nan() float64 { return math.NaN() }
