// risk/manager.go
package risk

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"quant_risk_go/config"
	"quant_risk_go/data"
	"quant_risk_go/logs"
	"quant_risk_go/portfolio"
	"quant_risk_go/telemetry"

	"github.com/google/uuid"
)

// highVolatilityThreshold is the annualized volatility above which a
// per-asset informational alert fires.
const highVolatilityThreshold = 0.50

// PriceHistory is the single capability the manager needs from the data
// layer: an ascending daily bar series for a ticker and date range, with an
// empty slice (not an error) meaning no data.
type PriceHistory interface {
	GetPrices(ctx context.Context, ticker string, start, end time.Time) ([]data.PriceBar, error)
}

// Manager orchestrates risk analysis over a portfolio: per-asset and
// portfolio metrics, alerts, position limits and the circuit breaker. One
// Manager owns one portfolio's risk state; independent portfolios get
// independent Managers rather than shared state.
type Manager struct {
	cfg    *config.RiskConfig
	calc   *MetricsCalculator
	prices PriceHistory

	// analysisMu serializes AnalyzePortfolio's read-compute-replace
	// sequence; stateMu guards the snapshot pointer for readers.
	analysisMu sync.Mutex
	stateMu    sync.RWMutex
	state      *RiskState
}

// NewManager builds a manager around the given limits and price source.
func NewManager(cfg *config.RiskConfig, prices PriceHistory) *Manager {
	return &Manager{
		cfg:    cfg,
		calc:   NewMetricsCalculator(cfg.RiskFreeRate),
		prices: prices,
		state:  &RiskState{PositionLimits: map[string]PositionLimit{}, AssetMetrics: map[string]*Metrics{}},
	}
}

// Calculator exposes the shared metrics calculator.
func (m *Manager) Calculator() *MetricsCalculator { return m.calc }

// AnalyzePortfolio runs the full risk analysis for the portfolio over the
// date range. On success the state snapshot is atomically replaced; on a
// failed analysis (no ticker yields data, zero total value) the previous
// snapshot is left untouched and the result carries StatusError.
func (m *Manager) AnalyzePortfolio(ctx context.Context, pf *portfolio.Portfolio, start, end time.Time) *AnalysisResult {
	m.analysisMu.Lock()
	defer m.analysisMu.Unlock()

	logs.Infof("Analyzing portfolio risk from %s to %s",
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	if err := pf.Validate(); err != nil {
		return m.errorResult("invalid portfolio: " + err.Error())
	}

	totalValue := pf.TotalValue()
	if totalValue == 0 {
		return m.errorResult("portfolio total value is zero, cannot compute weights")
	}

	// Fetch each held ticker's bars; tickers with no data are skipped, not
	// fatal.
	priceData := map[string][]data.PriceBar{}
	returnsData := map[string]ReturnSeries{}
	var held []string
	for _, ticker := range pf.Tickers() {
		bars, err := m.prices.GetPrices(ctx, ticker, start, end)
		if err != nil {
			logs.Errorf("Error fetching data for %s: %v", ticker, err)
			continue
		}
		if len(bars) < 2 {
			logs.Warnf("No usable price data for %s in range, skipping", ticker)
			continue
		}
		returns, err := Returns(bars, SimpleReturns)
		if err != nil {
			logs.Errorf("Error computing returns for %s: %v", ticker, err)
			continue
		}
		priceData[ticker] = bars
		returnsData[ticker] = returns
		held = append(held, ticker)
	}

	if len(priceData) == 0 {
		logs.Warn("No price data available for risk analysis")
		return m.errorResult("no price data available for risk analysis")
	}

	// Per-asset metrics, scaled by each position's long value.
	assetMetrics := map[string]*Metrics{}
	for _, ticker := range held {
		metrics, err := m.calc.RiskMetrics(priceData[ticker], nil, pf.Positions[ticker].LongValue())
		if err != nil {
			logs.Errorf("Error calculating risk metrics for %s: %v", ticker, err)
			continue
		}
		assetMetrics[ticker] = metrics
	}

	// Portfolio return series: value-weighted sum of per-asset returns,
	// aligned by index position. All held tickers are assumed to share one
	// trading calendar; when lengths differ we truncate to the shortest and
	// make the divergence visible in the log.
	portfolioReturns := m.weightedReturns(pf, held, returnsData, totalValue)

	portfolioMetrics, err := m.calc.RiskMetrics(impliedPricePath(portfolioReturns), nil, totalValue)
	if err != nil {
		return m.errorResult("portfolio metrics: " + err.Error())
	}

	correlations := m.calc.CorrelationMatrix(returnsData)

	weights := make([]float64, len(held))
	for i, ticker := range held {
		weights[i] = pf.Positions[ticker].LongValue() / totalValue
	}
	cov := m.calc.CovarianceMatrix(held, returnsData)
	contrib := m.calc.RiskContribution(weights, cov)
	riskContribution := make(map[string]float64, len(held))
	for i, ticker := range held {
		riskContribution[ticker] = contrib[i]
	}

	alerts := m.checkRiskAlerts(portfolioMetrics, assetMetrics)
	positionLimits := m.calculatePositionLimits(pf, assetMetrics, totalValue)

	// Atomic snapshot replace. The breaker flag carries over; only
	// CheckCircuitBreaker re-evaluates it.
	m.stateMu.Lock()
	newState := &RiskState{
		RunID:                uuid.NewString(),
		UpdatedAt:            time.Now(),
		Alerts:               alerts,
		PositionLimits:       positionLimits,
		PortfolioMetrics:     portfolioMetrics,
		AssetMetrics:         assetMetrics,
		Correlations:         correlations,
		RiskContribution:     riskContribution,
		CircuitBreakerActive: m.state.CircuitBreakerActive,
	}
	m.state = newState
	m.stateMu.Unlock()

	telemetry.AnalysesTotal.WithLabelValues(string(StatusSuccess)).Inc()
	for _, a := range alerts {
		telemetry.AlertsTotal.WithLabelValues(string(a.Type)).Inc()
	}

	return &AnalysisResult{
		Status:           StatusSuccess,
		PortfolioMetrics: portfolioMetrics,
		AssetMetrics:     assetMetrics,
		Correlations:     correlations,
		RiskContribution: riskContribution,
		Alerts:           alerts,
		PositionLimits:   positionLimits,
	}
}

func (m *Manager) errorResult(message string) *AnalysisResult {
	telemetry.AnalysesTotal.WithLabelValues(string(StatusError)).Inc()
	return &AnalysisResult{Status: StatusError, Message: message}
}

// weightedReturns builds the portfolio-level return series, weight = long
// value / total portfolio value.
func (m *Manager) weightedReturns(pf *portfolio.Portfolio, held []string, returnsData map[string]ReturnSeries, totalValue float64) ReturnSeries {
	minLen := -1
	for _, ticker := range held {
		if l := returnsData[ticker].Len(); minLen == -1 || l < minLen {
			minLen = l
		}
	}
	for _, ticker := range held {
		if returnsData[ticker].Len() != minLen {
			logs.Warnf("Return series length mismatch (%s has %d, truncating to %d); tickers do not share a trading calendar",
				ticker, returnsData[ticker].Len(), minLen)
			break
		}
	}

	first := returnsData[held[0]]
	out := ReturnSeries{
		Dates:  append([]time.Time(nil), first.Dates[:minLen]...),
		Values: make([]float64, minLen),
	}
	for _, ticker := range held {
		weight := pf.Positions[ticker].LongValue() / totalValue
		series := returnsData[ticker]
		for i := 0; i < minLen; i++ {
			out.Values[i] += series.Values[i] * weight
		}
	}
	return out
}

// impliedPricePath turns the weighted return series into the cumulative
// product price path the portfolio metrics are computed over.
func impliedPricePath(r ReturnSeries) []data.PriceBar {
	bars := make([]data.PriceBar, r.Len())
	level := 1.0
	for i, v := range r.Values {
		level *= 1 + v
		bars[i] = data.PriceBar{Date: r.Dates[i], Close: level}
	}
	return bars
}

// checkRiskAlerts evaluates the alert rules against the fresh metrics. The
// result replaces any previous alerts; nothing accumulates across calls.
func (m *Manager) checkRiskAlerts(portfolioMetrics *Metrics, assetMetrics map[string]*Metrics) []Alert {
	alerts := []Alert{}

	varLimit := m.cfg.VarLimit * portfolioMetrics.PortfolioValue
	if portfolioMetrics.VaR95 > varLimit {
		alerts = append(alerts, Alert{
			ID:      uuid.NewString(),
			Level:   AlertWarning,
			Type:    AlertVarBreach,
			Message: fmt.Sprintf("Portfolio VaR (95%%) exceeds limit: %.2f", portfolioMetrics.VaR95),
			Value:   portfolioMetrics.VaR95,
			Limit:   &varLimit,
		})
	}

	if portfolioMetrics.MaxDrawdown > m.cfg.MaxDrawdownLimit {
		limit := m.cfg.MaxDrawdownLimit
		alerts = append(alerts, Alert{
			ID:      uuid.NewString(),
			Level:   AlertWarning,
			Type:    AlertDrawdownBreach,
			Message: fmt.Sprintf("Portfolio drawdown exceeds limit: %.2f%%", portfolioMetrics.MaxDrawdown*100),
			Value:   portfolioMetrics.MaxDrawdown,
			Limit:   &limit,
		})
	}

	for _, ticker := range sortedMetricKeys(assetMetrics) {
		metrics := assetMetrics[ticker]
		if metrics.Volatility > highVolatilityThreshold {
			alerts = append(alerts, Alert{
				ID:      uuid.NewString(),
				Level:   AlertInfo,
				Type:    AlertHighVolatility,
				Message: fmt.Sprintf("High volatility for %s: %.2f%%", ticker, metrics.Volatility*100),
				Ticker:  ticker,
				Value:   metrics.Volatility,
			})
		}
	}

	return alerts
}

// calculatePositionLimits derives per-ticker exposure budgets. The
// volatility factor shrinks the base limit as volatility rises but never
// below 0.2; tickers whose metrics are missing keep a factor of 1.
func (m *Manager) calculatePositionLimits(pf *portfolio.Portfolio, assetMetrics map[string]*Metrics, totalValue float64) map[string]PositionLimit {
	limits := make(map[string]PositionLimit, len(pf.Positions))
	baseLimit := totalValue * m.cfg.MaxPositionSize

	for _, ticker := range pf.Tickers() {
		holding := pf.Positions[ticker]
		currentValue := holding.Value()

		volatilityFactor := 1.0
		if metrics, ok := assetMetrics[ticker]; ok {
			volatilityFactor = math.Max(0.2, 1.0-metrics.Volatility)
		}

		adjustedLimit := baseLimit * volatilityFactor
		limits[ticker] = PositionLimit{
			BaseLimit:        baseLimit,
			AdjustedLimit:    adjustedLimit,
			CurrentValue:     currentValue,
			RemainingLimit:   math.Max(0, adjustedLimit-math.Abs(currentValue)),
			VolatilityFactor: volatilityFactor,
		}
	}
	return limits
}

// AdjustPositionSize converts a signal into a share count bounded by the
// ticker's remaining limit. Signal strength must lie in [-1, 1]; positive
// means buy, negative sell, zero hold.
func (m *Manager) AdjustPositionSize(ticker string, signalStrength, currentPrice float64) (*PositionSizeAdvice, error) {
	if signalStrength < -1 || signalStrength > 1 {
		return nil, fmt.Errorf("signal strength must be in [-1, 1], got %.4f", signalStrength)
	}
	if currentPrice <= 0 {
		return nil, fmt.Errorf("current price must be positive, got %.4f", currentPrice)
	}

	m.stateMu.RLock()
	limit, hasLimit := m.state.PositionLimits[ticker]
	m.stateMu.RUnlock()

	targetValue := limit.RemainingLimit * math.Abs(signalStrength)
	shares := int64(targetValue / currentPrice)
	estimatedValue := float64(shares) * currentPrice

	direction := DirectionHold
	if signalStrength > 0 {
		direction = DirectionBuy
	} else if signalStrength < 0 {
		direction = DirectionSell
	}

	limitUsed := 0.0
	if hasLimit && limit.AdjustedLimit > 0 {
		limitUsed = estimatedValue / limit.AdjustedLimit
	}

	return &PositionSizeAdvice{
		Ticker:         ticker,
		Direction:      direction,
		Shares:         shares,
		EstimatedValue: estimatedValue,
		SignalStrength: signalStrength,
		LimitUsed:      limitUsed,
	}, nil
}

// CheckCircuitBreaker re-evaluates the breaker from the current snapshot.
// There is no hysteresis or dwell time: the flag can flap between
// consecutive analyses if the conditions do.
func (m *Manager) CheckCircuitBreaker() *CircuitBreakerStatus {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	var severeAlerts []Alert
	for _, a := range m.state.Alerts {
		if a.Level == AlertSevere {
			severeAlerts = append(severeAlerts, a)
		}
	}

	maxDrawdown := 0.0
	if m.state.PortfolioMetrics != nil {
		maxDrawdown = m.state.PortfolioMetrics.MaxDrawdown
	}

	tripped := false
	reason := ""
	switch {
	case len(severeAlerts) > 0:
		tripped = true
		reason = "Severe risk alert: " + severeAlerts[0].Message
	case maxDrawdown > m.cfg.MaxDrawdownLimit*1.5:
		tripped = true
		reason = fmt.Sprintf("Excessive drawdown: %.2f%%", maxDrawdown*100)
	}

	if m.state.CircuitBreakerActive != tripped {
		// Snapshot stays immutable: readers holding the old pointer keep a
		// consistent view while the flag changes.
		updated := *m.state
		updated.CircuitBreakerActive = tripped
		m.state = &updated
	}

	if tripped {
		telemetry.CircuitBreakerActive.Set(1)
		logs.Warnf("Circuit breaker active: %s", reason)
	} else {
		telemetry.CircuitBreakerActive.Set(0)
	}

	return &CircuitBreakerStatus{
		Active:    tripped,
		Reason:    reason,
		Timestamp: time.Now(),
		Alerts:    severeAlerts,
	}
}

// GetRiskReport returns the read-only external view of the current
// snapshot.
func (m *Manager) GetRiskReport() *RiskReport {
	m.stateMu.RLock()
	state := m.state
	m.stateMu.RUnlock()

	report := &RiskReport{
		Timestamp:        time.Now(),
		RunID:            state.RunID,
		PortfolioMetrics: state.PortfolioMetrics,
		Alerts:           state.Alerts,
		PositionLimits:   state.PositionLimits,
	}
	report.CircuitBreaker.Active = state.CircuitBreakerActive
	return report
}

// Snapshot returns the current state snapshot. The value is immutable by
// convention; callers must not modify it.
func (m *Manager) Snapshot() *RiskState {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

func sortedMetricKeys(m map[string]*Metrics) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
