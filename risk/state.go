// risk/state.go
package risk

import "time"

// AlertLevel is the severity of a risk alert.
type AlertLevel string

const (
	AlertInfo    AlertLevel = "info"
	AlertWarning AlertLevel = "warning"
	AlertSevere  AlertLevel = "severe"
)

// AlertType identifies which rule raised the alert.
type AlertType string

const (
	AlertVarBreach      AlertType = "var_breach"
	AlertDrawdownBreach AlertType = "drawdown_breach"
	AlertHighVolatility AlertType = "high_volatility"
)

// Alert is one rule breach observed during an analysis. Alerts are created
// fresh on every AnalyzePortfolio call and never accumulate across calls.
type Alert struct {
	ID      string     `json:"id"`
	Level   AlertLevel `json:"level"`
	Type    AlertType  `json:"type"`
	Message string     `json:"message"`
	Ticker  string     `json:"ticker,omitempty"`
	Value   float64    `json:"value"`
	Limit   *float64   `json:"limit,omitempty"`
}

// PositionLimit is the per-ticker exposure budget derived from the latest
// analysis. RemainingLimit is never negative; AdjustedLimit is always
// BaseLimit scaled by the volatility factor in [0.2, 1.0].
type PositionLimit struct {
	BaseLimit        float64 `json:"base_limit"`
	AdjustedLimit    float64 `json:"adjusted_limit"`
	CurrentValue     float64 `json:"current_value"`
	RemainingLimit   float64 `json:"remaining_limit"`
	VolatilityFactor float64 `json:"volatility_factor"`
}

// RiskState is one immutable analysis snapshot. AnalyzePortfolio builds a
// complete new value and swaps it in atomically; readers hold a reference to
// whichever snapshot was current when they looked, so they never observe a
// mix of two runs.
type RiskState struct {
	RunID                string                    `json:"run_id"`
	UpdatedAt            time.Time                 `json:"updated_at"`
	Alerts               []Alert                   `json:"alerts"`
	PositionLimits       map[string]PositionLimit  `json:"position_limits"`
	PortfolioMetrics     *Metrics                  `json:"portfolio_metrics"`
	AssetMetrics         map[string]*Metrics       `json:"asset_metrics"`
	Correlations         *CorrelationMatrix        `json:"correlation_matrix"`
	RiskContribution     map[string]float64        `json:"risk_contribution"`
	CircuitBreakerActive bool                      `json:"circuit_breaker_active"`
}

// AnalysisStatus distinguishes a usable analysis from a failed one. Failed
// analyses still return a well-formed result, never a bare error value.
type AnalysisStatus string

const (
	StatusSuccess AnalysisStatus = "success"
	StatusError   AnalysisStatus = "error"
)

// AnalysisResult is the full payload of one AnalyzePortfolio call.
type AnalysisResult struct {
	Status           AnalysisStatus           `json:"status"`
	Message          string                   `json:"message,omitempty"`
	PortfolioMetrics *Metrics                 `json:"portfolio_metrics,omitempty"`
	AssetMetrics     map[string]*Metrics      `json:"asset_metrics,omitempty"`
	Correlations     *CorrelationMatrix       `json:"correlation_matrix,omitempty"`
	RiskContribution map[string]float64       `json:"risk_contribution,omitempty"`
	Alerts           []Alert                  `json:"alerts,omitempty"`
	PositionLimits   map[string]PositionLimit `json:"position_limits,omitempty"`
}

// TradeDirection is the suggested action from AdjustPositionSize.
type TradeDirection string

const (
	DirectionBuy  TradeDirection = "buy"
	DirectionSell TradeDirection = "sell"
	DirectionHold TradeDirection = "hold"
)

// PositionSizeAdvice is the sizing suggestion for one signal.
type PositionSizeAdvice struct {
	Ticker         string         `json:"ticker"`
	Direction      TradeDirection `json:"direction"`
	Shares         int64          `json:"shares"`
	EstimatedValue float64        `json:"estimated_value"`
	SignalStrength float64        `json:"signal_strength"`
	LimitUsed      float64        `json:"limit_used"`
}

// CircuitBreakerStatus is the outcome of one CheckCircuitBreaker evaluation.
type CircuitBreakerStatus struct {
	Active    bool      `json:"active"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Alerts    []Alert   `json:"alerts"`
}

// RiskReport is the read-only external view of the current snapshot.
type RiskReport struct {
	Timestamp        time.Time                `json:"timestamp"`
	RunID            string                   `json:"run_id,omitempty"`
	PortfolioMetrics *Metrics                 `json:"portfolio_metrics,omitempty"`
	Alerts           []Alert                  `json:"alerts"`
	PositionLimits   map[string]PositionLimit `json:"position_limits"`
	CircuitBreaker   struct {
		Active bool `json:"active"`
	} `json:"circuit_breaker"`
}
