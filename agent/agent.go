// agent/agent.go
//
// The risk management agent wraps the risk manager in a message-producing
// loop step: run an analysis over a trailing window, evaluate the circuit
// breaker, and emit one structured message with per-ticker risk guidance
// plus a portfolio-level record.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quant_risk_go/logs"
	"quant_risk_go/portfolio"
	"quant_risk_go/risk"

	"github.com/google/uuid"
)

// AgentName identifies the producer in every emitted message.
const AgentName = "risk_management_agent"

// portfolioKey is the reserved content key for the portfolio-level record.
// Ticker symbols never start with an underscore, so it cannot collide.
const portfolioKey = "_portfolio"

// Message is the agent's output envelope.
type Message struct {
	Name    string          `json:"name"`
	RunID   string          `json:"run_id"`
	Content json.RawMessage `json:"content"`
}

// TickerRisk is the per-ticker guidance block.
type TickerRisk struct {
	RemainingPositionLimit float64   `json:"remaining_position_limit"`
	CurrentPrice           float64   `json:"current_price"`
	Volatility             float64   `json:"volatility"`
	VaR95                  float64   `json:"var_95"`
	MaxDrawdown            float64   `json:"max_drawdown"`
	CircuitBreakerActive   bool      `json:"circuit_breaker_active"`
	Reasoning              Reasoning `json:"reasoning"`

	Alerts []risk.Alert `json:"alerts,omitempty"`
}

// Reasoning explains how the remaining limit was derived.
type Reasoning struct {
	PortfolioValue   float64 `json:"portfolio_value"`
	PositionLimit    float64 `json:"position_limit"`
	VolatilityFactor float64 `json:"volatility_factor"`
	AvailableCash    float64 `json:"available_cash"`
}

// PortfolioRisk is the value stored under the portfolio key.
type PortfolioRisk struct {
	VaR95          float64 `json:"var_95"`
	CVaR95         float64 `json:"cvar_95"`
	Volatility     float64 `json:"volatility"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	CircuitBreaker bool    `json:"circuit_breaker"`
}

// Agent runs risk analysis over a trailing lookback window and turns the
// resulting snapshot into trade-limit guidance per ticker.
type Agent struct {
	manager      *risk.Manager
	prices       risk.PriceHistory
	lookbackDays int
}

// New builds an agent. lookbackDays values below 2 are raised to the
// default 90-day window since metrics need at least two bars.
func New(manager *risk.Manager, prices risk.PriceHistory, lookbackDays int) *Agent {
	if lookbackDays < 2 {
		lookbackDays = 90
	}
	return &Agent{manager: manager, prices: prices, lookbackDays: lookbackDays}
}

// Run analyzes the portfolio as of endDate and returns the guidance
// message. A failed analysis is an error here: the agent has nothing
// useful to say without fresh metrics.
func (a *Agent) Run(ctx context.Context, pf *portfolio.Portfolio, endDate time.Time) (*Message, error) {
	start := endDate.AddDate(0, 0, -a.lookbackDays)

	result := a.manager.AnalyzePortfolio(ctx, pf, start, endDate)
	if result.Status != risk.StatusSuccess {
		return nil, fmt.Errorf("risk analysis failed: %s", result.Message)
	}
	breaker := a.manager.CheckCircuitBreaker()
	state := a.manager.Snapshot()

	content := make(map[string]interface{}, len(pf.Positions)+1)
	for _, ticker := range pf.Tickers() {
		entry, err := a.tickerGuidance(ctx, ticker, pf, state, breaker.Active, endDate)
		if err != nil {
			logs.Warnf("Skipping guidance for %s: %v", ticker, err)
			continue
		}
		content[ticker] = entry
	}

	if state.PortfolioMetrics != nil {
		content[portfolioKey] = PortfolioRisk{
			VaR95:          state.PortfolioMetrics.VaR95,
			CVaR95:         state.PortfolioMetrics.CVaR95,
			Volatility:     state.PortfolioMetrics.Volatility,
			MaxDrawdown:    state.PortfolioMetrics.MaxDrawdown,
			SharpeRatio:    state.PortfolioMetrics.SharpeRatio,
			CircuitBreaker: breaker.Active,
		}
	}

	payload, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encoding agent content: %w", err)
	}
	return &Message{Name: AgentName, RunID: uuid.NewString(), Content: payload}, nil
}

func (a *Agent) tickerGuidance(ctx context.Context, ticker string, pf *portfolio.Portfolio, state *risk.RiskState, breakerActive bool, endDate time.Time) (*TickerRisk, error) {
	price, err := a.currentPrice(ctx, ticker, endDate)
	if err != nil {
		return nil, err
	}

	limit := state.PositionLimits[ticker]
	entry := &TickerRisk{
		RemainingPositionLimit: limit.RemainingLimit,
		CurrentPrice:           price,
		CircuitBreakerActive:   breakerActive,
		Reasoning: Reasoning{
			PortfolioValue:   pf.TotalValue(),
			PositionLimit:    limit.AdjustedLimit,
			VolatilityFactor: limit.VolatilityFactor,
			AvailableCash:    pf.Cash,
		},
	}

	if metrics, ok := state.AssetMetrics[ticker]; ok {
		entry.Volatility = metrics.Volatility
		entry.VaR95 = metrics.VaR95
		entry.MaxDrawdown = metrics.MaxDrawdown
	}

	for _, alert := range state.Alerts {
		if alert.Ticker == ticker {
			entry.Alerts = append(entry.Alerts, alert)
		}
	}
	return entry, nil
}

// currentPrice uses the most recent close in the two weeks up to endDate,
// enough span to straddle weekends and market holidays.
func (a *Agent) currentPrice(ctx context.Context, ticker string, endDate time.Time) (float64, error) {
	bars, err := a.prices.GetPrices(ctx, ticker, endDate.AddDate(0, 0, -14), endDate)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("no recent price for %s", ticker)
	}
	return bars[len(bars)-1].Close, nil
}
