// agent/agent_test.go
package agent

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"quant_risk_go/config"
	"quant_risk_go/data"
	"quant_risk_go/portfolio"
	"quant_risk_go/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHistory struct {
	bars map[string][]data.PriceBar
}

func (s *stubHistory) GetPrices(_ context.Context, ticker string, _, _ time.Time) ([]data.PriceBar, error) {
	return s.bars[ticker], nil
}

func waveBars(n int, level float64) []data.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]data.PriceBar, n)
	price := level
	for i := range bars {
		price *= 1 + 0.002*math.Sin(float64(i)*0.9)
		bars[i] = data.PriceBar{Date: start.AddDate(0, 0, i), Close: price}
	}
	return bars
}

func testAgent() (*Agent, *portfolio.Portfolio) {
	history := &stubHistory{bars: map[string][]data.PriceBar{
		"AAPL": waveBars(60, 150),
		"MSFT": waveBars(60, 300),
	}}
	cfg := &config.RiskConfig{
		MaxPositionSize:  0.20,
		MaxDrawdownLimit: 0.20,
		VarLimit:         0.05,
		RiskFreeRate:     0.02,
	}
	manager := risk.NewManager(cfg, history)
	pf := &portfolio.Portfolio{
		Cash: 20000,
		Positions: map[string]portfolio.Holding{
			"AAPL": {LongQuantity: 100, LongCostBasis: 150},
			"MSFT": {LongQuantity: 50, LongCostBasis: 300},
		},
	}
	return New(manager, history, 90), pf
}

func TestAgentMessageShape(t *testing.T) {
	a, pf := testAgent()
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	msg, err := a.Run(context.Background(), pf, end)
	require.NoError(t, err)
	assert.Equal(t, AgentName, msg.Name)
	assert.NotEmpty(t, msg.RunID)

	var content map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(msg.Content, &content))
	require.Contains(t, content, "AAPL")
	require.Contains(t, content, "MSFT")
	require.Contains(t, content, "_portfolio")

	var aapl TickerRisk
	require.NoError(t, json.Unmarshal(content["AAPL"], &aapl))
	assert.Greater(t, aapl.CurrentPrice, 0.0)
	assert.GreaterOrEqual(t, aapl.RemainingPositionLimit, 0.0)
	assert.Greater(t, aapl.Volatility, 0.0)
	assert.InDelta(t, pf.TotalValue(), aapl.Reasoning.PortfolioValue, 1e-9)
	assert.Equal(t, 20000.0, aapl.Reasoning.AvailableCash)

	var pm PortfolioRisk
	require.NoError(t, json.Unmarshal(content["_portfolio"], &pm))
	assert.Greater(t, pm.Volatility, 0.0)
	assert.False(t, pm.CircuitBreaker)
}

func TestAgentFailsWithoutData(t *testing.T) {
	cfg := &config.RiskConfig{
		MaxPositionSize:  0.20,
		MaxDrawdownLimit: 0.20,
		VarLimit:         0.05,
		RiskFreeRate:     0.02,
	}
	history := &stubHistory{bars: map[string][]data.PriceBar{}}
	manager := risk.NewManager(cfg, history)
	a := New(manager, history, 90)

	pf := &portfolio.Portfolio{
		Cash:      1000,
		Positions: map[string]portfolio.Holding{"AAPL": {LongQuantity: 1, LongCostBasis: 150}},
	}

	_, err := a.Run(context.Background(), pf, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "risk analysis failed")
}

func TestAgentDefaultLookback(t *testing.T) {
	a := New(nil, nil, 0)
	assert.Equal(t, 90, a.lookbackDays)
}
