// monitor/http_test.go
package monitor

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
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

func testManager() *risk.Manager {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]data.PriceBar, 60)
	price := 150.0
	for i := range bars {
		price *= 1 + 0.002*math.Sin(float64(i)*0.9)
		bars[i] = data.PriceBar{Date: start.AddDate(0, 0, i), Close: price}
	}

	cfg := &config.RiskConfig{
		MaxPositionSize:  0.20,
		MaxDrawdownLimit: 0.20,
		VarLimit:         0.05,
		RiskFreeRate:     0.02,
	}
	return risk.NewManager(cfg, &stubHistory{bars: map[string][]data.PriceBar{"AAPL": bars}})
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer(testManager(), ":0")

	rec := doRequest(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestReportEndpointBeforeFirstAnalysis(t *testing.T) {
	s := NewServer(testManager(), ":0")

	rec := doRequest(t, s, "/risk/report")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReportEndpointAfterAnalysis(t *testing.T) {
	m := testManager()
	pf := &portfolio.Portfolio{
		Positions: map[string]portfolio.Holding{
			"AAPL": {LongQuantity: 100, LongCostBasis: 150},
		},
	}
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	result := m.AnalyzePortfolio(context.Background(), pf, end.AddDate(0, 0, -90), end)
	require.Equal(t, risk.StatusSuccess, result.Status)

	s := NewServer(m, ":0")
	rec := doRequest(t, s, "/risk/report")
	require.Equal(t, http.StatusOK, rec.Code)

	var report risk.RiskReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.NotEmpty(t, report.RunID)
	assert.NotNil(t, report.PortfolioMetrics)
}

func TestCircuitBreakerEndpoint(t *testing.T) {
	s := NewServer(testManager(), ":0")

	rec := doRequest(t, s, "/risk/circuit-breaker")
	require.Equal(t, http.StatusOK, rec.Code)

	var status risk.CircuitBreakerStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Active)
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(testManager(), ":0")

	rec := doRequest(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
