// data/yahoo_test.go
package data

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quant_risk_go/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartPayload = `{
  "chart": {
    "result": [{
      "timestamp": [1704153600, 1704240000, 1704326400],
      "indicators": {
        "quote": [{
          "open":   [184.0, 183.5, 0],
          "high":   [186.0, 185.0, 0],
          "low":    [183.0, 182.5, 0],
          "close":  [185.5, 184.2, 0],
          "volume": [50000000, 48000000, 0]
        }],
        "adjclose": [{"adjclose": [185.1, 183.9, 0]}]
      }
    }],
    "error": null
  }
}`

const chartErrorPayload = `{
  "chart": {
    "result": null,
    "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
  }
}`

func yahooTestProvider(handler http.HandlerFunc) (*YahooProvider, *httptest.Server) {
	srv := httptest.NewServer(handler)
	p := NewYahooProvider(&config.YahooConfig{
		BaseURL:            srv.URL,
		HTTPTimeoutSeconds: 2,
		RequestsPerSecond:  1000,
		Burst:              100,
	})
	return p, srv
}

func TestYahooGetPrices(t *testing.T) {
	var gotPath string
	p, srv := yahooTestProvider(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, chartPayload)
	})
	defer srv.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	bars, err := p.GetPrices(context.Background(), "aapl", start, end, IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)

	// The zero-close third row is dropped.
	require.Len(t, bars, 2)
	assert.Equal(t, 185.5, bars[0].Close)
	assert.Equal(t, 185.1, bars[0].AdjustedClose)
	assert.Equal(t, int64(50000000), bars[0].Volume)
	assert.True(t, bars[0].Date.Before(bars[1].Date))
}

func TestYahooGetPricesChartError(t *testing.T) {
	p, srv := yahooTestProvider(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chartErrorPayload)
	})
	defer srv.Close()

	bars, err := p.GetPrices(context.Background(), "GONE", time.Now().AddDate(0, 0, -5), time.Now(), IntervalDaily)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestYahooGetPricesServerError(t *testing.T) {
	p, srv := yahooTestProvider(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := p.GetPrices(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now(), IntervalDaily)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")
}

func TestYahooBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	p, srv := yahooTestProvider(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer srv.Close()

	start := time.Now().AddDate(0, 0, -5)
	for i := 0; i < 5; i++ {
		_, err := p.GetPrices(context.Background(), "AAPL", start, time.Now(), IntervalDaily)
		require.Error(t, err)
	}

	// Breaker is open now; the request fails without touching the server.
	_, err := p.GetPrices(context.Background(), "AAPL", start, time.Now(), IntervalDaily)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestYahooGetFundamentals(t *testing.T) {
	p, srv := yahooTestProvider(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"AAPL","longName":"Apple Inc.","marketCap":3.0e12,"trailingPE":35.0}]}}`)
	})
	defer srv.Close()

	f, err := p.GetFundamentals(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", f.Name)
	assert.Equal(t, 35.0, f.PERatio)
}
