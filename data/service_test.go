// data/service_test.go
package data

import (
	"context"
	"testing"
	"time"

	"quant_risk_go/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider wraps the sample provider and counts upstream calls so
// tests can tell a cache hit from a fetch.
type countingProvider struct {
	inner *SampleProvider
	calls int
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) GetPrices(ctx context.Context, ticker string, start, end time.Time, interval string) ([]PriceBar, error) {
	p.calls++
	return p.inner.GetPrices(ctx, ticker, start, end, interval)
}

func (p *countingProvider) GetFundamentals(ctx context.Context, ticker string) (*Fundamentals, error) {
	p.calls++
	return p.inner.GetFundamentals(ctx, ticker)
}

func testDataConfig() *config.DataConfig {
	return &config.DataConfig{
		DefaultSource:            "sample",
		PriceCacheTTLHours:       6,
		FundamentalCacheTTLHours: 2,
		Yahoo: &config.YahooConfig{
			BaseURL:            "http://localhost:0",
			HTTPTimeoutSeconds: 1,
			RequestsPerSecond:  100,
			Burst:              1,
		},
	}
}

func TestServiceCachesPrices(t *testing.T) {
	cache := newTestCache(t)
	s := NewService(testDataConfig(), cache)

	counting := &countingProvider{inner: NewSampleProvider()}
	s.adapters["counting"] = counting

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	first, err := s.GetPricesFromSource(context.Background(), "counting", "AAPL", start, end, IntervalDaily)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.Equal(t, 1, counting.calls)

	second, err := s.GetPricesFromSource(context.Background(), "counting", "AAPL", start, end, IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, counting.calls)
}

func TestServiceWithoutCacheAlwaysFetches(t *testing.T) {
	s := NewService(testDataConfig(), nil)
	counting := &countingProvider{inner: NewSampleProvider()}
	s.adapters["counting"] = counting

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		_, err := s.GetPricesFromSource(context.Background(), "counting", "AAPL", start, end, IntervalDaily)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, counting.calls)
}

func TestServiceFallsBackOnUnknownSource(t *testing.T) {
	s := NewService(testDataConfig(), nil)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	bars, err := s.GetPricesFromSource(context.Background(), "bloomberg", "AAPL", start, end, IntervalDaily)
	require.NoError(t, err)
	assert.NotEmpty(t, bars)
}

func TestServiceDefaultSource(t *testing.T) {
	s := NewService(testDataConfig(), nil)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	bars, err := s.GetPrices(context.Background(), "aapl", start, end)
	require.NoError(t, err)
	assert.NotEmpty(t, bars)

	sample, err := NewSampleProvider().GetPrices(context.Background(), "AAPL", start, end, IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, sample, bars)
}

func TestServiceFundamentalsCached(t *testing.T) {
	cache := newTestCache(t)
	cfg := testDataConfig()
	s := NewService(cfg, cache)

	f, err := s.GetFundamentals(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", f.Ticker)

	cached, ok := cache.GetFundamentals("sample", "AAPL")
	require.True(t, ok)
	assert.Equal(t, f.Sector, cached.Sector)
}

func TestServiceSourcesSorted(t *testing.T) {
	s := NewService(testDataConfig(), nil)
	assert.Equal(t, []string{"sample", "yahoo"}, s.Sources())
}

func TestServiceClearTickerCache(t *testing.T) {
	cache := newTestCache(t)
	s := NewService(testDataConfig(), cache)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	_, err := s.GetPrices(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	removed, err := s.ClearTickerCache("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
