// data/cache_test.go
package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCache("", time.Hour, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testBars() []PriceBar {
	return []PriceBar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 100, Volume: 1000},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 101, Volume: 1100},
	}
}

func TestCachePriceRoundtrip(t *testing.T) {
	c := newTestCache(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	_, ok := c.GetPrices("sample", "AAPL", start, end, IntervalDaily)
	assert.False(t, ok)

	require.NoError(t, c.SetPrices("sample", "AAPL", start, end, IntervalDaily, testBars()))

	got, ok := c.GetPrices("sample", "AAPL", start, end, IntervalDaily)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, 100.0, got[0].Close)
	assert.True(t, got[0].Date.Equal(testBars()[0].Date))
}

func TestCacheKeyIncludesRangeAndSource(t *testing.T) {
	c := newTestCache(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SetPrices("sample", "AAPL", start, end, IntervalDaily, testBars()))

	_, ok := c.GetPrices("yahoo", "AAPL", start, end, IntervalDaily)
	assert.False(t, ok)
	_, ok = c.GetPrices("sample", "AAPL", start, end.AddDate(0, 0, 1), IntervalDaily)
	assert.False(t, ok)
}

func TestCacheFundamentalsRoundtrip(t *testing.T) {
	c := newTestCache(t)

	_, ok := c.GetFundamentals("sample", "AAPL")
	assert.False(t, ok)

	require.NoError(t, c.SetFundamentals("sample", "AAPL", &Fundamentals{Ticker: "AAPL", Sector: "Technology"}))

	f, ok := c.GetFundamentals("sample", "AAPL")
	require.True(t, ok)
	assert.Equal(t, "Technology", f.Sector)
}

func TestCacheTTLExpiry(t *testing.T) {
	c, err := NewCache("", 100*time.Millisecond, 100*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.SetFundamentals("sample", "AAPL", &Fundamentals{Ticker: "AAPL"}))
	time.Sleep(1100 * time.Millisecond)

	_, ok := c.GetFundamentals("sample", "AAPL")
	assert.False(t, ok)
}

func TestCacheClearTicker(t *testing.T) {
	c := newTestCache(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SetPrices("sample", "AAPL", start, end, IntervalDaily, testBars()))
	require.NoError(t, c.SetFundamentals("sample", "AAPL", &Fundamentals{Ticker: "AAPL"}))
	require.NoError(t, c.SetPrices("sample", "MSFT", start, end, IntervalDaily, testBars()))

	removed, err := c.ClearTicker("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := c.GetPrices("sample", "AAPL", start, end, IntervalDaily)
	assert.False(t, ok)
	_, ok = c.GetPrices("sample", "MSFT", start, end, IntervalDaily)
	assert.True(t, ok)
}

func TestCacheStats(t *testing.T) {
	c := newTestCache(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SetPrices("sample", "AAPL", start, end, IntervalDaily, testBars()))
	require.NoError(t, c.SetFundamentals("sample", "AAPL", &Fundamentals{Ticker: "AAPL"}))

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1.0, stats.PriceTTLHours)
}
