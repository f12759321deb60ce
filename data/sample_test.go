// data/sample_test.go
package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleProviderDeterministic(t *testing.T) {
	p := NewSampleProvider()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	first, err := p.GetPrices(context.Background(), "AAPL", start, end, IntervalDaily)
	require.NoError(t, err)
	second, err := p.GetPrices(context.Background(), "AAPL", start, end, IntervalDaily)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSampleProviderBusinessDaysOnly(t *testing.T) {
	p := NewSampleProvider()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	bars, err := p.GetPrices(context.Background(), "MSFT", start, end, IntervalDaily)
	require.NoError(t, err)
	require.NotEmpty(t, bars)

	// January 2024 has 23 weekdays.
	assert.Len(t, bars, 23)

	for i, b := range bars {
		wd := b.Date.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
		assert.Greater(t, b.Close, 0.0)
		assert.GreaterOrEqual(t, b.High, b.Close)
		assert.LessOrEqual(t, b.Low, b.Close)
		if i > 0 {
			assert.True(t, b.Date.After(bars[i-1].Date))
		}
	}
}

func TestSampleProviderDistinctTickers(t *testing.T) {
	p := NewSampleProvider()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	aapl, err := p.GetPrices(context.Background(), "AAPL", start, end, IntervalDaily)
	require.NoError(t, err)
	googl, err := p.GetPrices(context.Background(), "GOOGL", start, end, IntervalDaily)
	require.NoError(t, err)

	require.Equal(t, len(aapl), len(googl))
	assert.NotEqual(t, aapl[0].Close, googl[0].Close)
}

func TestSampleProviderInvertedRange(t *testing.T) {
	p := NewSampleProvider()
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	bars, err := p.GetPrices(context.Background(), "AAPL", end.AddDate(0, 0, 10), end, IntervalDaily)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestSampleProviderFundamentals(t *testing.T) {
	p := NewSampleProvider()

	f, err := p.GetFundamentals(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", f.Ticker)
	assert.Equal(t, "Technology", f.Sector)

	generic, err := p.GetFundamentals(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Equal(t, "ZZZZ", generic.Ticker)
	assert.Equal(t, "Unknown", generic.Sector)
}
