// data/yahoo.go
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"quant_risk_go/config"
	"quant_risk_go/logs"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// YahooProvider fetches daily bars from the Yahoo Finance chart API.
// Requests are rate limited and routed through a circuit breaker so a
// misbehaving upstream degrades to cache/fallback instead of hammering the
// endpoint. This breaker protects the transport only; the portfolio-level
// circuit breaker lives in the risk package.
type YahooProvider struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func NewYahooProvider(cfg *config.YahooConfig) *YahooProvider {
	settings := gobreaker.Settings{
		Name:     "yahoo",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logs.Warnf("[Yahoo] circuit breaker %s: %s -> %s", name, from, to)
		},
	}

	return &YahooProvider{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// chartResponse mirrors the subset of the v8 chart payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetPrices returns ascending daily bars for [start, end]. A range with no
// data yields an empty slice, not an error.
func (p *YahooProvider) GetPrices(ctx context.Context, ticker string, start, end time.Time, interval string) ([]PriceBar, error) {
	ticker = normalizeTicker(ticker)
	if interval == "" {
		interval = IntervalDaily
	}

	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", start.Unix()))
	// The chart API treats period2 as exclusive; push it one day out so the
	// end date itself is included.
	params.Set("period2", fmt.Sprintf("%d", end.AddDate(0, 0, 1).Unix()))
	params.Set("interval", interval)
	params.Set("events", "history")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(ticker), params.Encode())

	var parsed chartResponse
	if err := p.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("yahoo chart request for %s failed: %w", ticker, err)
	}

	if parsed.Chart.Error != nil {
		// "Not Found" style responses mean no data for the range.
		logs.Warnf("[Yahoo] chart error for %s: %s (%s)", ticker, parsed.Chart.Error.Description, parsed.Chart.Error.Code)
		return []PriceBar{}, nil
	}
	if len(parsed.Chart.Result) == 0 {
		return []PriceBar{}, nil
	}

	result := parsed.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return []PriceBar{}, nil
	}

	quote := result.Indicators.Quote[0]
	var adj []float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue // partially-populated rows happen on halted days
		}
		bar := PriceBar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  quote.Close[i],
			Volume: atInt(quote.Volume, i),
		}
		if i < len(adj) {
			bar.AdjustedClose = adj[i]
		}
		bars = append(bars, bar)
	}

	SortBars(bars)
	return bars, nil
}

// GetFundamentals returns a minimal snapshot from the quote endpoint. Yahoo
// gates the richer quoteSummary modules behind session crumbs, so coverage
// here is intentionally thin.
func (p *YahooProvider) GetFundamentals(ctx context.Context, ticker string) (*Fundamentals, error) {
	ticker = normalizeTicker(ticker)

	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", p.baseURL, url.QueryEscape(ticker))

	var parsed struct {
		QuoteResponse struct {
			Result []struct {
				Symbol                    string  `json:"symbol"`
				LongName                  string  `json:"longName"`
				MarketCap                 float64 `json:"marketCap"`
				TrailingPE                float64 `json:"trailingPE"`
				ForwardPE                 float64 `json:"forwardPE"`
				TrailingAnnualDividendYld float64 `json:"trailingAnnualDividendYield"`
				EpsTrailingTwelveMonths   float64 `json:"epsTrailingTwelveMonths"`
				PriceToBook               float64 `json:"priceToBook"`
			} `json:"result"`
		} `json:"quoteResponse"`
	}

	if err := p.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("yahoo quote request for %s failed: %w", ticker, err)
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	q := parsed.QuoteResponse.Result[0]
	return &Fundamentals{
		Ticker:        q.Symbol,
		Name:          q.LongName,
		MarketCap:     q.MarketCap,
		PERatio:       q.TrailingPE,
		ForwardPE:     q.ForwardPE,
		DividendYield: q.TrailingAnnualDividendYld,
		EPS:           q.EpsTrailingTwelveMonths,
		PriceToBook:   q.PriceToBook,
		LastUpdated:   time.Now().Format("2006-01-02 15:04:05"),
	}, nil
}

// getJSON performs a rate-limited, breaker-guarded GET and decodes the body.
func (p *YahooProvider) getJSON(ctx context.Context, endpoint string, target interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; quant-risk/1.0)")

		resp, err := p.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
		}
		return nil, json.Unmarshal(body, target)
	})
	return err
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func atInt(values []int64, i int) int64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
