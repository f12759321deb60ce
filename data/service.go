// data/service.go
package data

import (
	"context"
	"sort"
	"time"

	"quant_risk_go/config"
	"quant_risk_go/logs"
	"quant_risk_go/telemetry"
)

// Service coordinates the named source adapters and the TTL cache behind a
// single access point. Callers never learn whether a series came from cache
// or from the wire.
type Service struct {
	adapters      map[string]Provider
	defaultSource string
	cache         *Cache
}

// NewService wires the built-in adapters. cache may be nil, in which case
// every read goes to the source.
func NewService(cfg *config.DataConfig, cache *Cache) *Service {
	s := &Service{
		adapters: map[string]Provider{
			"sample": NewSampleProvider(),
			"yahoo":  NewYahooProvider(cfg.Yahoo),
		},
		defaultSource: cfg.DefaultSource,
		cache:         cache,
	}
	logs.Infof("Data service initialized with sources %v, default '%s'", s.Sources(), s.defaultSource)
	return s
}

// resolve picks the requested adapter, falling back to any available one
// with a logged error when the name is unknown.
func (s *Service) resolve(source string) (string, Provider) {
	if source == "" {
		source = s.defaultSource
	}
	if adapter, ok := s.adapters[source]; ok {
		return source, adapter
	}

	names := s.Sources()
	logs.Errorf("Data source '%s' not available, falling back to '%s' (available: %v)", source, names[0], names)
	return names[0], s.adapters[names[0]]
}

// GetPrices returns the daily bar series for [start, end] from the default
// source, served from cache when fresh.
func (s *Service) GetPrices(ctx context.Context, ticker string, start, end time.Time) ([]PriceBar, error) {
	return s.GetPricesFromSource(ctx, "", ticker, start, end, IntervalDaily)
}

// GetPricesFromSource is GetPrices with an explicit source and interval.
func (s *Service) GetPricesFromSource(ctx context.Context, source, ticker string, start, end time.Time, interval string) ([]PriceBar, error) {
	ticker = normalizeTicker(ticker)
	source, adapter := s.resolve(source)

	if s.cache != nil {
		if bars, ok := s.cache.GetPrices(source, ticker, start, end, interval); ok {
			telemetry.CacheHits.Inc()
			logs.Debugf("Cache hit for %s prices from %s", ticker, source)
			return bars, nil
		}
		telemetry.CacheMisses.Inc()
	}

	logs.Infof("Fetching %s prices from %s (%s to %s)", ticker, source,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	bars, err := adapter.GetPrices(ctx, ticker, start, end, interval)
	if err != nil {
		telemetry.ProviderRequests.WithLabelValues(source, "error").Inc()
		return nil, err
	}
	telemetry.ProviderRequests.WithLabelValues(source, "ok").Inc()

	if s.cache != nil && len(bars) > 0 {
		if err := s.cache.SetPrices(source, ticker, start, end, interval, bars); err != nil {
			logs.Warnf("Failed to cache %s prices: %v", ticker, err)
		}
	}

	return bars, nil
}

// GetFundamentals returns the fundamental snapshot for a ticker, cached on a
// shorter TTL than prices.
func (s *Service) GetFundamentals(ctx context.Context, ticker string) (*Fundamentals, error) {
	ticker = normalizeTicker(ticker)
	source, adapter := s.resolve("")

	if s.cache != nil {
		if f, ok := s.cache.GetFundamentals(source, ticker); ok {
			telemetry.CacheHits.Inc()
			return f, nil
		}
		telemetry.CacheMisses.Inc()
	}

	logs.Infof("Fetching %s fundamentals from %s", ticker, source)
	f, err := adapter.GetFundamentals(ctx, ticker)
	if err != nil {
		telemetry.ProviderRequests.WithLabelValues(source, "error").Inc()
		return nil, err
	}
	telemetry.ProviderRequests.WithLabelValues(source, "ok").Inc()

	if s.cache != nil && f != nil {
		if err := s.cache.SetFundamentals(source, ticker, f); err != nil {
			logs.Warnf("Failed to cache %s fundamentals: %v", ticker, err)
		}
	}

	return f, nil
}

// ClearTickerCache drops all cached entries for one symbol.
func (s *Service) ClearTickerCache(ticker string) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.ClearTicker(normalizeTicker(ticker))
}

// CacheStats reports cache statistics, zero-valued without a cache.
func (s *Service) CacheStats() CacheStats {
	if s.cache == nil {
		return CacheStats{}
	}
	return s.cache.Stats()
}

// Sources lists the available adapter names, sorted.
func (s *Service) Sources() []string {
	names := make([]string, 0, len(s.adapters))
	for name := range s.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
