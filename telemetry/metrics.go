// telemetry/metrics.go
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysesTotal counts AnalyzePortfolio runs by result status.
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantrisk",
		Name:      "analyses_total",
		Help:      "Portfolio risk analyses by status.",
	}, []string{"status"})

	// AlertsTotal counts risk alerts raised, by alert type.
	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantrisk",
		Name:      "alerts_total",
		Help:      "Risk alerts raised by type.",
	}, []string{"type"})

	// CircuitBreakerActive is 1 while the portfolio circuit breaker is tripped.
	CircuitBreakerActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quantrisk",
		Name:      "circuit_breaker_active",
		Help:      "Whether the portfolio circuit breaker is currently active.",
	})

	// CacheHits / CacheMisses track data-cache effectiveness.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quantrisk",
		Name:      "cache_hits_total",
		Help:      "Data cache hits.",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quantrisk",
		Name:      "cache_misses_total",
		Help:      "Data cache misses.",
	})

	// ProviderRequests counts upstream data-source requests by source and outcome.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantrisk",
		Name:      "provider_requests_total",
		Help:      "Upstream data provider requests by source and outcome.",
	}, []string{"source", "outcome"})
)
