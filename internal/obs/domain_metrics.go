package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutBuildTotal counts checkout builds by outcome code.
	CheckoutBuildTotal *prometheus.CounterVec
	// CheckoutBuildDuration records checkout build latency in milliseconds.
	CheckoutBuildDuration *prometheus.HistogramVec
	// CatalogLookupTotal counts catalog store queries by backend and result.
	CatalogLookupTotal *prometheus.CounterVec
	// CatalogCacheTotal counts catalog cache lookups per product by result.
	CatalogCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutBuildTotal = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_build_total",
			Help:      "Count of checkout builds by outcome.",
		}, []string{"result"}))
		CheckoutBuildDuration = registerOrReuse(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_build_duration_ms",
			Help:      "Latency of checkout builds in milliseconds, catalog fetch included.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"result"}))
		CatalogLookupTotal = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_lookup_total",
			Help:      "Count of catalog store lookups by backend and result.",
		}, []string{"source", "result"}))
		CatalogCacheTotal = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Count of per-product catalog cache outcomes.",
		}, []string{"result"}))
	})
}

// ObserveCheckoutBuild records one checkout build. result is "ok" or an error code.
func ObserveCheckoutBuild(result string, durationMs float64) {
	if CheckoutBuildTotal != nil {
		CheckoutBuildTotal.WithLabelValues(result).Inc()
	}
	if CheckoutBuildDuration != nil {
		CheckoutBuildDuration.WithLabelValues(result).Observe(durationMs)
	}
}

// ObserveCatalogLookup records a catalog store query outcome.
func ObserveCatalogLookup(source string, err error) {
	if CatalogLookupTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	CatalogLookupTotal.WithLabelValues(source, result).Inc()
}

// ObserveCatalogCache adds n per-product cache outcomes.
func ObserveCatalogCache(result string, n int) {
	if CatalogCacheTotal == nil || n <= 0 {
		return
	}
	CatalogCacheTotal.WithLabelValues(result).Add(float64(n))
}
