package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ranking Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Name:      "searches_total",
			Help:      "Total searches, by effective sort mode and whether similarity scoring ran",
		},
		[]string{"sort_mode", "semantic"},
	)

	SearchFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Name:      "search_fallback_total",
			Help:      "Searches degraded to non-semantic ordering by an embedding failure",
		},
	)

	SearchExcludedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Name:      "search_excluded_candidates_total",
			Help:      "Candidates left out of similarity ranking because no embedding is stored",
		},
	)

	ActivityTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Name:      "activity_total",
			Help:      "Tracked storefront interactions by action",
		},
		[]string{"action"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus ranking metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchFallbackTotal)
	prometheus.MustRegister(SearchExcludedTotal)
	prometheus.MustRegister(ActivityTotal)
	searchMetricsRegistered = true
}
