package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specdex",
			Name:      "searches_total",
			Help:      "Total number of catalog searches",
		},
		[]string{"outcome"}, // "hits" / "empty"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "specdex",
			Name:      "search_duration_seconds",
			Help:      "Catalog search duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	IndexedProducts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "specdex",
			Name:      "indexed_products",
			Help:      "Number of products in the current index",
		},
	)

	SyncEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specdex",
			Name:      "sync_events_total",
			Help:      "Filter broadcast events by direction",
		},
		[]string{"direction"}, // "published" / "received" / "skipped"
	)
)

// RegisterEngineMetrics registers the engine metrics with the default
// Prometheus registry. Call once at startup.
func RegisterEngineMetrics() {
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(IndexedProducts)
	prometheus.MustRegister(SyncEventsTotal)
}
