package metrics

import "github.com/prometheus/client_golang/prometheus"

// Product search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodlens",
			Name:      "search_requests_total",
			Help:      "Total number of outbound product search requests",
		},
		[]string{"status"}, // "ok" / "http_error" / "network_error" / "malformed"
	)

	SearchRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prodlens",
			Name:      "search_request_duration_seconds",
			Help:      "Outbound product search duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SearchMatches = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prodlens",
			Name:      "search_matches",
			Help:      "Number of matches returned per successful search",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	HandoffTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodlens",
			Name:      "handoff_total",
			Help:      "Cross-page handoff operations",
		},
		[]string{"op", "result"}, // op: "put" / "take"; result: "ok" / "empty" / "error"
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodlens",
			Name:      "notifications_total",
			Help:      "User-facing notifications emitted",
		},
		[]string{"title"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SearchMatches)
	prometheus.MustRegister(HandoffTotal)
	prometheus.MustRegister(NotificationsTotal)
	searchMetricsRegistered = true
}
