package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		adminAPIRequests,
		adminAPIDuration,
	)
}

var (
	// route is the chi route pattern, never the raw path.
	adminAPIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_api_requests_total",
			Help: "Admin HTTP API calls by route and status code.",
		},
		[]string{"route", "status"},
	)

	adminAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_api_duration_seconds",
			Help:    "Duration of admin HTTP API handlers in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"route"},
	)
)

func ObserveAdminAPI(route string, status int, seconds float64) {
	adminAPIRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	adminAPIDuration.WithLabelValues(route).Observe(seconds)
}
