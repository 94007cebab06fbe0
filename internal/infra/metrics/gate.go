package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(membershipChecksTotal, membershipCheckLatency) }

var (
	membershipChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_checks_total",
			Help: "Membership gate decisions.",
		},
		[]string{"result"}, // allowed | denied | error
	)

	membershipCheckLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "membership_check_latency_ms",
			Help:    "Latency of membership lookups in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
	)
)

func IncMembershipCheck(result string) {
	membershipChecksTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveMembershipLatency(ms int64) {
	membershipCheckLatency.Observe(float64(ms))
}
