package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dedupLookupsTotal) }

var dedupLookupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "update_dedup_lookups_total",
		Help: "Redelivery guard lookups by result.",
	},
	[]string{"result"}, // 'first', 'duplicate', 'error'
)

func IncDedupLookup(result string) {
	dedupLookupsTotal.WithLabelValues(norm(result)).Inc()
}
