package metrics

import (
	"telegram-subscription-gate/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(storeAggregate) }

var storeAggregate = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "store_aggregate",
		Help: "Last sampled store totals.",
	},
	[]string{"field"}, // 'users', 'counter_a', 'counter_b'
)

func SetAggregate(snap *model.AggregateSnapshot) {
	if snap == nil {
		return
	}
	storeAggregate.WithLabelValues("users").Set(float64(snap.TotalUsers))
	storeAggregate.WithLabelValues("counter_a").Set(float64(snap.TotalA))
	storeAggregate.WithLabelValues("counter_b").Set(float64(snap.TotalB))
}
