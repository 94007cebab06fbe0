package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(counterIncrementsTotal) }

var counterIncrementsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "counter_increments_total",
		Help: "Per-user counter increments; applied=false means the user record was missing.",
	},
	[]string{"counter", "applied"},
)

func IncCounter(counter string, applied bool) {
	counterIncrementsTotal.WithLabelValues(norm(counter), strconv.FormatBool(applied)).Inc()
}
