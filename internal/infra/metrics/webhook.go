package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(webhookRequestsTotal) }

var webhookRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "webhook_requests_total",
		Help: "Webhook requests by HTTP status returned.",
	},
	[]string{"status"},
)

func IncWebhookRequest(status int) {
	webhookRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}
