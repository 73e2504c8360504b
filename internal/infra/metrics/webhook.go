package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(webhookEventsTotal)
}

var webhookEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Inbound partner webhooks by outcome (accepted/invalid_signature/duplicate/route_error).",
	},
	[]string{"outcome"},
)

func IncWebhook(outcome string) {
	webhookEventsTotal.WithLabelValues(norm(outcome)).Inc()
}
