package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(partnerCallLatencyMs)
}

var partnerCallLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "partner_call_latency_ms",
		Help:    "Signed partner call latency in milliseconds, by path and outcome.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
	},
	[]string{"path", "outcome"},
)

func ObserveDispatch(path, outcome string, elapsed time.Duration) {
	partnerCallLatencyMs.WithLabelValues(path, norm(outcome)).
		Observe(float64(elapsed.Milliseconds()))
}
