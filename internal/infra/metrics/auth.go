package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		authAttemptsTotal,
		tokenCacheTotal,
	)
}

var (
	authAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partner_auth_attempts_total",
			Help: "Token endpoint authentications by result (success/rejected/malformed/transport_error/signing_error).",
		},
		[]string{"result"},
	)

	tokenCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partner_token_cache_total",
			Help: "EnsureToken lookups against the cached bearer token (hit/miss).",
		},
		[]string{"result"},
	)
)

func IncAuth(result string) {
	authAttemptsTotal.WithLabelValues(norm(result)).Inc()
}

func IncTokenCache(result string) {
	tokenCacheTotal.WithLabelValues(norm(result)).Inc()
}
