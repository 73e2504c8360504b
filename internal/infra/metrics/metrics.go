// Package metrics exposes Prometheus collectors for the gateway. Each area
// lives in its own file and enqueues its collectors via register() in
// init(); main calls MustRegister once before serving /metrics.
package metrics

import "strings"

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
