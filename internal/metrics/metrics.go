// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	GatewayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartjuris",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "AI gateway calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	GatewayLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "smartjuris",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "AI gateway round-trip latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"operation"})

	ActivityEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartjuris",
		Subsystem: "activity",
		Name:      "entries_total",
		Help:      "Activity log entries recorded, by action label.",
	}, []string{"action"})
)

func init() {
	prometheus.MustRegister(GatewayRequests, GatewayLatency, ActivityEntries)
}

// ObserveGateway records one finished gateway call.
func ObserveGateway(operation string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	GatewayRequests.WithLabelValues(operation, outcome).Inc()
	GatewayLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
