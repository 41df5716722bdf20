package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_store_operations_total",
		Help: "Store operations by name and outcome.",
	}, []string{"op", "outcome"})

	storeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feed_store_operation_seconds",
		Help:    "Store operation latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	broadcastDegraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_broadcast_degraded_total",
		Help: "Messages served without their broadcast target.",
	}, []string{"reason"})
)

const (
	ReasonMissing     = "missing"
	ReasonQueryFailed = "query_failed"
)

// ObserveStore records one store call started at start.
func ObserveStore(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storeOps.WithLabelValues(op, outcome).Inc()
	storeLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// BroadcastDegraded counts n rows whose broadcast target could not be shown.
func BroadcastDegraded(reason string, n int) {
	if n <= 0 {
		return
	}
	broadcastDegraded.WithLabelValues(reason).Add(float64(n))
}
