package repo

import (
	"time"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syc_repo_operations_total",
		Help: "Repository operations by operation, plane and result code",
	}, []string{"op", "plane", "result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "syc_repo_operation_duration_seconds",
		Help:    "Repository operation latency including remote round trips",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"op"})
)

// observe records one operation; call the returned func on exit.
func observe(op string, p cookiemap.Plane, err *error) func() {
	start := time.Now()
	return func() {
		result := "ok"
		if *err != nil {
			result = string(syncerr.CodeOf(*err))
		}
		operationsTotal.WithLabelValues(op, p.String(), result).Inc()
		operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
