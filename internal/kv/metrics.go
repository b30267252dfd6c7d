package kv

import (
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syc_kv_requests_total",
		Help: "Remote store requests by operation and result code",
	}, []string{"op", "result"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "syc_kv_request_duration_seconds",
		Help:    "Remote store request latency",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"op"})

	blobBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "syc_kv_blob_bytes",
		Help:    "Size of blobs read from and written to the remote store",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"op"})
)

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(syncerr.CodeOf(err))
}
