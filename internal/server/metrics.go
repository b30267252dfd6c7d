package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "syc",
		Subsystem: "rpc",
		Name:      "connections",
		Help:      "Open RPC connections by transport.",
	}, []string{"transport"})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "syc",
		Subsystem: "rpc",
		Name:      "notifications_total",
		Help:      "Push notifications delivered, by method.",
	}, []string{"method"})

	unauthorized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "syc",
		Subsystem: "rpc",
		Name:      "unauthorized_total",
		Help:      "HTTP requests rejected for a missing or wrong token.",
	})
)
