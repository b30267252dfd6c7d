package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cookieEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syc_scheduler_cookie_events_total",
		Help: "Cookie change events by outcome (queued, dropped, ignored)",
	}, []string{"outcome"})

	flushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syc_scheduler_flushes_total",
		Help: "Auto-push batch flushes by result",
	}, []string{"result"})

	pendingDomains = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "syc_scheduler_pending_domains",
		Help: "Changed domains waiting for the next auto-push batch",
	})

	autoPulls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syc_scheduler_auto_pulls_total",
		Help: "Auto-pull attempts by result",
	}, []string{"result"})
)
