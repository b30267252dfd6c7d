package incognito

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cookiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "syc_incognito_cookies_total",
	Help: "Cookies processed while materializing the incognito plane, by outcome",
}, []string{"action"})

var clearedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "syc_incognito_cleared_cookies_total",
	Help: "Cookies removed from the incognito store by clear operations",
})
