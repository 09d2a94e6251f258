package fixtures

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	results  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shulpick",
			Subsystem: "fixtures",
			Name:      "requests_total",
			Help:      "Search fixture requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shulpick",
			Subsystem: "fixtures",
			Name:      "request_duration_seconds",
			Help:      "Time spent answering, including injected latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"route"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shulpick",
			Subsystem: "fixtures",
			Name:      "results",
			Help:      "Rows returned per search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}, []string{"route"}),
	}
	reg.MustRegister(m.requests, m.duration, m.results)
	return m
}
