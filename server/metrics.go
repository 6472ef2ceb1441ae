package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests  *prometheus.CounterVec
	duration  prometheus.Histogram
	documents *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "protocolgen",
			Name:      "requests_total",
			Help:      "Generation requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "protocolgen",
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "protocolgen",
			Name:      "documents_total",
			Help:      "Generated documents by kind.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "protocolgen",
			Name:      "document_failures_total",
			Help:      "Documents that failed inside an otherwise processed batch, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.requests, m.duration, m.documents, m.failures)
	return m
}
