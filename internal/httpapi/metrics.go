package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requestsTotal    *prometheus.CounterVec
	questionDuration prometheus.Histogram
	chunksIngested   prometheus.Counter
	runsExhausted    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lodestar_requests_total",
				Help: "API requests by endpoint and status code",
			},
			[]string{"endpoint", "status"},
		),
		questionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lodestar_question_duration_seconds",
				Help:    "Wall time of one question through the workflow",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			},
		),
		chunksIngested: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lodestar_chunks_ingested_total",
				Help: "Corpus chunks written by the upload endpoint",
			},
		),
		runsExhausted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lodestar_runs_exhausted_total",
				Help: "Workflow runs cut off by the step budget",
			},
		),
	}
	reg.MustRegister(m.requestsTotal, m.questionDuration, m.chunksIngested, m.runsExhausted)
	return m
}
