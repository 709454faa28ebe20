package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	batchesDispatched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "gateway",
			Name:      "batches_total",
			Help:      "Total batches dispatched to the engine",
		},
	)

	batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "inferd",
			Subsystem: "gateway",
			Name:      "batch_size_requests",
			Help:      "Number of requests per dispatched batch",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "inferd",
			Subsystem: "gateway",
			Name:      "queue_depth",
			Help:      "Requests waiting for a batch to form",
		},
	)

	requestsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "gateway",
			Name:      "requests_finished_total",
			Help:      "Requests that reached a terminal state, by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(batchesDispatched, batchSize, queueDepth, requestsFinished)
}
