package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the HTTP surface.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statsgate_http_requests_total",
		Help: "Total number of HTTP requests served, by route pattern and status",
	}, []string{"path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "statsgate_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	inflightRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statsgate_http_inflight_rejected_total",
		Help: "Total number of requests shed because the in-flight cap was reached",
	})
)
