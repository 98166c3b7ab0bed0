package memo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// hitsTotal tracks fresh entries served without running a computation
	hitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statsgate_memo_hits_total",
			Help: "Total number of memo cache hits",
		},
		[]string{"cache"},
	)

	// missesTotal tracks lookups that led to a computation
	missesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statsgate_memo_misses_total",
			Help: "Total number of memo cache misses",
		},
		[]string{"cache"},
	)

	// sharedTotal tracks waiters that joined an already running computation
	sharedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statsgate_memo_shared_total",
			Help: "Total number of waiters served by a shared in-flight computation",
		},
		[]string{"cache"},
	)

	// failuresTotal tracks computations that returned an error
	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statsgate_memo_failures_total",
			Help: "Total number of failed memo computations",
		},
		[]string{"cache"},
	)

	// abandonedTotal tracks waiters whose context ended before the flight
	abandonedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statsgate_memo_abandoned_total",
			Help: "Total number of waiters that abandoned an in-flight computation",
		},
		[]string{"cache"},
	)

	// evictionsTotal tracks entries removed by Delete or the sweeper
	evictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statsgate_memo_evictions_total",
			Help: "Total number of memo cache entries removed",
		},
		[]string{"cache"},
	)

	// entriesGauge tracks the number of stored entries
	entriesGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "statsgate_memo_entries",
			Help: "Current number of memo cache entries",
		},
		[]string{"cache"},
	)
)
