package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatstore_store_ops_total",
		Help: "Store operations by kind.",
	}, []string{"op"})

	pageScanSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chatstore_page_scan_seconds",
		Help:    "Latency of compound-index page scans.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
)
