package retention

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatstore_retention_sweeps_total",
		Help: "Completed retention sweeps.",
	})
	rowsPurged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatstore_retention_rows_purged_total",
		Help: "Orphaned rows removed by the retention sweeper.",
	}, []string{"kind"})
)
