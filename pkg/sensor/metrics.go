package sensor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	memUsedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatstore_process_heap_bytes",
		Help: "Currently allocated heap bytes.",
	})
	goroutinesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatstore_process_goroutines",
		Help: "Number of live goroutines.",
	})
	walBytesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatstore_pebble_wal_bytes",
		Help: "Current size of the Pebble write-ahead log.",
	})
	diskBytesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatstore_pebble_disk_bytes",
		Help: "Estimated on-disk size of the Pebble store.",
	})
)
