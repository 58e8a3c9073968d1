package sensor

import (
	"context"
	"time"

	"chatstore/pkg/logger"
	"chatstore/pkg/store"
)

// MonitorConfig controls thresholds and intervals for the pebble monitor.
type MonitorConfig struct {
	PollInterval time.Duration

	WALHighBytes uint64
	WALLowBytes  uint64

	// hysteresis window to consider recovery
	RecoveryWindow time.Duration
}

// DefaultMonitorConfig returns sensible defaults.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PollInterval:   5 * time.Second,
		WALHighBytes:   1 << 30, // 1 GiB
		WALLowBytes:    700 << 20,
		RecoveryWindow: 30 * time.Second,
	}
}

// StartPebbleMonitor starts a background monitor that watches Pebble
// metrics, publishes them as gauges and logs when the WAL crosses the
// configured watermarks. It returns a function to stop the monitor.
func StartPebbleMonitor(ctx context.Context, cfg MonitorConfig) context.CancelFunc {
	if cfg.PollInterval <= 0 {
		cfg = DefaultMonitorConfig()
	}
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()
		var state = "normal"
		var lastHigh time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m := store.GetEngineMetrics()
				walBytesGauge.Set(float64(m.WALBytes))
				diskBytesGauge.Set(float64(m.DiskBytes))

				if m.WALBytes >= cfg.WALHighBytes {
					if state != "high" {
						logger.Warn("pebble_monitor_wal_high", "wal_bytes", m.WALBytes, "disk_bytes", m.DiskBytes)
						state = "high"
					}
					lastHigh = time.Now()
					continue
				}
				if state == "high" && m.WALBytes <= cfg.WALLowBytes && time.Since(lastHigh) > cfg.RecoveryWindow {
					logger.Info("pebble_monitor_wal_recovered", "wal_bytes", m.WALBytes)
					state = "normal"
				}
			}
		}
	}()
	return cancel
}
