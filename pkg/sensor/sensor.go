// Package sensor polls process and storage-engine health and exposes the
// readings as Prometheus gauges, with threshold logging for the write-ahead
// log and disk usage.
package sensor

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// Snapshot is a lightweight view of process resources. Fields are
// best-effort and may be zero on unsupported platforms.
type Snapshot struct {
	Timestamp time.Time

	// Memory in bytes
	MemTotal uint64
	MemUsed  uint64

	Goroutines int
}

// Sensor polls host resources and exposes a current Snapshot.
type Sensor struct {
	mu       sync.RWMutex
	snap     Snapshot
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSensor creates a sensor that polls every interval.
func NewSensor(interval time.Duration) *Sensor {
	if interval <= 0 {
		interval = time.Second
	}
	s := &Sensor{interval: interval}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Start begins background polling. Call Stop to terminate.
func (s *Sensor) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		// warm initial sample
		s.sample()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.sample()
			}
		}
	}()
}

// Stop stops background polling and waits for workers to exit.
func (s *Sensor) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Snapshot returns the most recent snapshot (fast, copy).
func (s *Sensor) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// sample collects best-effort metrics and updates the current snapshot.
func (s *Sensor) sample() {
	snap := Snapshot{Timestamp: time.Now()}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	snap.MemTotal = memStats.Sys
	snap.MemUsed = memStats.Alloc
	snap.Goroutines = runtime.NumGoroutine()

	memUsedGauge.Set(float64(snap.MemUsed))
	goroutinesGauge.Set(float64(snap.Goroutines))

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
