package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// Floor applied when the security config leaves rate limiting unset, so a
// blank config still throttles instead of opening the gateway wide.
const (
	fallbackRPS   = 5
	fallbackBurst = 10
)

// rateGate holds one token bucket per caller. The gateway keys callers by
// API key when one is presented and by remote IP otherwise, so every
// holder of a shared frontend key draws from the same budget while
// keyless probes are throttled per host.
type rateGate struct {
	rps   float64
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func newRateGate(cfg SecConfig) *rateGate {
	g := &rateGate{
		rps:     cfg.RPS,
		burst:   cfg.Burst,
		buckets: make(map[string]*rate.Limiter),
	}
	if g.rps <= 0 {
		g.rps = fallbackRPS
	}
	if g.burst <= 0 {
		g.burst = fallbackBurst
	}
	return g
}

// Allow consumes one token from the caller's bucket, creating the bucket
// on first sight. Buckets live for the life of the gateway.
func (g *rateGate) Allow(caller string) bool {
	g.mu.Lock()
	b, ok := g.buckets[caller]
	if !ok {
		b = rate.NewLimiter(rate.Limit(g.rps), g.burst)
		g.buckets[caller] = b
	}
	g.mu.Unlock()
	return b.Allow()
}
