// Package ratelimit provides a keyed token-bucket limiter for outbound
// asset downloads. Each host gets its own independent bucket so one
// slow CDN never starves the others.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter manages one rate limiter per download host.
type HostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a host limiter allowing rps requests per second per host
// with the given burst.
func New(rps float64, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Wait blocks until a request to host is allowed or ctx is canceled.
func (hl *HostLimiter) Wait(ctx context.Context, host string) error {
	return hl.limiter(host).Wait(ctx)
}

// Allow reports whether a request to host may proceed right now.
func (hl *HostLimiter) Allow(host string) bool {
	return hl.limiter(host).Allow()
}

func (hl *HostLimiter) limiter(host string) *rate.Limiter {
	hl.mu.RLock()
	lim, ok := hl.limiters[host]
	hl.mu.RUnlock()
	if ok {
		return lim
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()
	if lim, ok = hl.limiters[host]; ok {
		return lim
	}
	lim = rate.NewLimiter(hl.limit, hl.burst)
	hl.limiters[host] = lim
	return lim
}
