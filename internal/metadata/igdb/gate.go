package igdb

import (
	"sync"
	"time"
)

// gate bounds the number of in-flight catalog requests. Waiters are
// admitted in FIFO order using ticket numbers. The limit can shrink at
// runtime when the server pushes back; it never grows within a run.
type gate struct {
	mu         sync.Mutex
	cond       *sync.Cond
	limit      int
	active     int
	nextTicket int
	nextServe  int
}

func newGate(limit int) *gate {
	if limit < 1 {
		limit = 1
	}
	g := &gate{limit: limit}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// acquire blocks until a slot frees and this waiter is at the head of
// the queue.
func (g *gate) acquire() {
	g.mu.Lock()
	defer g.mu.Unlock()

	ticket := g.nextTicket
	g.nextTicket++

	for ticket != g.nextServe || g.active >= g.limit {
		g.cond.Wait()
	}
	g.nextServe++
	g.active++
}

// release frees a slot.
func (g *gate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.active--
	g.cond.Broadcast()
}

// halve cuts the concurrency limit in half, floored at 1, and returns
// the old and new limits.
func (g *gate) halve() (old, current int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	old = g.limit
	g.limit = max(1, g.limit/2)
	g.cond.Broadcast()
	return old, g.limit
}

// Limit returns the current concurrency limit.
func (g *gate) Limit() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limit
}

// tokenBucket enforces the catalog request rate: at most capacity
// request-starts per refill interval. The bucket is reset to full each
// interval, not trickled, matching the catalog's fixed-window limit.
// Waiters block on a condition variable and are woken by the refill,
// so there is no polling.
type tokenBucket struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tokens int

	capacity int
	interval time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func newTokenBucket(capacity int, interval time.Duration) *tokenBucket {
	b := &tokenBucket{
		tokens:   capacity,
		capacity: capacity,
		interval: interval,
		done:     make(chan struct{}),
	}
	b.cond = sync.NewCond(&b.mu)
	go b.refill()
	return b
}

// acquire blocks until a token is available and consumes it.
func (b *tokenBucket) acquire() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.tokens <= 0 {
		b.cond.Wait()
	}
	b.tokens--
}

// refill resets the bucket to full every interval.
func (b *tokenBucket) refill() {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.mu.Lock()
			b.tokens = b.capacity
			b.cond.Broadcast()
			b.mu.Unlock()
		case <-b.done:
			return
		}
	}
}

// stop shuts down the refill goroutine and releases any waiters.
func (b *tokenBucket) stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.mu.Lock()
		b.tokens = b.capacity
		b.cond.Broadcast()
		b.mu.Unlock()
	})
}
