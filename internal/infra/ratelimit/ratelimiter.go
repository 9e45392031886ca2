package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a caller may proceed.
type Limiter interface {
	// Allow reports whether a request from identifier may proceed now.
	Allow(identifier string) bool
}

// idleTTL is how long an identifier may go unseen before its bucket is
// dropped.
const idleTTL = 10 * time.Minute

// NewInMemoryRateLimiter returns a limiter holding one token bucket per
// identifier, each refilled at r per second with burst b.
func NewInMemoryRateLimiter(r rate.Limit, b int) Limiter {
	if b < 1 {
		b = 1
	}
	return &inMemoryRateLimiter{
		rate:    r,
		burst:   b,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type inMemoryRateLimiter struct {
	rate      rate.Limit
	burst     int
	clients   map[string]*client
	lastPrune time.Time
	now       func() time.Time
	mu        sync.Mutex
}

func (l *inMemoryRateLimiter) Allow(identifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	c, exists := l.clients[identifier]
	if !exists {
		c = &client{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[identifier] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

func (l *inMemoryRateLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < idleTTL {
		return
	}
	l.lastPrune = now
	for id, c := range l.clients {
		if now.Sub(c.lastSeen) >= idleTTL {
			delete(l.clients, id)
		}
	}
}
