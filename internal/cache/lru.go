// Package cache keeps per-client rate limiters in a bounded LRU.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// LimiterCache hands out one token bucket per client key. The least recently
// seen clients are evicted once size is reached, so memory stays bounded.
type LimiterCache struct {
	mu    sync.Mutex
	c     *lru.Cache[string, *rate.Limiter]
	rps   rate.Limit
	burst int
}

func New(size int, rps float64, burst int) (*LimiterCache, error) {
	c, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, err
	}
	return &LimiterCache{c: c, rps: rate.Limit(rps), burst: burst}, nil
}

// Get returns the limiter for key, creating it on first use.
func (lc *LimiterCache) Get(key string) *rate.Limiter {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if l, ok := lc.c.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(lc.rps, lc.burst)
	lc.c.Add(key, l)
	return l
}

// Allow reports whether key may make one more request now.
func (lc *LimiterCache) Allow(key string) bool {
	return lc.Get(key).Allow()
}

func (lc *LimiterCache) Len() int {
	return lc.c.Len()
}
