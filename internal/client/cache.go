package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/devilmonastery/eventdesk/internal/pkg/metrics"
)

// cacheEntry is a one-shot future for a GET response. Every caller that finds
// the entry while it is fresh waits on done and observes the same outcome.
type cacheEntry struct {
	insertedAt time.Time
	done       chan struct{}

	// set once before done is closed
	payload json.RawMessage
	err     error
}

func (e *cacheEntry) settle(payload json.RawMessage, err error) {
	e.payload = payload
	e.err = err
	close(e.done)
}

func (e *cacheEntry) wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-e.done:
		return e.payload, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// responseCache de-duplicates identical GET requests within a TTL window.
type responseCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry

	ttl            time.Duration
	sweepThreshold int
	keepFailures   bool
	now            func() time.Time
}

func newResponseCache(ttl time.Duration, sweepThreshold int, keepFailures bool, now func() time.Time) *responseCache {
	return &responseCache{
		entries:        make(map[string]*cacheEntry),
		ttl:            ttl,
		sweepThreshold: sweepThreshold,
		keepFailures:   keepFailures,
		now:            now,
	}
}

func cacheKey(method, fullURL string) string {
	return method + " " + fullURL
}

// acquire returns the live entry for key, or registers a new pending entry.
// leader is true when the caller registered the entry and must settle it.
func (c *responseCache) acquire(key string) (entry *cacheEntry, leader bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok {
		if now.Sub(e.insertedAt) < c.ttl {
			metrics.CacheHits.WithLabelValues("api_client", "responses").Inc()
			return e, false
		}
		delete(c.entries, key)
		metrics.CacheEvictions.WithLabelValues("api_client", "responses").Inc()
	}
	metrics.CacheMisses.WithLabelValues("api_client", "responses").Inc()

	e := &cacheEntry{insertedAt: now, done: make(chan struct{})}
	c.entries[key] = e
	if len(c.entries) > c.sweepThreshold {
		c.sweepLocked(now)
	}
	metrics.CacheSize.WithLabelValues("api_client", "responses").Set(float64(len(c.entries)))
	return e, true
}

// complete applies the failure policy and settles the entry. A failed entry
// is evicted before waiters wake so their next call goes to the network.
func (c *responseCache) complete(key string, e *cacheEntry, payload json.RawMessage, err error) {
	if err != nil && !c.keepFailures {
		c.mu.Lock()
		// Only evict our own entry; a newer one may have replaced it.
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
			metrics.CacheEvictions.WithLabelValues("api_client", "responses").Inc()
		}
		c.mu.Unlock()
	}
	e.settle(payload, err)
}

// sweepLocked removes every entry whose TTL has elapsed.
func (c *responseCache) sweepLocked(now time.Time) int {
	removed := 0
	for key, e := range c.entries {
		if now.Sub(e.insertedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		metrics.CacheEvictions.WithLabelValues("api_client", "responses").Add(float64(removed))
	}
	return removed
}

func (c *responseCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
	metrics.CacheSize.WithLabelValues("api_client", "responses").Set(0)
}

func (c *responseCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
