package s3

import (
	"sync"
	"time"

	"github.com/mfinch/myfinance-backend/internal/domain/receipt"
)

// headCache memoizes HeadObject lookups for a short window. A single
// request heads the same temp blob up to three times (planning, finalizing
// and copying); the cache collapses those into one round trip. Entries for
// missing blobs are never cached, so an upload that lands mid-request is
// seen.
type headCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]headEntry

	now func() time.Time
}

type headEntry struct {
	details receipt.HeadDetails
	expires time.Time
}

func newHeadCache(ttl time.Duration) *headCache {
	return &headCache{
		ttl:     ttl,
		entries: make(map[string]headEntry),
		now:     time.Now,
	}
}

func (c *headCache) get(key string) (*receipt.HeadDetails, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	details := entry.details
	return &details, true
}

func (c *headCache) set(key string, details receipt.HeadDetails) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = headEntry{details: details, expires: c.now().Add(c.ttl)}
}

func (c *headCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
