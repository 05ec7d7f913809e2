package overview

import (
	"sync"
	"sync/atomic"
	"time"
)

// ChartKey identifies one rendering of a chart: the registry that owns it,
// the chart id, the data revision and the requested width.
type ChartKey struct {
	Registry uint64
	ChartID  string
	Revision uint64
	Width    string
}

// supersedes reports whether k replaces other's rendering of the same chart.
func (k ChartKey) supersedes(other ChartKey) bool {
	return k.Registry == other.Registry && k.ChartID == other.ChartID && k.Revision > other.Revision
}

var registrySeq atomic.Uint64

func nextRegistryID() uint64 { return registrySeq.Add(1) }

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key ChartKey, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts, shared by every
// page session. Storing a newer revision drops older renderings of that
// chart, and expired entries are purged on write.
type ChartCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[ChartKey]cachedChart
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL
// disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[ChartKey]cachedChart),
	}
}

// GetOrRender returns the cached rendering for key or renders and stores it.
// Render errors are not cached.
func (c *ChartCache) GetOrRender(key ChartKey, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

// Len reports the number of stored entries.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ChartCache) get(key ChartKey) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) set(key ChartKey, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for existing, entry := range c.entries {
		if key.supersedes(existing) || now.After(entry.expires) {
			delete(c.entries, existing)
		}
	}
	c.entries[key] = cachedChart{html: html, expires: now.Add(c.ttl)}
}
