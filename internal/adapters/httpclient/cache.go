package httpclient

import (
	"container/list"
	"net/url"
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	key      string
	body     []byte
	storedAt time.Time
}

// responseCache keeps GET bodies in insertion order. Overwriting a live key
// keeps its slot, so eviction always drops the key that was first stored.
// An expired entry is dropped the first time it is read.
type responseCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	max   int
	order *list.List
	index map[string]*list.Element
}

func newResponseCache(ttl time.Duration, max int) *responseCache {
	return &responseCache{
		ttl:   ttl,
		max:   max,
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

func (c *responseCache) get(key string, now time.Time) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if now.Sub(entry.storedAt) >= c.ttl {
		c.order.Remove(el)
		delete(c.index, key)
		return nil, false
	}
	return entry.body, true
}

// put stores body under key and returns the keys evicted to stay within max.
func (c *responseCache) put(key string, body []byte, now time.Time) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.body = body
		entry.storedAt = now
		return nil
	}
	c.index[key] = c.order.PushBack(&cacheEntry{key: key, body: body, storedAt: now})

	var evicted []string
	for c.max > 0 && c.order.Len() > c.max {
		oldest := c.order.Front()
		entry := c.order.Remove(oldest).(*cacheEntry)
		delete(c.index, entry.key)
		evicted = append(evicted, entry.key)
	}
	return evicted
}

func (c *responseCache) invalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prefix == "" {
		n := c.order.Len()
		c.order.Init()
		c.index = make(map[string]*list.Element)
		return n
	}
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		entry := el.Value.(*cacheEntry)
		if strings.HasPrefix(entry.key, prefix) {
			c.order.Remove(el)
			delete(c.index, entry.key)
			removed++
		}
		el = next
	}
	return removed
}

func (c *responseCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*cacheEntry).key)
	}
	return out
}

// CacheKey is the path followed by the query in canonical (sorted) form.
func CacheKey(path string, query url.Values) string {
	return path + "?" + query.Encode()
}
