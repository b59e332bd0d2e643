package embed

import (
	"container/list"
	"sync"
)

// Entry is a cached annotation result for one chunk text.
type Entry struct {
	Vector []float32
	Tokens int
}

// Cache is an LRU cache of embedding results keyed by chunk text. Documents
// are re-chunked deterministically on every sync, so unchanged chunks hit the
// cache and skip a provider round trip.
type Cache struct {
	capacity int
	entries  map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheItem struct {
	key   string
	value Entry
}

// NewCache creates a cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached entry for key if present.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheItem).value, true
	}
	return Entry{}, false
}

// Set stores the entry for key, evicting the oldest entry when at capacity.
func (c *Cache) Set(key string, value Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheItem).value = value
		return
	}

	elem := c.lru.PushFront(&cacheItem{key: key, value: value})
	c.entries[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheItem).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
