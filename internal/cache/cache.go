package cache

import (
	"sync"
	"time"
)

// Cache is an in-memory TTL map. Entries read through GetOrSet have their
// expiry pushed forward, so idle keys age out and busy keys stay.
type Cache struct {
	mu       sync.Mutex
	items    map[string]*cacheItem
	ttl      time.Duration
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	value      interface{}
	expiration time.Time
}

// NewCache creates a cache whose janitor runs every sweep interval.
func NewCache(ttl, sweep time.Duration) *Cache {
	c := newCache(ttl, time.Now)
	go c.cleanup(sweep)
	return c
}

func newCache(ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		items:    make(map[string]*cacheItem),
		ttl:      ttl,
		now:      now,
		stopChan: make(chan struct{}),
	}
}

// Get retrieves a live value without refreshing it.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists || c.now().After(item.expiration) {
		return nil, false
	}
	return item.value, true
}

// GetOrSet returns the live value for key, creating it with create when
// missing or expired. The entry's expiry is refreshed either way.
func (c *Cache) GetOrSet(key string, create func() interface{}) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	item, exists := c.items[key]
	if !exists || now.After(item.expiration) {
		item = &cacheItem{value: create()}
		c.items[key] = item
	}
	item.expiration = now.Add(c.ttl)
	return item.value
}

// Set stores a value with the default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}

// Delete removes a value from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopChan:
			return
		}
	}
}

// removeExpired removes all expired items and reports how many went.
func (c *Cache) removeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

// Size returns the number of items in the cache, expired or not
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
