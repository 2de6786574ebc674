package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL-wrapped LRU keyed by string. Expired entries are dropped on
// read; the LRU bound keeps the worst case memory fixed.
type Cache[V any] struct {
	entries *lru.Cache[string, cacheItem[V]]
}

func NewCache[V any](capacity int) (*Cache[V], error) {
	entries, err := lru.New[string, cacheItem[V]](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{entries: entries}, nil
}

func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.entries.Add(key, cacheItem[V]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
}

// Get reports false when the key is missing or past its TTL.
func (c *Cache[V]) Get(key string) (V, bool) {
	item, ok := c.entries.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	if time.Now().After(item.expiresAt) {
		c.entries.Remove(key)
		var zero V
		return zero, false
	}

	return item.value, true
}

func (c *Cache[V]) Delete(key string) {
	c.entries.Remove(key)
}
