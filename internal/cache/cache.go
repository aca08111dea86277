// Package cache is a small in-process LRU with per-entry expiry and prefix invalidation.
package cache

import (
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// item wraps cached data with its expiry time
type item struct {
	data      interface{}
	expiresAt time.Time
}

// Generation identifies the state of a key prefix. Any DeleteByPrefix on the
// prefix, or a Purge, moves it forward.
type Generation struct {
	epoch uint64
	gen   uint64
}

// Cache is safe for concurrent use. mu orders invalidations against SetIfCurrent.
type Cache struct {
	lru *lru.Cache[string, item]
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	epoch uint64
	gens  map[string]uint64
}

// New creates a cache holding at most size entries, each living for ttl
func New(size int, ttl time.Duration) (*Cache, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, ttl: ttl, now: time.Now, gens: make(map[string]uint64)}, nil
}

// Set stores data under key with the cache TTL
func (c *Cache) Set(key string, data interface{}) {
	c.lru.Add(key, item{data: data, expiresAt: c.now().Add(c.ttl)})
}

// Current returns the generation of prefix, to be passed to SetIfCurrent
// once the value for a key under prefix has been computed
func (c *Cache) Current(prefix string) Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Generation{epoch: c.epoch, gen: c.gens[prefix]}
}

// SetIfCurrent stores data under key unless prefix was invalidated after g was
// taken. It reports whether the value was stored.
func (c *Cache) SetIfCurrent(prefix, key string, data interface{}, g Generation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g != (Generation{epoch: c.epoch, gen: c.gens[prefix]}) {
		return false
	}
	c.Set(key, data)
	return true
}

// Get returns the cached value, or false when missing or expired
func (c *Cache) Get(key string) (interface{}, bool) {
	val, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(val.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return val.data, true
}

// Delete removes a single key
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}

// DeleteByPrefix removes every key starting with prefix, returns how many were dropped
// and moves the prefix to a new generation.
func (c *Cache) DeleteByPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[prefix]++

	deleted := 0
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			if c.lru.Remove(key) {
				deleted++
			}
		}
	}
	return deleted
}

// Len returns the number of entries, expired ones included
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops everything
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.gens = make(map[string]uint64)
	c.lru.Purge()
}
