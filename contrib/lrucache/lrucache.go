// Package lrucache implements the digraph.Cache interface on top of an
// in-process LRU cache.
//
//	cache, err := lrucache.New(4096)
//	if err != nil {
//		return err
//	}
//	reg := digraph.NewRegistry(store, digraph.WithCache(cache), digraph.WithCacheTTL(time.Minute))
package lrucache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	value   []byte
	expires time.Time // zero for entries without TTL
}

// Cache is a size bounded cache with per entry expiration.
type Cache struct {
	lru *lru.Cache[string, entry]
	now func() time.Time
}

// New returns a cache holding at most size entries.
func New(size int) (*Cache, error) {
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c, now: time.Now}, nil
}

// Get returns the value of key, or nil if it is missing or expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.lru.Remove(key)
		return nil, nil
	}
	return e.value, nil
}

// Set stores value under key. A zero ttl never expires.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.lru.Add(key, e)
	return nil
}

// Delete removes key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// DeletePrefix removes all keys with the given prefix.
func (c *Cache) DeletePrefix(_ context.Context, prefix string) error {
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
	return nil
}

// Clear removes all keys.
func (c *Cache) Clear(context.Context) error {
	c.lru.Purge()
	return nil
}

// Len returns the number of cached entries, expired ones included.
func (c *Cache) Len() int {
	return c.lru.Len()
}
