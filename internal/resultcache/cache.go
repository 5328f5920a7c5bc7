// Package resultcache memoizes extraction results per (unit, operation,
// file) so repeated runs over unchanged inputs skip the handler call.
// Entries self-invalidate through the key: the file's size and modification
// time are part of it, and a reloaded unit changes its load timestamp.
package resultcache

import (
	"fmt"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds the cache when the caller does not say otherwise.
const DefaultSize = 512

// Cache is a bounded LRU over extraction attribute maps.
type Cache struct {
	lru *lru.Cache[string, map[string]any]
}

// New creates a cache holding at most size entries.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	inner, err := lru.New[string, map[string]any](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: inner}, nil
}

// Key builds the cache key for one unit of work against one file state.
// A stat failure yields an uncacheable key ("" is never stored).
func (c *Cache) Key(unit, op, path string, unitLoadedAt time.Time) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s:%s|%s|%d|%d|%d", unit, op, path, info.Size(), info.ModTime().UnixNano(), unitLoadedAt.UnixNano())
}

// Get returns the cached attribute map for key, if present.
func (c *Cache) Get(key string) (map[string]any, bool) {
	if key == "" {
		return nil, false
	}
	return c.lru.Get(key)
}

// Add stores an attribute map under key, evicting the least recently used
// entry when full.
func (c *Cache) Add(key string, attrs map[string]any) {
	if key == "" {
		return
	}
	c.lru.Add(key, attrs)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
