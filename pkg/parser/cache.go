package parser

import (
	"sync"

	"github.com/relcypher/graphengine/pkg/ast"
	"golang.org/x/crypto/blake2b"
)

// cacheKey is a blake2b-256 digest of query text. Digest keys bound the
// cache's memory to a fixed-size key regardless of query length, unlike a
// raw-string-keyed map that grows with every distinct query seen.
type cacheKey [32]byte

func keyFor(query string) cacheKey {
	return blake2b.Sum256([]byte(query))
}

// Cache memoizes parsed query trees keyed by a digest of the query text, so
// a driver issuing the same query repeatedly (with different parameters)
// only pays the parse cost once.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]ast.Root
	order   []cacheKey
	max     int
}

// NewCache builds a Cache holding at most max distinct query trees,
// evicting the oldest entry once full.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = 256
	}
	return &Cache{entries: make(map[cacheKey]ast.Root, max), max: max}
}

// ParseCached parses query, returning a cached tree when query has been
// seen before and a cache miss otherwise.
func (c *Cache) ParseCached(query string) (ast.Root, error) {
	k := keyFor(query)

	c.mu.RLock()
	if root, ok := c.entries[k]; ok {
		c.mu.RUnlock()
		return root, nil
	}
	c.mu.RUnlock()

	root, err := Parse(query)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[k]; !ok {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.entries[k] = root
		c.order = append(c.order, k)
	}
	return c.entries[k], nil
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
