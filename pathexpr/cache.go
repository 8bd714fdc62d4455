package pathexpr

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of parsed expressions kept by NewCache(0).
const DefaultCacheSize = 256

type parsed struct {
	path Path
	err  error
}

// Cache memoizes Parse results, including failures, in a fixed-size LRU.
// It is safe for concurrent use.
type Cache struct {
	lru *lru.Cache[string, parsed]
}

// NewCache creates a cache holding up to size expressions.
// A size <= 0 selects DefaultCacheSize.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, parsed](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// Parse returns the parsed form of s, parsing it on first use.
func (c *Cache) Parse(s string) (Path, error) {
	if p, ok := c.lru.Get(s); ok {
		return p.path, p.err
	}
	path, err := Parse(s)
	c.lru.Add(s, parsed{path: path, err: err})
	return path, err
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Lookup parses s through the cache and evaluates it against v.
// A malformed expression is reported as undefined.
func (c *Cache) Lookup(v any, s string) (any, bool) {
	p, err := c.Parse(s)
	if err != nil {
		return nil, false
	}
	return p.Lookup(v)
}
