// Package cache memoizes rendered panel bodies. Rendering markdown and
// highlighting code is far slower than switching tabs, and bodies only
// change when the layout is reloaded.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	createdAt time.Time
	expiresAt time.Time
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is a thread-safe, size-bounded map with optional expiry.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	maxSize int
	ttl     time.Duration

	hits      int64
	misses    int64
	evictions int64
}

// Option configures a Cache.
type Option func(*config)

type config struct {
	maxSize int
	ttl     time.Duration
}

// WithMaxSize bounds the number of entries. The oldest entry is evicted
// when full.
func WithMaxSize(n int) Option {
	return func(c *config) { c.maxSize = n }
}

// WithTTL expires entries after d. Zero keeps entries until evicted.
func WithTTL(d time.Duration) Option {
	return func(c *config) { c.ttl = d }
}

// New creates a cache holding at most 512 entries by default.
func New[V any](opts ...Option) *Cache[V] {
	cfg := config{maxSize: 512}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxSize < 1 {
		cfg.maxSize = 1
	}
	return &Cache[V]{
		entries: make(map[string]*entry[V]),
		maxSize: cfg.maxSize,
		ttl:     cfg.ttl,
	}
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && e.expired(time.Now()) {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Set stores value under key.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	now := time.Now()
	e := &entry[V]{value: value, createdAt: now}
	if c.ttl > 0 {
		e.expiresAt = now.Add(c.ttl)
	}
	c.entries[key] = e
}

// GetOrCompute returns the cached value or stores the result of compute.
// Errors are returned without caching.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Clear drops every entry. Stats are kept.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
}

// Len returns the number of stored entries, including expired ones not yet
// looked up.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats holds cache counters.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Evictions int64   `json:"evictions"`
}

// Stats returns a snapshot of the counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// must be called with c.mu held
func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, e := range c.entries {
		if oldestKey == "" || e.createdAt.Before(oldest) {
			oldestKey = key
			oldest = e.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions++
	}
}

// Key hashes the components into a fixed-length key. Components are
// separated so ("ab", "c") and ("a", "bc") differ.
func Key(components ...string) string {
	h := sha256.New()
	for i, comp := range components {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(comp))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RenderKey identifies one rendering of a panel body.
func RenderKey(kind, language string, width int, body string) string {
	return Key(kind, language, strconv.Itoa(width), body)
}
