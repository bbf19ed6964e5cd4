package cache

import (
	"encoding/json"
	"sync"
	"time"
)

type entry struct {
	data     json.RawMessage
	tags     []string
	storedAt time.Time
}

// Cache keeps successful query payloads keyed by request and indexed by tag.
// Invalidating a tag drops every entry carrying it so the next read refetches.
type Cache struct {
	lock    sync.RWMutex
	entries map[string]*entry
	byTag   map[string]map[string]struct{}
	ttl     time.Duration
	nowFunc func() time.Time
}

type Option func(*Cache)

// WithTTL bounds how long an entry is served; zero keeps entries until invalidated
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(c *Cache) {
		c.nowFunc = now
	}
}

func New(options ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		byTag:   make(map[string]map[string]struct{}),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Cache) Get(key string) (json.RawMessage, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.nowFunc().Sub(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.data, true
}

func (c *Cache) Put(key string, data json.RawMessage, tags ...string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.removeLocked(key)
	c.entries[key] = &entry{data: data, tags: tags, storedAt: c.nowFunc()}
	for _, tag := range tags {
		keys, ok := c.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// Invalidate drops every entry carrying any of tags and returns how many were dropped
func (c *Cache) Invalidate(tags ...string) int {
	c.lock.Lock()
	defer c.lock.Unlock()

	dropped := 0
	for _, tag := range tags {
		for key := range c.byTag[tag] {
			if c.removeLocked(key) {
				dropped++
			}
		}
		delete(c.byTag, tag)
	}
	return dropped
}

func (c *Cache) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries = make(map[string]*entry)
	c.byTag = make(map[string]map[string]struct{})
}

func (c *Cache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}

func (c *Cache) removeLocked(key string) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	for _, tag := range e.tags {
		if keys, ok := c.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.byTag, tag)
			}
		}
	}
	delete(c.entries, key)
	return true
}
