package clinicapi

import (
	"sync"
	"time"
)

// TTLCache — потокобезопасный кэш ответов коллабораторов, ключ — полный URL
// запроса (включая арендатора и query-параметры). Просроченная запись
// считается отсутствующей.
//
// В отличие от исходного прототипа кэш ограничен по размеру: при переполнении
// сначала выбрасываются просроченные записи, затем самая старая.
type TTLCache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	capacity int
}

type cacheEntry struct {
	at    time.Time
	value []byte
}

func NewTTLCache(ttl time.Duration, capacity int) *TTLCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &TTLCache{
		entries:  make(map[string]cacheEntry, capacity),
		ttl:      ttl,
		capacity: capacity,
	}
}

func (c *TTLCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.at) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

func (c *TTLCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.entries[key] = cacheEntry{at: time.Now(), value: value}
}

// Invalidate сбрасывает весь кэш (используется после ремедиаций в тестах и CLI).
func (c *TTLCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry, c.capacity)
	c.mu.Unlock()
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked: сначала все просроченные, если таких нет — самая старая запись.
func (c *TTLCache) evictLocked() {
	now := time.Now()
	var oldestKey string
	var oldestAt time.Time
	dropped := false

	for k, e := range c.entries {
		if now.Sub(e.at) >= c.ttl {
			delete(c.entries, k)
			dropped = true
			continue
		}
		if oldestKey == "" || e.at.Before(oldestAt) {
			oldestKey, oldestAt = k, e.at
		}
	}
	if !dropped && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
