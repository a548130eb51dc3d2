package geocoding

import (
	"sync"
	"time"
)

// resultCache — кэш результатов геокодирования в памяти с TTL. Повторные
// адреса в одном экспорте — обычное дело (несколько заказов на один дом).
type resultCache struct {
	ttl   time.Duration
	mutex sync.RWMutex
	data  map[string]*cacheEntry
}

type cacheEntry struct {
	result    Result
	timestamp time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{ttl: ttl, data: make(map[string]*cacheEntry)}
}

func (c *resultCache) get(key string) (Result, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[key]
	if !exists {
		return Result{}, false
	}
	if c.ttl > 0 && time.Since(entry.timestamp) > c.ttl {
		return Result{}, false
	}
	return entry.result, true
}

func (c *resultCache) put(key string, result Result) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data[key] = &cacheEntry{result: result, timestamp: time.Now()}
}
