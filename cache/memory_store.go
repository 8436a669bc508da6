// cache/memory_store.go
package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	key       string
	value     string
	expiresAt time.Time
	prev      *entry
	next      *entry
}

// MemoryStore is an in-process LRU store with per-key expiry. It stands in
// for Redis when cache.memoryFallback is set.
type MemoryStore struct {
	mu         sync.Mutex
	items      map[string]*entry
	head       *entry
	tail       *entry
	maxEntries int
	now        func() time.Time
}

func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryStore{
		items:      make(map[string]*entry, maxEntries),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for expiry checks.
func (c *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

func (c *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return "", false, nil
	}

	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.remove(e)
		delete(c.items, key)
		return "", false, nil
	}

	c.moveToFront(e)

	return e.value, true, nil
}

// Set stores value under key. A ttl <= 0 never expires.
func (c *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return nil
	}

	e := &entry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	}
	c.items[key] = e
	c.addToFront(e)

	if len(c.items) > c.maxEntries {
		c.evictOldest()
	}
	return nil
}

// Len reports the number of entries held, expired ones included until
// they are next read or evicted.
func (c *MemoryStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *MemoryStore) addToFront(e *entry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *MemoryStore) moveToFront(e *entry) {
	if c.head == e {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *MemoryStore) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *MemoryStore) evictOldest() {
	if c.tail == nil {
		return
	}
	oldest := c.tail
	c.remove(oldest)
	delete(c.items, oldest.key)
}
