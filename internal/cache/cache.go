// Package cache provides an expiring key/value store used to memoize
// expensive reads and computed results. Two implementations share one
// interface: an in-memory TTL+LRU store for single-process deployments
// and a Redis-backed store for horizontally scaled ones.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/seo-auditor/internal/clock"
)

// Store is the expiring cache contract. Values are opaque bytes; keys
// are opaque strings namespaced by convention ("namespace:scope").
type Store interface {
	// Get returns the value for key, or ok=false on miss. A read of an
	// expired entry behaves exactly like a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key, overwriting any existing entry.
	// A non-positive ttl selects the store's default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key if present.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry.
	Clear(ctx context.Context) error
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store with per-entry TTL and an entry-count
// ceiling. Once the ceiling is exceeded the least-recently-used entries
// are evicted first; recency is updated on both read and write.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	defaultTTL time.Duration
	clock      clock.Clock
}

// Default in-memory cache settings.
const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 1000
)

// NewMemory creates an in-memory store. Non-positive maxEntries or
// defaultTTL select the package defaults.
func NewMemory(maxEntries int, defaultTTL time.Duration, clk clock.Clock) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if clk == nil {
		clk = clock.New()
	}

	return &Memory{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		clock:      clk,
	}
}

// Get returns the value for key. Expired entries read as a miss and
// are evicted opportunistically.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, exists := m.entries[key]
	if !exists {
		return nil, false, nil
	}

	entry := elem.Value.(*memoryEntry)
	if !m.clock.Now().Before(entry.expiresAt) {
		m.removeLocked(elem)
		return nil, false, nil
	}

	m.order.MoveToFront(elem)
	return entry.value, true, nil
}

// Set stores value under key, refreshing recency and TTL.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt := m.clock.Now().Add(ttl)

	if elem, exists := m.entries[key]; exists {
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		m.order.MoveToFront(elem)
		return nil
	}

	elem := m.order.PushFront(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	m.entries[key] = elem

	for len(m.entries) > m.maxEntries {
		oldest := m.order.Back()
		if oldest == nil {
			break
		}
		m.removeLocked(oldest)
	}

	return nil
}

// Delete removes key if present.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, exists := m.entries[key]; exists {
		m.removeLocked(elem)
	}
	return nil
}

// Clear removes every entry.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*list.Element)
	m.order.Init()
	return nil
}

// Len returns the current entry count, expired entries included until
// they are read or evicted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	delete(m.entries, entry.key)
	m.order.Remove(elem)
}
