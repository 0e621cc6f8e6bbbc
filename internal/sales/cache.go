package sales

import (
	"context"
	"sync"
	"time"
)

// Cache holds serialized sales lists per scope for a short TTL.
type Cache interface {
	Load(ctx context.Context, scope string) ([]byte, bool, error)
	Store(ctx context.Context, scope string, raw []byte, ttl time.Duration) error
	Purge(ctx context.Context, scope string) error
}

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

// MemoryCache is the in-process Cache used when Redis is not configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryCache) Load(_ context.Context, scope string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[scope]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(entry.expires) {
		delete(m.entries, scope)
		return nil, false, nil
	}
	return append([]byte(nil), entry.raw...), true, nil
}

func (m *MemoryCache) Store(_ context.Context, scope string, raw []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[scope] = memoryEntry{raw: append([]byte(nil), raw...), expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryCache) Purge(_ context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, scope)
	return nil
}

// PurgeExpired drops entries whose TTL has passed.
func (m *MemoryCache) PurgeExpired(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var removed int64
	for scope, entry := range m.entries {
		if !now.Before(entry.expires) {
			delete(m.entries, scope)
			removed++
		}
	}
	return removed, nil
}
