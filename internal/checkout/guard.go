package checkout

import (
	"context"
	"sync"
	"time"
)

// InFlightGuard allows one order submission per session at a time.
type InFlightGuard interface {
	Acquire(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

// MemoryGuard is the single-process InFlightGuard.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryGuard) Acquire(_ context.Context, sessionID string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if expires, ok := g.held[sessionID]; ok && now.Before(expires) {
		return false, nil
	}
	g.held[sessionID] = now.Add(ttl)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, sessionID)
	return nil
}

// PurgeExpired drops guards left behind by submissions that never released.
func (g *MemoryGuard) PurgeExpired(context.Context) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	var removed int64
	for sessionID, expires := range g.held {
		if !now.Before(expires) {
			delete(g.held, sessionID)
			removed++
		}
	}
	return removed, nil
}
