// Package replay guards capture nonces against reuse. A nonce that has
// been seen inside its window marks a replayed capture and must not be
// signed again.
package replay

import (
	"context"
	"sync"
	"time"

	"attestd/internal/domain"
)

type memoryGuard struct {
	mu   sync.Mutex
	now  func() time.Time
	seen map[string]time.Time
}

// NewMemoryGuard returns a per-process replay guard, used when no redis
// address is configured. Single-replica deployments only.
func NewMemoryGuard(now func() time.Time) domain.ReplayGuard {
	if now == nil {
		now = time.Now
	}
	return &memoryGuard{now: now, seen: make(map[string]time.Time)}
}

func (g *memoryGuard) Remember(_ context.Context, nonce string, ttl time.Duration) (bool, error) {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if expiry, ok := g.seen[nonce]; ok && now.Before(expiry) {
		return false, nil
	}
	g.seen[nonce] = now.Add(ttl)
	g.gc(now)
	return true, nil
}

func (g *memoryGuard) gc(now time.Time) {
	for nonce, expiry := range g.seen {
		if now.After(expiry) {
			delete(g.seen, nonce)
		}
	}
}
