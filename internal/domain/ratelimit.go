package domain

import (
	"context"
	"time"
)

type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}

// ReplayGuard remembers capture nonces for their anti-replay window.
// Remember returns false when the nonce has been seen before.
type ReplayGuard interface {
	Remember(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}
