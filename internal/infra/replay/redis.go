package replay

import (
	"context"
	"errors"
	"time"

	"attestd/internal/domain"

	"github.com/redis/go-redis/v9"
)

type redisGuard struct {
	client *redis.Client
	prefix string
}

// NewRedisGuard returns a replay guard shared across service replicas.
// Each nonce is claimed with SET NX and expires with its anti-replay
// window.
func NewRedisGuard(addr, password string, db int) (domain.ReplayGuard, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisGuard{client: client, prefix: "attestd:nonce:"}, nil
}

func (g *redisGuard) Remember(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return g.client.SetNX(ctx, g.prefix+nonce, 1, ttl).Result()
}
