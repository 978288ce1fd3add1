package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionDenylist records logged-out session credentials by their jti until
// they would have expired anyway. Session tokens are otherwise stateless, so
// this is the only early-invalidation mechanism.
type SessionDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const denylistKeyPrefix = "session:denylist:"

type redisSessionDenylist struct {
	rdb *redis.Client
}

func NewRedisSessionDenylist(rdb *redis.Client) SessionDenylist {
	return &redisSessionDenylist{rdb: rdb}
}

func (d *redisSessionDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired, nothing to deny.
		return nil
	}
	if err := d.rdb.Set(ctx, denylistKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redisSessionDenylist.Revoke: %w", err)
	}
	return nil
}

func (d *redisSessionDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, denylistKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redisSessionDenylist.IsRevoked: %w", err)
	}
	return n > 0, nil
}
