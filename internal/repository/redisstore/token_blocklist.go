package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-chat-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// TokenBlocklist shares revoked session ids between instances.
type TokenBlocklist struct {
	rdb *redis.Client
}

var _ contract.TokenBlocklist = (*TokenBlocklist)(nil)

func NewTokenBlocklist(rdb *redis.Client) *TokenBlocklist {
	return &TokenBlocklist{rdb: rdb}
}

func (r *TokenBlocklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke %s: %w", jti, err)
	}
	return nil
}

func (r *TokenBlocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.rdb.Get(ctx, revokedKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis lookup %s: %w", jti, err)
	}
	return true, nil
}
