package memory

import (
	"context"
	"time"

	"ai-chat-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type TokenBlocklist struct {
	cache *cache.Cache
}

var _ contract.TokenBlocklist = (*TokenBlocklist)(nil)

func NewTokenBlocklist() *TokenBlocklist {
	return &TokenBlocklist{
		cache: cache.New(24*time.Hour, 10*time.Minute),
	}
}

func (r *TokenBlocklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.cache.Set(jti, struct{}{}, ttl)
	return nil
}

func (r *TokenBlocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, found := r.cache.Get(jti)
	return found, nil
}
