package contract

import (
	"context"
	"time"
)

// TokenBlocklist remembers revoked session token ids until they would
// have expired anyway.
type TokenBlocklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
