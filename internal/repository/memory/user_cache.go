package memory

import (
	"time"

	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// UserCache keeps recently authenticated users so the session middleware
// does not hit the database on every request.
type UserCache struct {
	cache *cache.Cache
}

func NewUserCache(ttl time.Duration) *UserCache {
	return &UserCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *UserCache) Save(user *entity.User) {
	r.cache.Set(user.Id.String(), user, cache.DefaultExpiration)
}

func (r *UserCache) Get(userId uuid.UUID) (*entity.User, bool) {
	if x, found := r.cache.Get(userId.String()); found {
		return x.(*entity.User), true
	}
	return nil, false
}

func (r *UserCache) Delete(userId uuid.UUID) {
	r.cache.Delete(userId.String())
}
