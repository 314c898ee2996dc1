package contract

import (
	"context"
	"errors"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"
)

// ErrEmailTaken is returned by Create when the unique email index rejects
// the row.
var ErrEmailTaken = errors.New("email already taken")

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// FindOne returns nil, nil when no account matches.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}
