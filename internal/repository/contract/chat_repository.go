package contract

import (
	"context"
	"errors"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

var (
	ErrChatNotFound     = errors.New("chat not found")
	ErrChatAccessDenied = errors.New("chat belongs to another user")
)

// ChatUpdate names the columns an update writes. Nil fields are left alone.
type ChatUpdate struct {
	Title      *string
	IsFavorite *bool
}

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	// Update writes only the columns set in changes on a live chat and
	// returns the stored row. Returns ErrChatNotFound when the chat is
	// missing or tombstoned.
	Update(ctx context.Context, id uuid.UUID, changes ChatUpdate) (*entity.Chat, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Touch bumps updated_at without changing any other column.
	Touch(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)
	// FindOwned loads a live chat and verifies userId owns it.
	// Returns ErrChatNotFound or ErrChatAccessDenied.
	FindOwned(ctx context.Context, chatId, userId uuid.UUID) (*entity.Chat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error)
}
