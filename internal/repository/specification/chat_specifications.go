package specification

import (
	"ai-chat-be/internal/repository/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy restricts chats to a single account.
type OwnedBy struct {
	UserID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByChatID struct {
	ChatID uuid.UUID
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

// ChatListOrder sorts favorites first, newest first within each group.
type ChatListOrder struct{}

func (s ChatListOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(scope.FavoritesFirst, scope.OrderByCreatedDesc)
}

// ThreadOrder returns messages oldest first.
type ThreadOrder struct{}

func (s ThreadOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(scope.OrderByCreatedAsc)
}
