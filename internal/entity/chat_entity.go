package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Title      *string
	IsFavorite bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}

// HasTitle reports whether a title was generated or set for the chat.
func (c *Chat) HasTitle() bool {
	return c.Title != nil && *c.Title != ""
}
