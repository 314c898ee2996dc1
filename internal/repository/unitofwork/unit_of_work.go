package unitofwork

import (
	"context"

	"ai-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// Transaction runs fn against a unit bound to one transaction and
	// commits when fn returns nil.
	Transaction(ctx context.Context, fn func(tx UnitOfWork) error) error

	UserRepository() contract.UserRepository
	ChatRepository() contract.ChatRepository
	MessageRepository() contract.MessageRepository
}
