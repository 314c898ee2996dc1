package service

import "errors"

// Client facing failures. Controllers map them to status codes and send
// the message text as is; wrapped causes stay in the logs.
var (
	ErrEmailAlreadyRegistered = errors.New("Email already registered")
	ErrRegistrationFailed     = errors.New("Registration failed")
	ErrInvalidCredentials     = errors.New("Invalid email or password")
	ErrUnauthenticated        = errors.New("Unauthorized")
	ErrChatAccessDenied       = errors.New("Unauthorized")

	ErrChatCreateFailed      = errors.New("Failed to create chat")
	ErrChatsUnavailable      = errors.New("Failed to fetch chats")
	ErrMessagesUnavailable   = errors.New("Failed to fetch messages")
	ErrChatDeleteFailed      = errors.New("Failed to delete chat")
	ErrChatUpdateFailed      = errors.New("Failed to update chat")
	ErrMessageNotSaved       = errors.New("Failed to save your message")
	ErrHistoryUnavailable    = errors.New("Failed to load chat history")
	ErrGenerationFailed      = errors.New("Failed to generate response. Please try again.")
	ErrReplyNotSaved         = errors.New("Failed to save AI response")
	ErrTitleGenerationFailed = errors.New("Failed to generate title")
	ErrTitleUpdateFailed     = errors.New("Failed to update title")
)

var publicErrors = []error{
	ErrEmailAlreadyRegistered,
	ErrRegistrationFailed,
	ErrInvalidCredentials,
	ErrUnauthenticated,
	ErrChatAccessDenied,
	ErrChatCreateFailed,
	ErrChatsUnavailable,
	ErrMessagesUnavailable,
	ErrChatDeleteFailed,
	ErrChatUpdateFailed,
	ErrMessageNotSaved,
	ErrHistoryUnavailable,
	ErrGenerationFailed,
	ErrReplyNotSaved,
	ErrTitleGenerationFailed,
	ErrTitleUpdateFailed,
}

// PublicMessage returns the client safe text carried by err, or fallback
// when err wraps none of the sentinels above.
func PublicMessage(err error, fallback string) string {
	for _, target := range publicErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return fallback
}
