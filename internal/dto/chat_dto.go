package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ChatDTO struct {
	Id         uuid.UUID  `json:"id"`
	UserId     uuid.UUID  `json:"user_id"`
	Title      *string    `json:"title"`
	IsFavorite bool       `json:"is_favorite"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type MessageDTO struct {
	Id        uuid.UUID `json:"id"`
	ChatId    uuid.UUID `json:"chat_id"`
	UserId    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	ChatId  string `json:"chatId" validate:"required,uuid"`
	Message string `json:"message" validate:"required,max=2000"`
}

type SendMessageResponse struct {
	UserMessage      *MessageDTO `json:"userMessage"`
	AssistantMessage *MessageDTO `json:"assistantMessage"`
}

type ChatIdRequest struct {
	ChatId string `json:"chatId" validate:"required,uuid"`
}

type ChatMessagesQuery struct {
	ChatId string `query:"chatId" validate:"required,uuid"`
}

type GenerateTitleRequest struct {
	ChatId  string `json:"chatId" validate:"required,uuid"`
	Message string `json:"message" validate:"required,max=1000"`
}

func (r *GenerateTitleRequest) Normalize() {
	r.Message = strings.TrimSpace(r.Message)
}

type RenameChatRequest struct {
	ChatId string `json:"chatId" validate:"required,uuid"`
	Title  string `json:"title" validate:"required,max=100"`
}

func (r *RenameChatRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

type FavoriteChatRequest struct {
	ChatId     string `json:"chatId" validate:"required,uuid"`
	IsFavorite *bool  `json:"isFavorite" validate:"required"`
}

type SearchChatsQuery struct {
	Query string `query:"q" validate:"required,max=100"`
}

func (q *SearchChatsQuery) Normalize() {
	q.Query = strings.TrimSpace(q.Query)
}
