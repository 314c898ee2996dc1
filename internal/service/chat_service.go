package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "ai-chat-be/internal/service"

// IChatService owns chats and the message send flow.
type IChatService interface {
	CreateChat(ctx context.Context, userId uuid.UUID) (*dto.ChatDTO, error)
	ListChats(ctx context.Context, userId uuid.UUID) ([]*dto.ChatDTO, error)
	SearchChats(ctx context.Context, userId uuid.UUID, query string) ([]*dto.ChatDTO, error)
	GetMessages(ctx context.Context, userId, chatId uuid.UUID) ([]*dto.MessageDTO, error)
	SendMessage(ctx context.Context, userId, chatId uuid.UUID, text string) (*dto.SendMessageResponse, error)
	DeleteChat(ctx context.Context, userId, chatId uuid.UUID) error
	RenameChat(ctx context.Context, userId, chatId uuid.UUID, title string) (*dto.ChatDTO, error)
	SetFavorite(ctx context.Context, userId, chatId uuid.UUID, favorite bool) (*dto.ChatDTO, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	eventPublisher IPublisherService
	log            logger.ILogger
	queryTimeout   time.Duration
	tracer         trace.Tracer
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	eventPublisher IPublisherService,
	log logger.ILogger,
	queryTimeout time.Duration,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
		log:            log,
		queryTimeout:   queryTimeout,
		tracer:         otel.Tracer(tracerName),
	}
}

func toChatDTO(chat *entity.Chat) *dto.ChatDTO {
	return &dto.ChatDTO{
		Id:         chat.Id,
		UserId:     chat.UserId,
		Title:      chat.Title,
		IsFavorite: chat.IsFavorite,
		CreatedAt:  chat.CreatedAt,
		UpdatedAt:  chat.UpdatedAt,
	}
}

func toChatDTOs(chats []*entity.Chat) []*dto.ChatDTO {
	res := make([]*dto.ChatDTO, 0, len(chats))
	for _, c := range chats {
		res = append(res, toChatDTO(c))
	}
	return res
}

func toMessageDTO(msg *entity.Message) *dto.MessageDTO {
	return &dto.MessageDTO{
		Id:        msg.Id,
		ChatId:    msg.ChatId,
		UserId:    msg.UserId,
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

// chatError keeps ownership failures distinct from storage failures.
func chatError(err, fallback error) error {
	if errors.Is(err, contract.ErrChatNotFound) || errors.Is(err, contract.ErrChatAccessDenied) {
		return ErrChatAccessDenied
	}
	return fmt.Errorf("%w: %v", fallback, err)
}

func (s *chatService) CreateChat(ctx context.Context, userId uuid.UUID) (*dto.ChatDTO, error) {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat := &entity.Chat{
		Id:     uuid.New(),
		UserId: userId,
	}
	if err := uow.ChatRepository().Create(ctx, chat); err != nil {
		s.log.Error("CHAT", "Failed to create chat", map[string]interface{}{"user_id": userId, "error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrChatCreateFailed, err)
	}

	s.eventPublisher.Publish(ctx, events.New(events.ChatCreated, map[string]interface{}{
		"user_id": userId,
		"chat_id": chat.Id,
	}))

	return toChatDTO(chat), nil
}

func (s *chatService) ListChats(ctx context.Context, userId uuid.UUID) ([]*dto.ChatDTO, error) {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chats, err := uow.ChatRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.ChatListOrder{},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChatsUnavailable, err)
	}
	return toChatDTOs(chats), nil
}

func (s *chatService) SearchChats(ctx context.Context, userId uuid.UUID, query string) ([]*dto.ChatDTO, error) {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chats, err := uow.ChatRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.ChatTitleSearch{Query: query},
		specification.ChatListOrder{},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChatsUnavailable, err)
	}
	return toChatDTOs(chats), nil
}

func (s *chatService) GetMessages(ctx context.Context, userId, chatId uuid.UUID) ([]*dto.MessageDTO, error) {
	messages, err := s.loadThread(ctx, userId, chatId)
	if err != nil {
		return nil, chatError(err, ErrMessagesUnavailable)
	}

	res := make([]*dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		res = append(res, toMessageDTO(m))
	}
	return res, nil
}

// loadThread re-checks ownership and returns the chat's messages oldest first.
func (s *chatService) loadThread(ctx context.Context, userId, chatId uuid.UUID) ([]*entity.Message, error) {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := uow.ChatRepository().FindOwned(ctx, chatId, userId); err != nil {
		return nil, err
	}

	return uow.MessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatId},
		specification.ThreadOrder{},
	)
}

// SendMessage stores the user's turn, asks the model for a reply and stores
// the reply. A failure after the first step leaves the user turn in place.
func (s *chatService) SendMessage(ctx context.Context, userId, chatId uuid.UUID, text string) (*dto.SendMessageResponse, error) {
	// 1. Persist user message
	userMsg, err := s.saveMessage(ctx, userId, chatId, &entity.Message{
		ChatId:    chatId,
		UserId:    userId,
		Role:      entity.MessageRoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	})
	if err != nil {
		if !errors.Is(err, contract.ErrChatNotFound) && !errors.Is(err, contract.ErrChatAccessDenied) {
			s.log.Error("CHAT", "Failed to save user message", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
		}
		return nil, chatError(err, ErrMessageNotSaved)
	}

	// 2. Load full history
	thread, err := s.loadThread(ctx, userId, chatId)
	if err != nil {
		s.log.Error("CHAT", "Failed to load chat history", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
		return nil, chatError(err, ErrHistoryUnavailable)
	}

	history := make([]llm.Message, 0, len(thread))
	for _, m := range thread {
		history = append(history, llm.Message{Role: string(m.Role), Content: m.Content})
	}

	// 3. Ask the model
	started := time.Now()
	reply, err := s.complete(ctx, chatId, history)
	latency := time.Since(started)
	if err != nil {
		s.log.Error("LLM", "AI generation failed", map[string]interface{}{
			"chat_id":    chatId,
			"provider":   s.llmProvider.Name(),
			"kind":       string(llm.KindOf(err)),
			"latency_ms": latency.Milliseconds(),
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	// 4. Persist assistant reply, strictly after the user turn
	replyAt := time.Now()
	if replyAt.Sub(userMsg.CreatedAt) < time.Microsecond {
		replyAt = userMsg.CreatedAt.Add(time.Microsecond)
	}
	assistantMsg, err := s.saveMessage(ctx, userId, chatId, &entity.Message{
		ChatId:  chatId,
		UserId:  userId,
		Role:    entity.MessageRoleAssistant,
		Content: reply,
		Metadata: map[string]interface{}{
			"provider":   s.llmProvider.Name(),
			"latency_ms": latency.Milliseconds(),
		},
		CreatedAt: replyAt,
	})
	if err != nil {
		s.log.Error("CHAT", "Failed to save AI response", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
		return nil, chatError(err, ErrReplyNotSaved)
	}

	s.eventPublisher.Publish(ctx, events.New(events.MessageSent, map[string]interface{}{
		"user_id":    userId,
		"chat_id":    chatId,
		"provider":   s.llmProvider.Name(),
		"latency_ms": latency.Milliseconds(),
	}))

	// 5. Return both
	return &dto.SendMessageResponse{
		UserMessage:      toMessageDTO(userMsg),
		AssistantMessage: toMessageDTO(assistantMsg),
	}, nil
}

// saveMessage appends msg after an ownership check and bumps the chat's
// updated_at, all in one transaction.
func (s *chatService) saveMessage(ctx context.Context, userId, chatId uuid.UUID, msg *entity.Message) (*entity.Message, error) {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	err := s.uowFactory.NewUnitOfWork(ctx).Transaction(ctx, func(tx unitofwork.UnitOfWork) error {
		if _, err := tx.ChatRepository().FindOwned(ctx, chatId, userId); err != nil {
			return err
		}
		if err := tx.MessageRepository().Create(ctx, msg); err != nil {
			return err
		}
		return tx.ChatRepository().Touch(ctx, chatId)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *chatService) complete(ctx context.Context, chatId uuid.UUID, history []llm.Message) (string, error) {
	ctx, span := s.tracer.Start(ctx, "llm.chat", trace.WithAttributes(
		attribute.String("llm.provider", s.llmProvider.Name()),
		attribute.String("chat.id", chatId.String()),
		attribute.Int("llm.history_length", len(history)),
	))
	defer span.End()

	reply, err := s.llmProvider.Chat(ctx, history)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("llm.error_kind", string(llm.KindOf(err))))
		span.SetStatus(codes.Error, "completion failed")
		return "", err
	}
	return reply, nil
}

func (s *chatService) DeleteChat(ctx context.Context, userId, chatId uuid.UUID) error {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrChatDeleteFailed, err)
	}
	defer uow.Rollback()

	if _, err := uow.ChatRepository().FindOwned(ctx, chatId, userId); err != nil {
		return chatError(err, ErrChatDeleteFailed)
	}
	if err := uow.ChatRepository().Delete(ctx, chatId); err != nil {
		return fmt.Errorf("%w: %v", ErrChatDeleteFailed, err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrChatDeleteFailed, err)
	}

	s.eventPublisher.Publish(ctx, events.New(events.ChatDeleted, map[string]interface{}{
		"user_id": userId,
		"chat_id": chatId,
	}))
	return nil
}

func (s *chatService) RenameChat(ctx context.Context, userId, chatId uuid.UUID, title string) (*dto.ChatDTO, error) {
	chat, err := s.updateChat(ctx, userId, chatId, contract.ChatUpdate{Title: &title})
	if err != nil {
		return nil, err
	}

	s.eventPublisher.Publish(ctx, events.New(events.ChatRenamed, map[string]interface{}{
		"user_id": userId,
		"chat_id": chatId,
	}))
	return chat, nil
}

func (s *chatService) SetFavorite(ctx context.Context, userId, chatId uuid.UUID, favorite bool) (*dto.ChatDTO, error) {
	chat, err := s.updateChat(ctx, userId, chatId, contract.ChatUpdate{IsFavorite: &favorite})
	if err != nil {
		return nil, err
	}

	s.eventPublisher.Publish(ctx, events.New(events.ChatFavorited, map[string]interface{}{
		"user_id":     userId,
		"chat_id":     chatId,
		"is_favorite": favorite,
	}))
	return chat, nil
}

// updateChat checks ownership and writes the changed columns in one
// transaction, so a delete that lands in between is never undone.
func (s *chatService) updateChat(ctx context.Context, userId, chatId uuid.UUID, changes contract.ChatUpdate) (*dto.ChatDTO, error) {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	var chat *entity.Chat
	err := s.uowFactory.NewUnitOfWork(ctx).Transaction(ctx, func(tx unitofwork.UnitOfWork) error {
		if _, err := tx.ChatRepository().FindOwned(ctx, chatId, userId); err != nil {
			return err
		}
		updated, err := tx.ChatRepository().Update(ctx, chatId, changes)
		if err != nil {
			return err
		}
		chat = updated
		return nil
	})
	if err != nil {
		return nil, chatError(err, ErrChatUpdateFailed)
	}
	return toChatDTO(chat), nil
}
