package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"

	"github.com/google/uuid"
)

type ITitleService interface {
	GenerateTitle(ctx context.Context, userId, chatId uuid.UUID, message string) (string, error)
}

type titleService struct {
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	eventPublisher IPublisherService
	log            logger.ILogger
	queryTimeout   time.Duration
}

func NewTitleService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	eventPublisher IPublisherService,
	log logger.ILogger,
	queryTimeout time.Duration,
) ITitleService {
	return &titleService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
		log:            log,
		queryTimeout:   queryTimeout,
	}
}

func titlePrompt(message string) string {
	return fmt.Sprintf(constant.TitlePromptTemplate, message)
}

// cleanTitle trims the model output, drops wrapping quotes and caps the length.
func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, "\"'`“”‘’")
	title = strings.TrimSpace(title)

	runes := []rune(title)
	if len(runes) > constant.TitleMaxRunes {
		title = strings.TrimSpace(string(runes[:constant.TitleMaxRunes]))
	}
	return title
}

func (s *titleService) GenerateTitle(ctx context.Context, userId, chatId uuid.UUID, message string) (string, error) {
	// Ownership first so a foreign chat never costs a completion.
	if err := s.checkOwner(ctx, userId, chatId); err != nil {
		return "", err
	}

	raw, err := s.llmProvider.Generate(ctx, titlePrompt(message), llm.WithMaxTokens(constant.TitleMaxTokens))
	if err != nil {
		s.log.Error("LLM", "Title generation failed", map[string]interface{}{
			"chat_id":  chatId,
			"provider": s.llmProvider.Name(),
			"kind":     string(llm.KindOf(err)),
			"error":    err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrTitleGenerationFailed, err)
	}

	title := cleanTitle(raw)
	if title == "" {
		return "", fmt.Errorf("%w: empty title from %s", ErrTitleGenerationFailed, s.llmProvider.Name())
	}

	if err := s.store(ctx, userId, chatId, title); err != nil {
		return "", err
	}

	s.eventPublisher.Publish(ctx, events.New(events.ChatTitled, map[string]interface{}{
		"user_id": userId,
		"chat_id": chatId,
	}))
	return title, nil
}

func (s *titleService) checkOwner(ctx context.Context, userId, chatId uuid.UUID) error {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := uow.ChatRepository().FindOwned(ctx, chatId, userId); err != nil {
		return chatError(err, ErrTitleUpdateFailed)
	}
	return nil
}

func (s *titleService) store(ctx context.Context, userId, chatId uuid.UUID, title string) error {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	err := s.uowFactory.NewUnitOfWork(ctx).Transaction(ctx, func(tx unitofwork.UnitOfWork) error {
		if _, err := tx.ChatRepository().FindOwned(ctx, chatId, userId); err != nil {
			return err
		}
		_, err := tx.ChatRepository().Update(ctx, chatId, contract.ChatUpdate{Title: &title})
		return err
	})
	if err != nil {
		return chatError(err, ErrTitleUpdateFailed)
	}
	return nil
}
