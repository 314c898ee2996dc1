package controller

import (
	"errors"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, authMiddleware, rateLimit fiber.Handler)
	ListChats(ctx *fiber.Ctx) error
	CreateChat(ctx *fiber.Ctx) error
	SearchChats(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	DeleteChat(ctx *fiber.Ctx) error
	GenerateTitle(ctx *fiber.Ctx) error
	RenameChat(ctx *fiber.Ctx) error
	SetFavorite(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService  service.IChatService
	titleService service.ITitleService
	validator    *serverutils.Validator
	log          logger.ILogger
}

func NewChatController(chatService service.IChatService, titleService service.ITitleService, validator *serverutils.Validator, log logger.ILogger) IChatController {
	return &chatController{
		chatService:  chatService,
		titleService: titleService,
		validator:    validator,
		log:          log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, authMiddleware, rateLimit fiber.Handler) {
	r.Get("/chats", authMiddleware, c.ListChats)
	r.Post("/chats", authMiddleware, c.CreateChat)
	r.Get("/chats/search", authMiddleware, c.SearchChats)

	// Rate limiting runs before the body is read.
	r.Post("/chat", authMiddleware, rateLimit, c.SendMessage)

	r.Get("/chat/messages", authMiddleware, c.GetMessages)
	r.Post("/chat/delete", authMiddleware, c.DeleteChat)
	r.Post("/chat/title", authMiddleware, c.GenerateTitle)
	r.Post("/chat/rename", authMiddleware, c.RenameChat)
	r.Post("/chat/favorite", authMiddleware, c.SetFavorite)
}

// fail maps service errors to a status. Causes are logged, never returned.
func (c *chatController) fail(ctx *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, service.ErrChatAccessDenied) {
		return serverutils.Error(ctx, fiber.StatusForbidden, err.Error())
	}

	c.log.Error("CHAT", "Request failed", map[string]interface{}{
		"method": ctx.Method(),
		"path":   ctx.Path(),
		"error":  err.Error(),
	})
	return serverutils.Error(ctx, fiber.StatusInternalServerError, service.PublicMessage(err, fallback))
}

// ListChats fails open: a storage failure answers with an empty list so the
// sidebar still renders. No other endpoint does this.
func (c *chatController) ListChats(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	serverutils.NoStore(ctx)

	chats, err := c.chatService.ListChats(ctx.UserContext(), userId)
	if err != nil {
		c.log.Warn("CHAT", "Listing chats failed, answering with an empty list", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		chats = []*dto.ChatDTO{}
	}

	return ctx.JSON(fiber.Map{"success": true, "chats": chats})
}

func (c *chatController) CreateChat(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	chat, err := c.chatService.CreateChat(ctx.UserContext(), userId)
	if err != nil {
		return c.fail(ctx, err, service.ErrChatCreateFailed.Error())
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "chat": chat})
}

func (c *chatController) SearchChats(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	var query dto.SearchChatsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return badRequest(ctx, err)
	}
	if err := c.validator.Struct(&query); err != nil {
		return badRequest(ctx, err)
	}

	serverutils.NoStore(ctx)

	chats, err := c.chatService.SearchChats(ctx.UserContext(), userId, query.Query)
	if err != nil {
		return c.fail(ctx, err, service.ErrChatsUnavailable.Error())
	}

	return ctx.JSON(fiber.Map{"success": true, "chats": chats})
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	var req dto.SendMessageRequest
	if err := c.validator.DecodeJSON(ctx.Body(), &req); err != nil {
		return badRequest(ctx, err)
	}

	serverutils.NoStore(ctx)

	// chatId already passed the uuid rule.
	res, err := c.chatService.SendMessage(ctx.UserContext(), userId, uuid.MustParse(req.ChatId), req.Message)
	if err != nil {
		return c.fail(ctx, err, serverutils.MsgInternalError)
	}

	return ctx.JSON(fiber.Map{
		"success":          true,
		"userMessage":      res.UserMessage,
		"assistantMessage": res.AssistantMessage,
	})
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	var query dto.ChatMessagesQuery
	if err := ctx.QueryParser(&query); err != nil {
		return badRequest(ctx, err)
	}
	if err := c.validator.Struct(&query); err != nil {
		return serverutils.Error(ctx, fiber.StatusBadRequest, "Valid chatId query parameter is required")
	}

	serverutils.NoStore(ctx)

	messages, err := c.chatService.GetMessages(ctx.UserContext(), userId, uuid.MustParse(query.ChatId))
	if err != nil {
		return c.fail(ctx, err, service.ErrMessagesUnavailable.Error())
	}

	return ctx.JSON(fiber.Map{"success": true, "messages": messages})
}

func (c *chatController) DeleteChat(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	var req dto.ChatIdRequest
	if err := c.validator.DecodeJSON(ctx.Body(), &req); err != nil {
		return badRequest(ctx, err)
	}

	if err := c.chatService.DeleteChat(ctx.UserContext(), userId, uuid.MustParse(req.ChatId)); err != nil {
		return c.fail(ctx, err, service.ErrChatDeleteFailed.Error())
	}

	return ctx.JSON(fiber.Map{"success": true, "message": "Chat deleted successfully"})
}

func (c *chatController) GenerateTitle(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	var req dto.GenerateTitleRequest
	if err := c.validator.DecodeJSON(ctx.Body(), &req); err != nil {
		return badRequest(ctx, err)
	}

	title, err := c.titleService.GenerateTitle(ctx.UserContext(), userId, uuid.MustParse(req.ChatId), req.Message)
	if err != nil {
		return c.fail(ctx, err, service.ErrTitleGenerationFailed.Error())
	}

	return ctx.JSON(fiber.Map{"success": true, "title": title})
}

func (c *chatController) RenameChat(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	var req dto.RenameChatRequest
	if err := c.validator.DecodeJSON(ctx.Body(), &req); err != nil {
		return badRequest(ctx, err)
	}

	chat, err := c.chatService.RenameChat(ctx.UserContext(), userId, uuid.MustParse(req.ChatId), req.Title)
	if err != nil {
		return c.fail(ctx, err, service.ErrChatUpdateFailed.Error())
	}

	return ctx.JSON(fiber.Map{"success": true, "chat": chat})
}

func (c *chatController) SetFavorite(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	var req dto.FavoriteChatRequest
	if err := c.validator.DecodeJSON(ctx.Body(), &req); err != nil {
		return badRequest(ctx, err)
	}

	chat, err := c.chatService.SetFavorite(ctx.UserContext(), userId, uuid.MustParse(req.ChatId), *req.IsFavorite)
	if err != nil {
		return c.fail(ctx, err, service.ErrChatUpdateFailed.Error())
	}

	return ctx.JSON(fiber.Map{"success": true, "chat": chat})
}
