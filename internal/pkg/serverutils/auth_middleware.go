package serverutils

import (
	"context"
	"errors"
	"strings"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	localUserID  = "user_id"
	localSession = "session"
)

var ErrNoSession = errors.New("no session in request context")

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*dto.SessionClaims, error)
}

// TokenFromRequest reads the session cookie, falling back to a Bearer header.
func TokenFromRequest(ctx *fiber.Ctx, cookieName string) string {
	if token := ctx.Cookies(cookieName); token != "" {
		return token
	}
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session and stores the
// caller's id in the request locals.
func AuthMiddleware(resolver SessionResolver, cookieName string, log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := TokenFromRequest(ctx, cookieName)
		if token == "" {
			return Error(ctx, fiber.StatusUnauthorized, MsgUnauthorized)
		}

		session, err := resolver.ResolveSession(ctx.UserContext(), token)
		if err != nil {
			log.Debug("AUTH", "Session rejected", map[string]interface{}{"path": ctx.Path(), "error": err.Error()})
			return Error(ctx, fiber.StatusUnauthorized, MsgUnauthorized)
		}

		ctx.Locals(localUserID, session.UserId)
		ctx.Locals(localSession, session)
		return ctx.Next()
	}
}

func GetUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	userId, ok := ctx.Locals(localUserID).(uuid.UUID)
	if !ok || userId == uuid.Nil {
		return uuid.Nil, ErrNoSession
	}
	return userId, nil
}

func GetSession(ctx *fiber.Ctx) (*dto.SessionClaims, error) {
	session, ok := ctx.Locals(localSession).(*dto.SessionClaims)
	if !ok || session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}
