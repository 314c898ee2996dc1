package serverutils

import (
	"errors"

	"ai-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	MsgUnauthorized    = "Unauthorized"
	MsgTooManyRequests = "Too many requests. Please wait a moment."
	MsgInternalError   = "Internal server error"
)

// Error writes the {"error": message} body every failure shares.
func Error(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(fiber.Map{"error": message})
}

// NoStore keeps browsers and proxies from caching a response.
func NoStore(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
}

// ErrorHandler answers errors no handler dealt with. Client errors raised
// by fiber keep their status; everything else becomes a generic 500.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			return Error(ctx, fe.Code, fe.Message)
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
		return Error(ctx, fiber.StatusInternalServerError, MsgInternalError)
	}
}
