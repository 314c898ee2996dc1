package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type RateLimiter interface {
	Allow(userID string, now time.Time) bool
}

// RateLimitMiddleware must run after AuthMiddleware; it budgets per user.
func RateLimitMiddleware(limiter RateLimiter) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userId, err := GetUserID(ctx)
		if err != nil {
			return Error(ctx, fiber.StatusUnauthorized, MsgUnauthorized)
		}

		if !limiter.Allow(userId.String(), time.Now()) {
			return Error(ctx, fiber.StatusTooManyRequests, MsgTooManyRequests)
		}
		return ctx.Next()
	}
}
