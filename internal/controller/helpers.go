package controller

import (
	"errors"

	"ai-chat-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// badRequest answers a decode or validation failure with its client message.
func badRequest(ctx *fiber.Ctx, err error) error {
	var verr *serverutils.ValidationError
	if errors.As(err, &verr) {
		return serverutils.Error(ctx, fiber.StatusBadRequest, verr.Message)
	}
	if errors.Is(err, serverutils.ErrInvalidJSON) || errors.Is(err, serverutils.ErrInvalidBody) {
		return serverutils.Error(ctx, fiber.StatusBadRequest, err.Error())
	}
	return serverutils.Error(ctx, fiber.StatusBadRequest, serverutils.ErrInvalidBody.Error())
}
