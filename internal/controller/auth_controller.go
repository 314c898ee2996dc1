package controller

import (
	"errors"
	"time"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
}

type authController struct {
	service   service.IAuthService
	validator *serverutils.Validator
	log       logger.ILogger
	cfg       config.AuthConfig
}

func NewAuthController(service service.IAuthService, validator *serverutils.Validator, log logger.ILogger, cfg config.AuthConfig) IAuthController {
	return &authController{
		service:   service,
		validator: validator,
		log:       log,
		cfg:       cfg,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/logout", authMiddleware, c.Logout)
	h.Get("/me", authMiddleware, c.Me)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.validator.DecodeJSON(ctx.Body(), &req); err != nil {
		return badRequest(ctx, err)
	}

	user, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyRegistered) {
			return serverutils.Error(ctx, fiber.StatusConflict, err.Error())
		}
		c.log.Error("AUTH", "Register error", map[string]interface{}{"error": err.Error()})
		return serverutils.Error(ctx, fiber.StatusInternalServerError, service.PublicMessage(err, service.ErrRegistrationFailed.Error()))
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.validator.DecodeJSON(ctx.Body(), &req); err != nil {
		return badRequest(ctx, err)
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return serverutils.Error(ctx, fiber.StatusUnauthorized, err.Error())
		}
		c.log.Error("AUTH", "Login error", map[string]interface{}{"error": err.Error()})
		return serverutils.Error(ctx, fiber.StatusInternalServerError, "Login failed")
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     c.cfg.CookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		Secure:   c.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return ctx.JSON(fiber.Map{
		"success":    true,
		"user":       res.User,
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
	})
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	session, err := serverutils.GetSession(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	if err := c.service.Logout(ctx.UserContext(), session); err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     c.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   c.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return ctx.JSON(fiber.Map{"success": true})
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
	}

	user, err := c.service.Me(ctx.UserContext(), userId)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			return serverutils.Error(ctx, fiber.StatusUnauthorized, serverutils.MsgUnauthorized)
		}
		return err
	}

	return ctx.JSON(fiber.Map{"success": true, "user": user})
}
