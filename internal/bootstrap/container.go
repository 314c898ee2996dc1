package bootstrap

import (
	"context"
	"fmt"
	"time"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/controller"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/mailer"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/ratelimit"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/redisstore"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/service"
	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/llm/factory"

	pktNats "ai-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const domainEventsTopic = "domain-events"

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	ChatController   controller.IChatController
	HealthController controller.IHealthController

	// Middleware shared by the routes
	AuthMiddleware      fiber.Handler
	RateLimitMiddleware fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

type options struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	auditLogger logger.ILogger
}

type Option func(*options)

// WithLLMProvider replaces the configured backend, e.g. with a fake in tests.
func WithLLMProvider(p llm.LLMProvider) Option {
	return func(o *options) {
		o.llmProvider = p
	}
}

// WithLoggers replaces the application and audit loggers.
func WithLoggers(app, audit logger.ILogger) Option {
	return func(o *options) {
		o.logger = app
		o.auditLogger = audit
	}
}

func NewContainer(db *gorm.DB, cfg *config.Config, opts ...Option) (*Container, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	sysLogger := o.logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	}
	auditLogger := o.auditLogger
	if auditLogger == nil {
		auditLogger = logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	}
	c.Logger = sysLogger

	authCfg := cfg.Auth
	if authCfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		sysLogger.Warn("BOOT", "JWT_SECRET not set, using development default", nil)
		authCfg.JWTSecret = "default_secret"
	}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		sysLogger,
	)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		logger.NewWatermillAdapter(sysLogger),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOT", "NATS unavailable, events stay in process", map[string]interface{}{"error": err.Error()})
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	publisherService := service.NewPublisherService(domainEventsTopic, pubSub, forwarder, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, domainEventsTopic, auditLogger, sysLogger)

	// 3. Session storage
	blocklist := newTokenBlocklist(cfg, sysLogger, c)
	userCache := memory.NewUserCache(authCfg.UserCacheTTL)

	// 4. LLM Provider
	llmProvider := o.llmProvider
	if llmProvider == nil {
		p, err := factory.NewLLMProvider(factory.Settings{
			Provider: cfg.Ai.LLMProvider,
			Model:    cfg.Ai.LLMModel,
			APIKey:   cfg.Ai.APIKey,
			BaseURL:  cfg.Ai.LLMBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
		}
		llmProvider = p
	}
	llmProvider = llm.WithTimeout(llmProvider, cfg.Ai.Timeout)
	sysLogger.Info("BOOT", "LLM provider ready", map[string]interface{}{"provider": llmProvider.Name(), "timeout": cfg.Ai.Timeout.String()})

	// 5. Services
	authService := service.NewAuthService(uowFactory, userCache, blocklist, emailService, publisherService, sysLogger, authCfg, cfg.Database.QueryTimeout)
	chatService := service.NewChatService(uowFactory, llmProvider, publisherService, sysLogger, cfg.Database.QueryTimeout)
	titleService := service.NewTitleService(uowFactory, llmProvider, publisherService, sysLogger, cfg.Database.QueryTimeout)

	limiter := ratelimit.New(ratelimit.Config{
		Window:      cfg.RateLimit.Window,
		MaxRequests: cfg.RateLimit.MaxRequests,
	})

	// 6. Controllers
	validator := serverutils.NewValidator()

	c.AuthMiddleware = serverutils.AuthMiddleware(authService, authCfg.CookieName, sysLogger)
	c.RateLimitMiddleware = serverutils.RateLimitMiddleware(limiter)

	c.AuthController = controller.NewAuthController(authService, validator, sysLogger, authCfg)
	c.ChatController = controller.NewChatController(chatService, titleService, validator, sysLogger)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	c.HealthController = controller.NewHealthController(sqlDB)

	return c, nil
}

// newTokenBlocklist prefers redis so revocations survive restarts and are
// shared between instances.
func newTokenBlocklist(cfg *config.Config, sysLogger logger.ILogger, c *Container) contract.TokenBlocklist {
	if cfg.App.RedisURL == "" {
		return memory.NewTokenBlocklist()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("BOOT", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		sysLogger.Warn("BOOT", "Redis unavailable, revoked sessions kept in memory", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return memory.NewTokenBlocklist()
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return redisstore.NewTokenBlocklist(rdb)
}

// Close releases the event bus and external connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
