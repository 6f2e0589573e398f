package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"chatbot-be/internal/config"
	"chatbot-be/internal/controller"
	"chatbot-be/internal/events"
	"chatbot-be/internal/model"
	"chatbot-be/internal/pkg/logger"
	"chatbot-be/internal/pkg/serverutils"
	"chatbot-be/internal/pkg/token"
	"chatbot-be/internal/repository/filestore"
	"chatbot-be/internal/repository/memory"
	"chatbot-be/internal/repository/unitofwork"
	"chatbot-be/internal/service"
	"chatbot-be/pkg/database"
	"chatbot-be/pkg/llm"
	"chatbot-be/pkg/llm/factory"
	pktNats "chatbot-be/pkg/nats"
	"chatbot-be/pkg/ratelimit"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	ChatController         controller.IChatController
	ConversationController controller.IConversationController
	SeedController         controller.ISeedController
	HealthController       controller.IHealthController

	// Services used outside HTTP (cmd/seed, background workers)
	SeedService     service.ISeedService
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func() error
}

// NewContainer wires every dependency from cfg. An LLM provider may be
// passed in to replace the configured one; nil builds it from cfg.
func NewContainer(cfg *config.Config, sysLogger logger.ILogger, provider llm.LLMProvider) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Store
	uowFactory, err := c.newRepositoryFactory(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, pubSub.Close)

	var forwarder events.Forwarder
	if cfg.Infra.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Infra.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS, events stay in-process", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
			forwarder = natsPub
		}
	}
	publisher := events.NewBusPublisher(pubSub, forwarder, sysLogger)
	c.closers = append(c.closers, publisher.Close)

	auditLogger := logger.NewIsolatedLogger(auditLogPath(cfg.App.LogFilePath))
	c.closers = append(c.closers, auditLogger.Sync)
	c.ConsumerService = service.NewConsumerService(pubSub, events.Topic, auditLogger, sysLogger)

	// 3. Model
	if provider == nil {
		provider, err = factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.BaseURL, cfg.Ai.ApiKey)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init llm provider: %w", err)
		}
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. Rate limiting
	var limiter fiber.Handler
	if cfg.Infra.RedisURL != "" {
		fixedWindow, err := ratelimit.NewFixedWindowLimiterFromURL(cfg.Infra.RedisURL, "chatbot:ratelimit:chat", cfg.Infra.RateLimitMax, cfg.Infra.RateLimitWindow)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Rate limiting disabled", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, fixedWindow.Close)
			limiter = serverutils.RateLimit(fixedWindow, sysLogger)
		}
	}

	// 5. Services
	tokens, err := token.NewManager(cfg.Auth.JwtSecret, cfg.Auth.JwtExpiry)
	if err != nil {
		c.Close()
		return nil, err
	}

	var sessions service.AnonymousSessionStore
	if cfg.Chat.AnonymousMode == config.AnonymousModeEphemeral {
		sessions = memory.NewSessionRepository(cfg.Chat.AnonymousTTL)
	}

	authService := service.NewAuthService(uowFactory, tokens, publisher)
	chatService := service.NewChatService(uowFactory, publisher)
	conversationService := service.NewConversationService(uowFactory, provider, sessions, publisher, sysLogger, service.ConversationOptions{
		Timeout:       cfg.Ai.Timeout,
		AnonymousMode: cfg.Chat.AnonymousMode,
	})
	c.SeedService = service.NewSeedService(uowFactory, publisher)

	// 6. Controllers
	c.AuthController = controller.NewAuthController(authService, tokens)
	c.ChatController = controller.NewChatController(chatService, tokens)
	c.ConversationController = controller.NewConversationController(conversationService, tokens, limiter)
	c.SeedController = controller.NewSeedController(c.SeedService, cfg.IsDevelopment())
	c.HealthController = controller.NewHealthController()

	return c, nil
}

func (c *Container) newRepositoryFactory(cfg *config.Config) (unitofwork.RepositoryFactory, error) {
	switch cfg.Database.Backend {
	case config.StoreBackendFile:
		store, err := filestore.Open(cfg.Database.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		c.Logger.Info("BOOTSTRAP", "Using file store", map[string]interface{}{"path": cfg.Database.FilePath})
		return unitofwork.NewStoreRepositoryFactory(store), nil

	case config.StoreBackendPostgres, config.StoreBackendSqlite:
		db, err := database.NewGormDB(cfg.Database.Backend, cfg.Database.Connection, cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", cfg.Database.Backend, err)
		}
		if sqlDB, err := db.DB(); err == nil {
			c.closers = append(c.closers, sqlDB.Close)
		}
		if cfg.Database.AutoMigrate {
			if err := db.AutoMigrate(model.All()...); err != nil {
				return nil, fmt.Errorf("auto migrate: %w", err)
			}
		}
		c.Logger.Info("BOOTSTRAP", "Using SQL store", map[string]interface{}{"driver": cfg.Database.Backend})
		return unitofwork.NewRepositoryFactory(db), nil

	default:
		c.Logger.Info("BOOTSTRAP", "Using in-memory store; data is lost on restart", nil)
		return unitofwork.NewStoreRepositoryFactory(memory.NewStore()), nil
	}
}

// StartBackground launches workers that live until ctx is cancelled.
func (c *Container) StartBackground(ctx context.Context) error {
	return c.ConsumerService.Consume(ctx)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("BOOTSTRAP", "Failed to release resource", map[string]interface{}{"error": err.Error()})
		}
	}
	c.closers = nil
}

// auditLogPath places audit.log next to the main log file.
func auditLogPath(logFilePath string) string {
	return filepath.Join(filepath.Dir(logFilePath), "audit.log")
}
