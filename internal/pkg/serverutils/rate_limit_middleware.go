package serverutils

import (
	"context"

	"chatbot-be/internal/pkg/apperror"
	"chatbot-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit keys authenticated callers by user id and anonymous ones by IP.
// It must run after the auth middleware. Limiter errors let the request through.
func RateLimit(limiter Limiter, log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		key := "ip:" + ctx.IP()
		if identity, ok := CurrentIdentity(ctx); ok {
			key = "user:" + identity.UserId.String()
		}

		allowed, err := limiter.Allow(ctx.UserContext(), key)
		if err != nil {
			log.Warn("RATE_LIMIT", "Limiter unavailable, allowing request", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		if !allowed {
			return apperror.RateLimited("too many requests, please slow down")
		}
		return ctx.Next()
	}
}
