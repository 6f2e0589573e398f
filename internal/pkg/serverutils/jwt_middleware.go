package serverutils

import (
	"strings"

	"chatbot-be/internal/pkg/apperror"
	"chatbot-be/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const identityLocalsKey = "identity"

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(tokens *token.Manager) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity, err := tokens.Verify(bearerToken(ctx))
		if err != nil {
			return err
		}
		ctx.Locals(identityLocalsKey, identity)
		return ctx.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise continues anonymously. It never rejects.
func OptionalAuth(tokens *token.Manager) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if raw := bearerToken(ctx); raw != "" {
			if identity, err := tokens.Verify(raw); err == nil {
				ctx.Locals(identityLocalsKey, identity)
			}
		}
		return ctx.Next()
	}
}

// CurrentIdentity returns the identity attached by the auth middleware.
func CurrentIdentity(ctx *fiber.Ctx) (*token.Identity, bool) {
	identity, ok := ctx.Locals(identityLocalsKey).(*token.Identity)
	return identity, ok && identity != nil
}

// CurrentUserId is for routes behind RequireAuth.
func CurrentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	identity, ok := CurrentIdentity(ctx)
	if !ok {
		return uuid.Nil, apperror.Auth("missing token")
	}
	return identity.UserId, nil
}

// OptionalUserId returns nil for anonymous callers.
func OptionalUserId(ctx *fiber.Ctx) *uuid.UUID {
	identity, ok := CurrentIdentity(ctx)
	if !ok {
		return nil
	}
	id := identity.UserId
	return &id
}

func bearerToken(ctx *fiber.Ctx) string {
	authHeader := strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}
