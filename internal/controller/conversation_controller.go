package controller

import (
	"chatbot-be/internal/dto"
	"chatbot-be/internal/pkg/serverutils"
	"chatbot-be/internal/pkg/token"
	"chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Turn(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IConversationService
	tokens  *token.Manager
	limiter fiber.Handler
}

// NewConversationController takes an optional rate-limit handler, run after
// optional auth.
func NewConversationController(service service.IConversationService, tokens *token.Manager, limiter fiber.Handler) IConversationController {
	return &conversationController{
		service: service,
		tokens:  tokens,
		limiter: limiter,
	}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	handlers := []fiber.Handler{serverutils.OptionalAuth(c.tokens)}
	if c.limiter != nil {
		handlers = append(handlers, c.limiter)
	}
	handlers = append(handlers, c.Turn)
	r.Post("/chat", handlers...)
}

func (c *conversationController) Turn(ctx *fiber.Ctx) error {
	var req dto.ChatTurnRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Turn(ctx.UserContext(), serverutils.OptionalUserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
