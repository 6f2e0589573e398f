package controller

import (
	"chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISeedController interface {
	RegisterRoutes(r fiber.Router)
	Seed(ctx *fiber.Ctx) error
}

type seedController struct {
	service service.ISeedService
	enabled bool
}

// NewSeedController serves the seeder only when enabled; otherwise /seed
// answers 403.
func NewSeedController(service service.ISeedService, enabled bool) ISeedController {
	return &seedController{
		service: service,
		enabled: enabled,
	}
}

func (c *seedController) RegisterRoutes(r fiber.Router) {
	r.Post("/seed", c.Seed)
}

func (c *seedController) Seed(ctx *fiber.Ctx) error {
	if !c.enabled {
		return fiber.NewError(fiber.StatusForbidden, "this route is only available in the development environment")
	}

	res, err := c.service.Seed(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
