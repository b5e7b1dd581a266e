package transform

import (
	"go-syncbridge/internal/api"
	"go-syncbridge/internal/config"
	"go-syncbridge/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TransformApi struct {
	controller *TransformController
	config     *config.Config
}

func NewTransformApi(controller *TransformController, config *config.Config) api.Route {
	return &TransformApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all transform routes
func (h *TransformApi) Setup(app *fiber.App) {
	group := app.Group("/api/transforms", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListTransforms)
	group.Post("/", h.controller.RegisterTransform)
}
