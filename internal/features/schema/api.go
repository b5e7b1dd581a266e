package schema

import (
	"go-syncbridge/internal/api"
	"go-syncbridge/internal/config"
	"go-syncbridge/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SchemaApi struct {
	controller *SchemaController
	config     *config.Config
}

func NewSchemaApi(controller *SchemaController, config *config.Config) api.Route {
	return &SchemaApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all schema routes
func (h *SchemaApi) Setup(app *fiber.App) {
	group := app.Group("/api/schema", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/:service/collections", h.controller.ListCollections)
	group.Get("/:service/collections/:id/fields", h.controller.ListFields)
	group.Post("/airtable/tables/:id/fields", h.controller.CreateAirtableField)
}
