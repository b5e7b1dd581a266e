package mapping

import (
	"go-syncbridge/internal/api"
	"go-syncbridge/internal/config"
	"go-syncbridge/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MappingApi struct {
	controller *MappingController
	config     *config.Config
}

func NewMappingApi(controller *MappingController, config *config.Config) api.Route {
	return &MappingApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all mapping routes
func (h *MappingApi) Setup(app *fiber.App) {
	group := app.Group("/api/mappings", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/automap", h.controller.AutoMap)
	group.Get("/", h.controller.ListSets)
	group.Post("/", h.controller.CreateSet)
	group.Get("/:id", h.controller.GetSet)
	group.Put("/:id", h.controller.UpdateSet)
	group.Delete("/:id", h.controller.DeleteSet)
	group.Post("/:id/mappings", h.controller.AddMapping)
	group.Put("/:id/mappings/:mappingId", h.controller.UpdateMapping)
	group.Delete("/:id/mappings/:mappingId", h.controller.RemoveMapping)
}
