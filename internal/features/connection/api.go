package connection

import (
	"go-syncbridge/internal/api"
	"go-syncbridge/internal/config"
	"go-syncbridge/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ConnectionApi struct {
	controller *ConnectionController
	config     *config.Config
}

func NewConnectionApi(controller *ConnectionController, config *config.Config) api.Route {
	return &ConnectionApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all connection routes
func (h *ConnectionApi) Setup(app *fiber.App) {
	group := app.Group("/api/connections", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListConnections)
	group.Post("/:service/test", h.controller.TestConnection)
	group.Put("/:service", h.controller.StoreConnection)
	group.Delete("/:service", h.controller.Disconnect)
}
