package sync

import (
	"go-syncbridge/internal/api"
	"go-syncbridge/internal/config"
	"go-syncbridge/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	controller *SyncController
	config     *config.Config
}

func NewSyncApi(controller *SyncController, config *config.Config) api.Route {
	return &SyncApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all sync routes
func (h *SyncApi) Setup(app *fiber.App) {
	group := app.Group("/api/sync", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/run", h.controller.RunSync)
	group.Get("/status", h.controller.Status)
	group.Post("/reset", h.controller.Reset)
	group.Get("/runs", h.controller.ListRuns)
	group.Get("/runs/:id/logs", h.controller.GetRunLog)
}
