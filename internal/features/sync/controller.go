package sync

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service SyncService
}

func NewSyncController(service SyncService) *SyncController {
	return &SyncController{
		Service: service,
	}
}

// RunSync godoc
func (ctrl *SyncController) RunSync(c *fiber.Ctx) error {
	var cfg SyncConfig
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	run, err := ctrl.Service.PerformSync(c.Context(), cfg)
	if err != nil && run == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
			"data":  run,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Sync completed",
		"data":    run,
	})
}

// Status godoc
func (ctrl *SyncController) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": ctrl.Service.Status(),
	})
}

// Reset godoc
func (ctrl *SyncController) Reset(c *fiber.Ctx) error {
	if err := ctrl.Service.Reset(); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Sync engine reset",
	})
}

// ListRuns godoc
func (ctrl *SyncController) ListRuns(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	runs, err := ctrl.Service.ListRuns(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"data": runs,
	})
}

// GetRunLog godoc
func (ctrl *SyncController) GetRunLog(c *fiber.Ctx) error {
	entries, err := ctrl.Service.GetRunLog(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"data": entries,
	})
}
