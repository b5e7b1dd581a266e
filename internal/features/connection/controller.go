package connection

import (
	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/gateways"

	"github.com/gofiber/fiber/v2"
)

type ConnectionController struct {
	Service ConnectionService
}

func NewConnectionController(service ConnectionService) *ConnectionController {
	return &ConnectionController{
		Service: service,
	}
}

func serviceParam(c *fiber.Ctx) (common_models.Service, bool) {
	svc := common_models.Service(c.Params("service"))
	return svc, svc.Valid()
}

// TestConnection godoc
func (ctrl *ConnectionController) TestConnection(c *fiber.Ctx) error {
	svc, ok := serviceParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown service",
		})
	}

	var creds gateways.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := ctrl.Service.TestConnection(c.Context(), svc, creds)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// StoreConnection godoc
func (ctrl *ConnectionController) StoreConnection(c *fiber.Ctx) error {
	svc, ok := serviceParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown service",
		})
	}

	var creds gateways.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	conn, err := ctrl.Service.StoreConnection(c.Context(), svc, creds)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Connection stored successfully",
		"data":    conn,
	})
}

// ListConnections godoc
func (ctrl *ConnectionController) ListConnections(c *fiber.Ctx) error {
	conns, err := ctrl.Service.ListConnections(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": conns,
	})
}

// Disconnect godoc
func (ctrl *ConnectionController) Disconnect(c *fiber.Ctx) error {
	svc, ok := serviceParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown service",
		})
	}

	if err := ctrl.Service.Disconnect(c.Context(), svc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Disconnected successfully",
	})
}
