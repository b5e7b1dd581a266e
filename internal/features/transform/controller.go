package transform

import (
	"go-syncbridge/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type TransformController struct {
	Registry *Registry
}

func NewTransformController(registry *Registry) *TransformController {
	return &TransformController{
		Registry: registry,
	}
}

type registerRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// RegisterTransform godoc
func (ctrl *TransformController) RegisterTransform(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Registry.Register(req.Name, req.Source); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Transform registered successfully",
		"name":    utils.Slugify(req.Name),
	})
}

// ListTransforms godoc
func (ctrl *TransformController) ListTransforms(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": ctrl.Registry.Names(),
	})
}
