package mapping

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MappingController struct {
	Service MappingService
}

func NewMappingController(service MappingService) *MappingController {
	return &MappingController{
		Service: service,
	}
}

func setIDParam(c *fiber.Ctx) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	return id, err == nil
}

// AutoMap godoc
func (ctrl *MappingController) AutoMap(c *fiber.Ctx) error {
	var req AutoMapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	set, err := ctrl.Service.AutoMap(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": set,
	})
}

// CreateSet godoc
func (ctrl *MappingController) CreateSet(c *fiber.Ctx) error {
	var set MappingSet
	if err := c.BodyParser(&set); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.CreateSet(c.Context(), &set); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Mapping set created successfully",
		"data":    set,
	})
}

// ListSets godoc
func (ctrl *MappingController) ListSets(c *fiber.Ctx) error {
	sets, err := ctrl.Service.ListSets(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": sets,
	})
}

// GetSet godoc
func (ctrl *MappingController) GetSet(c *fiber.Ctx) error {
	id, ok := setIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid mapping set id",
		})
	}

	set, err := ctrl.Service.GetSet(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if set == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Mapping set not found",
		})
	}

	return c.JSON(fiber.Map{
		"data": set,
	})
}

// UpdateSet godoc
func (ctrl *MappingController) UpdateSet(c *fiber.Ctx) error {
	id, ok := setIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid mapping set id",
		})
	}

	var set MappingSet
	if err := c.BodyParser(&set); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	set.ID = id

	if err := ctrl.Service.UpdateSet(c.Context(), &set); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Mapping set updated successfully",
		"data":    set,
	})
}

// DeleteSet godoc
func (ctrl *MappingController) DeleteSet(c *fiber.Ctx) error {
	id, ok := setIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid mapping set id",
		})
	}

	if err := ctrl.Service.DeleteSet(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Mapping set deleted successfully",
	})
}

// AddMapping godoc
func (ctrl *MappingController) AddMapping(c *fiber.Ctx) error {
	id, ok := setIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid mapping set id",
		})
	}

	set, err := ctrl.Service.AddMapping(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": set,
	})
}

// RemoveMapping godoc
func (ctrl *MappingController) RemoveMapping(c *fiber.Ctx) error {
	id, ok := setIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid mapping set id",
		})
	}

	set, err := ctrl.Service.RemoveMapping(c.Context(), id, c.Params("mappingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": set,
	})
}

// UpdateMapping godoc
func (ctrl *MappingController) UpdateMapping(c *fiber.Ctx) error {
	id, ok := setIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid mapping set id",
		})
	}

	var updated FieldMapping
	if err := c.BodyParser(&updated); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	set, err := ctrl.Service.UpdateMapping(c.Context(), id, c.Params("mappingId"), updated)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": set,
	})
}
