package schema

import (
	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/gateways"

	"github.com/gofiber/fiber/v2"
)

type SchemaController struct {
	Service SchemaService
}

func NewSchemaController(service SchemaService) *SchemaController {
	return &SchemaController{
		Service: service,
	}
}

// ListCollections godoc
func (ctrl *SchemaController) ListCollections(c *fiber.Ctx) error {
	svc := common_models.Service(c.Params("service"))
	collections, err := ctrl.Service.ListCollections(c.Context(), svc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": collections,
	})
}

// ListFields godoc
func (ctrl *SchemaController) ListFields(c *fiber.Ctx) error {
	svc := common_models.Service(c.Params("service"))
	fields, err := ctrl.Service.ListFields(c.Context(), svc, c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": fields,
	})
}

type createFieldRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	AttioType   string `json:"attio_type,omitempty"`
}

// CreateAirtableField godoc
func (ctrl *SchemaController) CreateAirtableField(c *fiber.Ctx) error {
	var req createFieldRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Field name is required",
		})
	}

	fieldType := req.Type
	if fieldType == "" {
		fieldType = ctrl.Service.SuggestAirtableFieldType(req.AttioType)
	}

	field, err := ctrl.Service.CreateAirtableField(c.Context(), c.Params("id"), gateways.AirtableField{
		Name:        req.Name,
		Type:        fieldType,
		Description: req.Description,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Field created successfully",
		"data":    field,
	})
}
