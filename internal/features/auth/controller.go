package auth

import (
	"go-syncbridge/internal/config"
	"go-syncbridge/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	config *config.Config
}

func NewAuthController(cfg *config.Config) *AuthController {
	return &AuthController{config: cfg}
}

type tokenRequest struct {
	Operator string `json:"operator"`
	Secret   string `json:"secret"`
}

// IssueToken exchanges the shared operator secret for a bearer token.
func (ctrl *AuthController) IssueToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Secret != ctrl.config.JWTSecret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid secret",
		})
	}

	operator := req.Operator
	if operator == "" {
		operator = "operator"
	}

	token, err := utils.GenerateToken(operator)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}
