package auth

import (
	"go-syncbridge/internal/api"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
}

func NewAuthApi(controller *AuthController) api.Route {
	return &AuthApi{controller: controller}
}

// Setup registers auth routes
func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/auth/token", h.controller.IssueToken)
}
