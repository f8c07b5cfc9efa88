package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DanielHoffmann/AuthGate/internal/pkg/usercontext"
)

// RequireAuth ensures an authenticated principal and returns JSON 401 otherwise.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}
