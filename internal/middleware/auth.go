package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Websitedemo13/s17-trading-go/internal/service"
)

// Auth rejects requests without a valid bearer token and stashes the
// caller's identity in the request locals for handlers downstream.
func Auth(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		userID, email, err := auth.ValidateAccessToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals("user_id", userID)
		c.Locals("email", email)
		return c.Next()
	}
}
