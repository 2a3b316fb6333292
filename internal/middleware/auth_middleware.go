package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"go-pos-sync/internal/service"
)

// RequireTerminal validates the bearer token and puts the terminal identity
// in the request context.
func RequireTerminal(terminals service.TerminalService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		terminal, err := terminals.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals("terminal_id", terminal.ID.String())
		c.Locals("terminal_name", terminal.Name)

		return c.Next()
	}
}
