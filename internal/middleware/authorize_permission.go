package middleware

import (
	"crypto/subtle"

	"edutoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireAdminKey guards operator routes with a shared key passed as ?key=.
// An empty configured key disables the route entirely.
func RequireAdminKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Query("key")
		if key == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
