package middleware

import (
	"edutoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a principal is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CallerPrincipal(c) == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", c.Locals(userLocal))
		return c.Next()
	}
}

// GetUser returns the session value from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CallerPrincipal is the identity of the logged-in caller, or "" without a session.
func CallerPrincipal(c *fiber.Ctx) string {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return ""
	}
	p, _ := m["principal"].(string)
	return p
}
