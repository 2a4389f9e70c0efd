package middleware

import (
	"time"

	"edutoken-backend/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics observes every request under its route pattern, so /api/v1/isas/7 and
// /api/v1/isas/8 share one series.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}
		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
