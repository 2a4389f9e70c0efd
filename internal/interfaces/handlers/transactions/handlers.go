package transactions

import (
	txsvc "edutoken-backend/internal/application/transactions"
	"edutoken-backend/internal/interfaces/handlers/params"
	"edutoken-backend/internal/middleware"
	"edutoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *txsvc.Service
}

// ISAEvents GET /api/v1/isas/:id/events
func (h *Handlers) ISAEvents(c *fiber.Ctx) error {
	id, err := params.ISAID(c)
	if err != nil {
		return params.Fail(c, err)
	}
	events, err := h.Service.ViewISAEvents(c.Context(), id, params.Limit(c))
	if err != nil {
		return params.Fail(c, err)
	}
	return response.Success(c, "Events fetched successfully", events, fiber.Map{"count": len(events)})
}

// MyEvents GET /api/v1/events/mine
func (h *Handlers) MyEvents(c *fiber.Ctx) error {
	principal := middleware.CallerPrincipal(c)
	if principal == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	events, err := h.Service.ViewPrincipalEvents(c.Context(), principal, params.Limit(c))
	if err != nil {
		return params.Fail(c, err)
	}
	return response.Success(c, "Events fetched successfully", events, fiber.Map{"count": len(events)})
}
