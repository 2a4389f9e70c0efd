package treasury

import (
	treasurysvc "edutoken-backend/internal/application/treasury"
	"edutoken-backend/internal/interfaces/handlers/params"
	"edutoken-backend/internal/metrics"
	"edutoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *treasurysvc.Service
	Metrics *metrics.Metrics
}

type creditRequest struct {
	Amount int64 `json:"amount"`
}

// Balance GET /api/v1/treasury
func (h *Handlers) Balance(c *fiber.Ctx) error {
	bal, err := h.Service.Balance(c.Context())
	if err != nil {
		return params.Fail(c, err)
	}
	return response.Success(c, "Treasury balance", fiber.Map{"treasury_balance": bal}, nil)
}

// Credit POST /api/v1/treasury/credit: operator deposit, mounted behind RequireAdminKey.
func (h *Handlers) Credit(c *fiber.Ctx) error {
	var body creditRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	bal, err := h.Service.Credit(c.Context(), body.Amount)
	h.Metrics.ObserveLedger("treasury_credit", err)
	if err != nil {
		return params.Fail(c, err)
	}
	log.Info().Str("ip", c.IP()).Int64("amount", body.Amount).Msg("Operator treasury credit")
	return response.Success(c, "Treasury credited", fiber.Map{"treasury_balance": bal}, nil)
}
