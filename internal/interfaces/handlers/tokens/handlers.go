package tokens

import (
	tokensvc "edutoken-backend/internal/application/tokens"
	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/interfaces/handlers/params"
	"edutoken-backend/internal/metrics"
	"edutoken-backend/internal/middleware"
	"edutoken-backend/internal/pkg/response"
	"edutoken-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *tokensvc.Service
	Metrics *metrics.Metrics
}

type investRequest struct {
	Units int64 `json:"units"`
}

type transferRequest struct {
	To    string `json:"to" validate:"required,principal"`
	Units int64  `json:"units"`
}

// Invest POST /api/v1/isas/:id/invest: the caller buys units.
func (h *Handlers) Invest(c *fiber.Ctx) error {
	id, err := params.ISAID(c)
	if err != nil {
		return params.Fail(c, err)
	}
	var body investRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	capital, err := h.Service.Invest(c.Context(), id, middleware.CallerPrincipal(c), body.Units)
	h.Metrics.ObserveLedger("invest", err)
	if err != nil {
		return params.Fail(c, err)
	}
	h.Metrics.AddCapital(capital)

	return response.Success(c, "Investment recorded", fiber.Map{
		"isa_id":            id,
		"units":             body.Units,
		"capital_committed": capital,
	}, nil)
}

// Transfer POST /api/v1/isas/:id/transfer: the caller sends units to another principal.
func (h *Handlers) Transfer(c *fiber.Ctx) error {
	id, err := params.ISAID(c)
	if err != nil {
		return params.Fail(c, err)
	}
	var body transferRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	// A bad recipient is the same rejection the ledger gives, so clients see one shape.
	if err := validation.Struct(body); err != nil {
		return params.Fail(c, domain.ErrInvalidAmount)
	}

	err = h.Service.Transfer(c.Context(), id, middleware.CallerPrincipal(c), body.To, body.Units)
	h.Metrics.ObserveLedger("transfer", err)
	if err != nil {
		return params.Fail(c, err)
	}
	return response.Success(c, "Tokens transferred", fiber.Map{"success": true}, nil)
}

// Balance GET /api/v1/isas/:id/tokens/:investor
func (h *Handlers) Balance(c *fiber.Ctx) error {
	id, err := params.ISAID(c)
	if err != nil {
		return params.Fail(c, err)
	}
	investor := c.Params("investor")
	bal, err := h.Service.Balance(c.Context(), id, investor)
	if err != nil {
		return params.Fail(c, err)
	}
	return response.Success(c, "Balance fetched successfully", fiber.Map{
		"isa_id":   id,
		"investor": investor,
		"balance":  bal,
	}, nil)
}

// Holders GET /api/v1/isas/:id/holders
func (h *Handlers) Holders(c *fiber.Ctx) error {
	id, err := params.ISAID(c)
	if err != nil {
		return params.Fail(c, err)
	}
	holders, err := h.Service.Holders(c.Context(), id)
	if err != nil {
		return params.Fail(c, err)
	}
	out := make([]fiber.Map, 0, len(holders))
	for i := range holders {
		out = append(out, fiber.Map{
			"investor": holders[i].Investor,
			"balance":  holders[i].Balance,
			"share_bp": holders[i].ShareBP(),
		})
	}
	return response.Success(c, "Holders fetched successfully", out, fiber.Map{"count": len(out)})
}

// Portfolio GET /api/v1/portfolio: the caller's holdings across ISAs.
func (h *Handlers) Portfolio(c *fiber.Ctx) error {
	holdings, err := h.Service.Portfolio(c.Context(), middleware.CallerPrincipal(c))
	if err != nil {
		return params.Fail(c, err)
	}
	return response.Success(c, "Portfolio fetched successfully", holdings, fiber.Map{"count": len(holdings)})
}
