package isa

import (
	regsvc "edutoken-backend/internal/application/registry"
	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/interfaces/handlers/params"
	"edutoken-backend/internal/metrics"
	"edutoken-backend/internal/middleware"
	"edutoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *regsvc.Service
	Metrics *metrics.Metrics
}

// isaView adds the derived fields clients otherwise compute themselves.
type isaView struct {
	*domain.ISA
	UnitsAvailable int64 `json:"units_available"`
	RemainingCap   int64 `json:"remaining_cap"`
}

func view(i *domain.ISA) isaView {
	return isaView{ISA: i, UnitsAvailable: i.UnitsAvailable(), RemainingCap: i.RemainingCap()}
}

// CreateISA POST /api/v1/isas: the caller becomes the ISA's student.
func (h *Handlers) CreateISA(c *fiber.Ctx) error {
	var body regsvc.CreateInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	id, err := h.Service.Create(c.Context(), middleware.CallerPrincipal(c), body)
	h.Metrics.ObserveLedger("create_isa", err)
	if err != nil {
		return params.Fail(c, err)
	}
	return response.SuccessCreated(c, "ISA created", fiber.Map{"id": id}, nil)
}

// GetISA GET /api/v1/isas/:id
func (h *Handlers) GetISA(c *fiber.Ctx) error {
	id, err := params.ISAID(c)
	if err != nil {
		return params.Fail(c, err)
	}
	isa, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return params.Fail(c, err)
	}
	if isa == nil {
		return params.Fail(c, domain.ErrNotFound)
	}
	return response.Success(c, "ISA fetched successfully", view(isa), nil)
}

// ListISAs GET /api/v1/isas?student=
func (h *Handlers) ListISAs(c *fiber.Ctx) error {
	isas, err := h.Service.List(c.Context(), c.Query("student"))
	if err != nil {
		return params.Fail(c, err)
	}
	out := make([]isaView, 0, len(isas))
	for i := range isas {
		out = append(out, view(&isas[i]))
	}
	return response.Success(c, "ISAs fetched successfully", out, fiber.Map{"count": len(out)})
}

// NextID GET /api/v1/isas/next-id
func (h *Handlers) NextID(c *fiber.Ctx) error {
	id, err := h.Service.NextID(c.Context())
	if err != nil {
		return params.Fail(c, err)
	}
	return response.Success(c, "Next ISA id", fiber.Map{"next_isa_id": id}, nil)
}
