package payments

import (
	paysvc "edutoken-backend/internal/application/payments"
	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/interfaces/handlers/params"
	"edutoken-backend/internal/metrics"
	"edutoken-backend/internal/middleware"
	"edutoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *paysvc.Service
	Metrics *metrics.Metrics
}

type reportRequest struct {
	ReportedIncome int64 `json:"reported_income"`
	Period         int64 `json:"period"`
}

// ReportIncome POST /api/v1/isas/:id/income-reports: only the ISA's student may report.
func (h *Handlers) ReportIncome(c *fiber.Ctx) error {
	id, err := params.ISAID(c)
	if err != nil {
		return params.Fail(c, err)
	}
	var body reportRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	made, err := h.Service.ReportIncomeAndPay(c.Context(), middleware.CallerPrincipal(c), id, body.ReportedIncome, body.Period)
	h.Metrics.ObserveLedger("report_income", err)
	if err != nil {
		return params.Fail(c, err)
	}
	h.Metrics.AddPayment(made)

	return response.SuccessCreated(c, "Income reported", fiber.Map{
		"isa_id":       id,
		"period":       body.Period,
		"payment_made": made,
	}, nil)
}

// GetReport GET /api/v1/isas/:id/income-reports/:period
func (h *Handlers) GetReport(c *fiber.Ctx) error {
	id, err := params.ISAID(c)
	if err != nil {
		return params.Fail(c, err)
	}
	period, err := params.Int64(c.Params("period"))
	if err != nil {
		return response.Error(c, "Income report not found", fiber.StatusNotFound, nil)
	}
	report, err := h.Service.GetReport(c.Context(), id, period)
	if err != nil {
		return params.Fail(c, err)
	}
	if report == nil {
		return response.Error(c, "Income report not found", fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Income report fetched successfully", report, nil)
}

// ListReports GET /api/v1/isas/:id/income-reports
func (h *Handlers) ListReports(c *fiber.Ctx) error {
	id, err := params.ISAID(c)
	if err != nil {
		return params.Fail(c, err)
	}
	reports, err := h.Service.ListReports(c.Context(), id)
	if err != nil {
		return params.Fail(c, err)
	}
	return response.Success(c, "Income reports fetched successfully", reports, fiber.Map{"count": len(reports)})
}

// Preview GET /api/v1/isas/:id/payment-preview?income=N: the uncapped payment for income.
func (h *Handlers) Preview(c *fiber.Ctx) error {
	id, err := params.ISAID(c)
	if err != nil {
		return params.Fail(c, err)
	}
	income, err := params.Int64(c.Query("income"))
	if err != nil {
		return params.Fail(c, domain.ErrInvalidAmount)
	}
	amount, err := h.Service.Preview(c.Context(), id, income)
	if err != nil {
		return params.Fail(c, err)
	}
	return response.Success(c, "Payment preview", fiber.Map{
		"isa_id":          id,
		"reported_income": income,
		"payment":         amount,
	}, nil)
}
