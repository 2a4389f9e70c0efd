package isa

import (
	"testing"

	regsvc "edutoken-backend/internal/application/registry"
	"edutoken-backend/internal/metrics"
	"edutoken-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const student = "ST1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2ZQ8YPD5"

func setupISAApp(t *testing.T) *fiber.App {
	db := testutil.OpenDB(t)
	h := &Handlers{Service: &regsvc.Service{DB: db, Limits: regsvc.DefaultLimits()}, Metrics: metrics.New()}
	app := fiber.New()
	app.Use(testutil.FakeSession())
	app.Get("/isas", h.ListISAs)
	app.Post("/isas", h.CreateISA)
	app.Get("/isas/next-id", h.NextID)
	app.Get("/isas/:id", h.GetISA)
	return app
}

func validBody() map[string]int64 {
	return map[string]int64{
		"funding_amount":  5_000_000,
		"income_share_bp": 800,
		"term_months":     120,
		"min_income":      3_000_000,
		"payment_cap":     10_000_000,
	}
}

func TestCreateISA_Success(t *testing.T) {
	app := setupISAApp(t)

	status, out := testutil.Do(t, app, "GET", "/isas/next-id", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1.0, testutil.Data(t, out)["next_isa_id"])

	status, out = testutil.Do(t, app, "POST", "/isas", student, validBody())
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, 1.0, testutil.Data(t, out)["id"])

	status, out = testutil.Do(t, app, "GET", "/isas/1", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	data := testutil.Data(t, out)
	assert.Equal(t, student, data["student"])
	assert.Equal(t, false, data["is_active"])
	assert.Equal(t, 800.0, data["income_share_percentage"])
	assert.Equal(t, 10000.0, data["units_available"])
	assert.Equal(t, 10_000_000.0, data["remaining_cap"])

	_, out = testutil.Do(t, app, "GET", "/isas/next-id", "", nil)
	assert.Equal(t, 2.0, testutil.Data(t, out)["next_isa_id"])
}

func TestCreateISA_FundingBelowMinimum(t *testing.T) {
	app := setupISAApp(t)
	body := validBody()
	body["funding_amount"] = 500_000

	status, out := testutil.Do(t, app, "POST", "/isas", student, body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "u101", testutil.ErrorCode(out))
}

func TestCreateISA_ShareTooHigh(t *testing.T) {
	app := setupISAApp(t)
	body := validBody()
	body["income_share_bp"] = 2500

	status, out := testutil.Do(t, app, "POST", "/isas", student, body)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "u101", testutil.ErrorCode(out))
}

func TestCreateISA_NoCaller(t *testing.T) {
	app := setupISAApp(t)
	status, out := testutil.Do(t, app, "POST", "/isas", "", validBody())
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "u100", testutil.ErrorCode(out))
}

func TestGetISA_NotFound(t *testing.T) {
	app := setupISAApp(t)

	status, out := testutil.Do(t, app, "GET", "/isas/9", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "u102", testutil.ErrorCode(out))

	status, _ = testutil.Do(t, app, "GET", "/isas/abc", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestListISAs(t *testing.T) {
	app := setupISAApp(t)
	testutil.Do(t, app, "POST", "/isas", student, validBody())
	testutil.Do(t, app, "POST", "/isas", "other.student", validBody())

	status, out := testutil.Do(t, app, "GET", "/isas?student=other.student", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	list, ok := out["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, 2.0, list[0].(map[string]interface{})["id"])
}
