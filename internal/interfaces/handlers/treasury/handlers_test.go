package treasury

import (
	"testing"

	treasurysvc "edutoken-backend/internal/application/treasury"
	"edutoken-backend/internal/middleware"
	"edutoken-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTreasuryApp(t *testing.T) *fiber.App {
	db := testutil.OpenDB(t)
	h := &Handlers{Service: &treasurysvc.Service{DB: db}}
	app := fiber.New()
	app.Get("/treasury", h.Balance)
	app.Post("/treasury/credit", middleware.RequireAdminKey("ops-key"), h.Credit)
	return app
}

func TestTreasury_BalanceStartsAtZero(t *testing.T) {
	app := setupTreasuryApp(t)
	status, out := testutil.Do(t, app, "GET", "/treasury", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0.0, testutil.Data(t, out)["treasury_balance"])
}

func TestTreasury_Credit(t *testing.T) {
	app := setupTreasuryApp(t)

	status, _ := testutil.Do(t, app, "POST", "/treasury/credit", "", map[string]int64{"amount": 100})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, out := testutil.Do(t, app, "POST", "/treasury/credit?key=ops-key", "", map[string]int64{"amount": 250})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 250.0, testutil.Data(t, out)["treasury_balance"])

	status, out = testutil.Do(t, app, "POST", "/treasury/credit?key=ops-key", "", map[string]int64{"amount": -5})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "u101", testutil.ErrorCode(out))

	_, out = testutil.Do(t, app, "GET", "/treasury", "", nil)
	assert.Equal(t, 250.0, testutil.Data(t, out)["treasury_balance"])
}
