package params

import (
	"strconv"

	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/middleware"
	"edutoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ISAID parses the :id route param. A malformed id is reported as NotFound since
// no ISA can carry it.
func ISAID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

// Int64 parses a decimal string as an amount. Anything unparsable is InvalidAmount.
func Int64(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidAmount
	}
	return n, nil
}

// Limit reads ?limit=, returning 0 (service default) when absent or malformed.
func Limit(c *fiber.Ctx) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}

// Fail writes err in the standard envelope. Ledger errors keep their status and code;
// anything else is logged and becomes a 500.
func Fail(c *fiber.Ctx, err error) error {
	if le, ok := domain.AsLedgerError(err); ok {
		return response.LedgerError(c, le)
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path()).Msg("Request failed")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
