package middleware

import (
	"context"
	"encoding/json"
	"time"

	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// NewErrorHandler returns the global error handler. Ledger errors keep their code and
// status; 5xx errors are logged and pushed to the Redis error log read by /health/errors.
func NewErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if le, ok := domain.AsLedgerError(err); ok {
			return response.LedgerError(c, le)
		}

		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("method", c.Method()).Str("path", c.Path()).Msg("Unhandled error")
			recordError(rdb, c, err)
		}
		return response.Error(c, message, code, nil)
	}
}

// ErrorHandler is NewErrorHandler without the Redis error log.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return NewErrorHandler(nil)(c, err)
}

func recordError(rdb *redis.Client, c *fiber.Ctx, err error) {
	if rdb == nil {
		return
	}
	entry, _ := json.Marshal(map[string]interface{}{
		"time":     time.Now().UTC().Format(time.RFC3339),
		"path":     c.OriginalURL(),
		"method":   c.Method(),
		"message":  err.Error(),
		"trace_id": GetTraceID(c),
	})
	ctx := context.Background()
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, KeyErrorLog, entry)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not record error in Redis")
	}
}
