package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// RequestLogger logs each portal request and feeds request metrics. It must
// run outside the error middleware to record the status actually sent. Query
// strings are never logged; the delegated callback carries credentials there.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		// Metric labels outlive the request buffer fiber reuses.
		method := utils.CopyString(c.Method())
		status := c.Response().StatusCode()
		metrics.RecordRequest(c.Route().Path, method, status, elapsed)

		logger.Debug("request",
			zap.String("method", method),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
		)
		return err
	}
}
