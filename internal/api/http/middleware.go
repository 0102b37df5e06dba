package http

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/observability"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
// The request logger wraps error handling so it sees the rendered status.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware turns a returned error or a panic into the
// {"error":{...}} body and counts it under the matched route.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}

			clientErr := toClientError(err)
			metrics.RecordError(c.Route().Path, utils.CopyString(c.Method()), clientErr.Code)
			if clientErr.HTTPStatus >= fiber.StatusInternalServerError {
				logger.Error("request failed", zap.String("path", c.Path()), zap.Error(clientErr))
			} else {
				logger.Debug("request rejected", zap.String("path", c.Path()), zap.String("code", clientErr.Code))
			}
			err = writeError(c, clientErr)
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, clientErr *apperrors.ClientError) error {
	body := fiber.Map{
		"code":    clientErr.Code,
		"message": apperrors.UserMessage(clientErr),
	}
	if len(clientErr.Details) > 0 {
		body["details"] = clientErr.Details
	}
	return c.Status(clientErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

func toClientError(err error) *apperrors.ClientError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(fiberErr.Code), " ", "_"))
		if code == "" {
			code = apperrors.CodeInternal
		}
		return apperrors.NewClientError(code, fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToClientError(err)
}
