package serverutils

import (
	"errors"
	"time"

	"trading-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

// NewErrorHandler is the app-wide fallback for errors a controller returns
// instead of writing its own response.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Unhandled error", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err,
			})
		}

		return ctx.Status(code).JSON(fiber.Map{"error": message})
	}
}

// RequestLogger logs one line per request with status and latency. Mount it
// after the tracing middleware so the trace id is available.
func RequestLogger(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		var fiberErr *fiber.Error
		if err != nil {
			status = fiber.StatusInternalServerError
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		details := map[string]interface{}{
			"method":     ctx.Method(),
			"path":       ctx.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		}
		if sc := trace.SpanContextFromContext(ctx.UserContext()); sc.HasTraceID() {
			details["trace_id"] = sc.TraceID().String()
		}
		log.Info("HTTP", "Request handled", details)
		return err
	}
}
