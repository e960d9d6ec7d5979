package observability

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/hostel-issues/pkg/util/errorutil"
)

// ErrorClassifier maps a handler error onto the DomainError that will be rendered.
type ErrorClassifier func(error) *apperrors.DomainError

// RequestLogger logs one line per request and feeds the request counters.
// When the chain returns an error the logged status is the one the error
// will be rendered with, not the status currently on the response.
func RequestLogger(logger *zap.Logger, metrics *Metrics, classify ErrorClassifier) fiber.Handler {
	if classify == nil {
		classify = apperrors.ToDomainError
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Duration("latency", latency),
		}
		if err != nil {
			domainErr := classify(err)
			status = domainErr.HTTPStatus
			fields = append(fields, zap.String("error_code", domainErr.Code))
		}
		fields = append(fields, zap.Int("status", status))
		if requestID := c.Get(fiber.HeaderXRequestID); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		metrics.RecordRequest(c.Route().Path, c.Method(), status, latency)
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
		return err
	}
}
