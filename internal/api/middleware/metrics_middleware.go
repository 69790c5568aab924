package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type HTTPRecorder interface {
	RecordHTTPRequest(method, endpoint string, status int, duration time.Duration)
}

// PrometheusMiddleware records count and latency of every request by route.
func PrometheusMiddleware(rec HTTPRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		endpoint := c.Route().Path
		if endpoint == "" || endpoint == "/" && c.Path() != "/" {
			endpoint = "unmatched"
		}

		rec.RecordHTTPRequest(c.Method(), endpoint, status, time.Since(start))
		return err
	}
}
