package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ErrorLocalKey holds an error a handler rendered itself, so the access log can carry the cause.
const ErrorLocalKey = "handler_error"

// Logger writes one access log event per request with the fields
// request_id, method, path, status and latency (milliseconds, float).
//
// Errors returned by the chain are rendered through the app's ErrorHandler first,
// so the logged status is the one the client receives.
func Logger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		if herr, ok := c.Locals(ErrorLocalKey).(error); ok {
			ev = ev.Err(herr)
		}
		ev.Str("request_id", RequestIDFrom(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", float64(time.Since(start).Microseconds())/1000).
			Msg("http_request")

		return nil
	}
}
