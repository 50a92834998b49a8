package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tenderdocs/internal/apperr"
	"tenderdocs/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - kind: machine-readable error kind (e.g., "VALIDATION_ERROR", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
// - details: optional structured hints such as the offending field
func writeError(c *fiber.Ctx, status int, kind, message string, details map[string]any) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Kind:    kind,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

func validationError(c *fiber.Ctx, field, message string) error {
	var details map[string]any
	if field != "" {
		details = map[string]any{"field": field}
	}
	return writeError(c, fiber.StatusBadRequest, string(apperr.KindValidation), message, details)
}

// statusFor maps an error kind onto its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindAlreadyExists, apperr.KindInvalidTransition:
		return fiber.StatusConflict
	case apperr.KindStorage:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// writeAppError renders a service error. Only the kind, the safe message and the
// offending field reach the client; the cause is handed to the access log.
func writeAppError(c *fiber.Ctx, err error) error {
	c.Locals(middleware.ErrorLocalKey, err)

	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		return writeError(c, fiber.StatusInternalServerError, string(apperr.KindInternal), "internal server error", nil)
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	var details map[string]any
	if e.Field != "" {
		details = map[string]any{"field": e.Field}
	}
	return writeError(c, statusFor(e.Kind), string(e.Kind), msg, details)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if _, ok := apperr.As(err); ok {
			return writeAppError(c, err)
		}

		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, string(apperr.KindValidation), "bad request", nil)
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "missing or invalid bearer token", nil)
		case fiber.StatusNotFound:
			return writeError(c, status, string(apperr.KindNotFound), "resource not found", nil)
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed", nil)
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large", nil)
		default:
			if fe != nil && status < fiber.StatusInternalServerError {
				return writeError(c, status, "REQUEST_ERROR", fe.Message, nil)
			}
			c.Locals(middleware.ErrorLocalKey, err)
			return writeError(c, fiber.StatusInternalServerError, string(apperr.KindInternal), "internal server error", nil)
		}
	}
}
