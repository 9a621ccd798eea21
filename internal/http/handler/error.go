package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"suratapi/internal/apperror"
	"suratapi/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// respond maps err onto the response envelope: request errors by their code,
// service errors by their apperror kind. Untyped errors become 500 and are
// handed to the access log instead of the client.
func respond(c *fiber.Ctx, err error) error {
	var re *requestError
	if errors.As(err, &re) {
		return writeError(c, fiber.StatusBadRequest, re.code, re.message)
	}
	if errors.Is(err, fiber.ErrUnauthorized) {
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
	}

	var ae *apperror.Error
	if !errors.As(err, &ae) {
		c.Locals(middleware.ErrorLocalKey, err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	msg := ae.Message
	if ae.Field != "" {
		msg = ae.Field + ": " + msg
	}
	switch ae.Kind {
	case apperror.KindValidation:
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", msg)
	case apperror.KindNotFound:
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", msg)
	case apperror.KindInvalidTransition:
		return writeError(c, fiber.StatusConflict, "INVALID_TRANSITION", msg)
	case apperror.KindConflict:
		return writeError(c, fiber.StatusConflict, "CONCURRENCY_CONFLICT", msg)
	case apperror.KindForbidden:
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", msg)
	default:
		c.Locals(middleware.ErrorLocalKey, err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else {
			c.Locals(middleware.ErrorLocalKey, err)
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHENTICATED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
