package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docetl/internal/http/middleware"
)

// errorPayload is the JSON error body. Error carries the human-readable message
// so intake clients can keep reading {"error": "..."}.
type errorPayload struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
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
// - code: machine-readable short error code (e.g., "FILE_NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromCtx(c),
	})
}

// ErrorCodeHeader carries the machine-readable code on intake errors, whose
// body is limited to {"error": message}.
const ErrorCodeHeader = "X-Error-Code"

// intakeError is the body of a failed POST /process.
type intakeError struct {
	Error string `json:"error"`
}

// writeIntakeError writes {"error": message} and reports code in ErrorCodeHeader.
func writeIntakeError(c *fiber.Ctx, status int, code, message string) error {
	c.Set(ErrorCodeHeader, code)
	return c.Status(status).JSON(intakeError{Error: message})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
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
