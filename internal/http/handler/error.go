package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docregister/internal/http/middleware"
	"docregister/internal/model"
	"docregister/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// partialDetails is attached to TRANSMITTAL_INCOMPLETE errors so the caller
// knows what was delivered before resending.
type partialDetails struct {
	TransmittalID string              `json:"transmittal_id"`
	Succeeded     []model.DocumentKey `json:"succeeded"`
	Failed        *model.DocumentKey  `json:"failed,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details any) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceError translates a service error into the response envelope.
// Validation messages are safe to echo; anything unexpected is logged and
// reported as INTERNAL_ERROR.
func serviceError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var partial *service.PartialTransmittalFailure
	switch {
	case errors.As(err, &partial):
		details := partialDetails{TransmittalID: partial.TransmittalID, Succeeded: partial.Succeeded}
		if partial.Succeeded == nil {
			details.Succeeded = []model.DocumentKey{}
		}
		if partial.Failed != (model.DocumentKey{}) {
			failed := partial.Failed
			details.Failed = &failed
		}
		log.Warn("transmittal incomplete", zap.String("request_id", middleware.RequestIDFrom(c)), zap.Error(err))
		return writeErrorDetails(c, fiber.StatusConflict, "TRANSMITTAL_INCOMPLETE", "transmittal partially delivered; resend it to resume", details)
	case errors.Is(err, service.ErrInvalidInput):
		return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", err.Error())
	case errors.Is(err, service.ErrEmptyTransmittal):
		return writeError(c, fiber.StatusBadRequest, "EMPTY_TRANSMITTAL", "transmittal has no revisions")
	case errors.Is(err, service.ErrForeignRevision):
		return writeError(c, fiber.StatusForbidden, "FOREIGN_REVISION", err.Error())
	case errors.Is(err, service.ErrDuplicateNumber):
		return writeError(c, fiber.StatusConflict, "DUPLICATE_NUMBER", "document number already registered")
	case errors.Is(err, service.ErrDocumentNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrRevisionNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "revision not found")
	case errors.Is(err, service.ErrTransmittalNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "transmittal not found")
	case errors.Is(err, service.ErrStorageUnavailable):
		log.Warn("storage unavailable", zap.String("request_id", middleware.RequestIDFrom(c)), zap.Error(err))
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
	default:
		log.Error("request failed", zap.String("request_id", middleware.RequestIDFrom(c)), zap.Error(err))
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", err.Error())
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
