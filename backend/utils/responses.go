package utils

import (
	"errors"
	"net/http"

	"esgframe/backend/services"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the envelope for successful responses
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is the envelope for errors
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Success builds a successful JSON response
func Success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	response := SuccessResponse{
		Success: true,
		Data:    data,
	}

	if len(meta) > 0 {
		response.Meta = meta[0]
	}

	return c.Status(status).JSON(response)
}

// Error builds a JSON error response
func Error(c *fiber.Ctx, status int, err error, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	}

	if len(details) > 0 {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// ServiceError maps a service-layer error to its HTTP status. Unrecognized
// errors fall through to 500.
func ServiceError(c *fiber.Ctx, err error, details ...interface{}) error {
	switch {
	// Checked first: a mutation that failed partway is a server-side
	// consistency problem even when the trigger would map to 4xx.
	case errors.Is(err, services.ErrPartialMutation):
		return Error(c, fiber.StatusInternalServerError, err, details...)
	case errors.Is(err, services.ErrNotFound):
		return Error(c, fiber.StatusNotFound, err, details...)
	case errors.Is(err, services.ErrInvalidOwnership),
		errors.Is(err, services.ErrCircularReference),
		errors.Is(err, services.ErrInactiveAncestor),
		errors.Is(err, services.ErrDepthExceeded),
		errors.Is(err, services.ErrEmptySelection),
		errors.Is(err, services.ErrInvalidQuestion):
		return Error(c, fiber.StatusBadRequest, err, details...)
	case errors.Is(err, services.ErrStaleVersion),
		errors.Is(err, services.ErrDuplicateResponse):
		return Error(c, fiber.StatusConflict, err, details...)
	case errors.Is(err, services.ErrSurveyInactive),
		errors.Is(err, services.ErrAnonymousNotAllowed):
		return Error(c, fiber.StatusForbidden, err, details...)
	default:
		return Error(c, fiber.StatusInternalServerError, err, details...)
	}
}

// ValidationError builds a JSON response for validation failures
func ValidationError(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Success: false,
		Error:   "Validation Error",
		Details: errors,
	})
}

// Created sends a 201 Created response
func Created(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusCreated, data)
}

// NoContent sends a 204 No Content response
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// NotFound sends a 404 Not Found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, fiber.NewError(fiber.StatusNotFound, message))
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, message))
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, fiber.NewError(fiber.StatusUnauthorized, message))
}

// Forbidden sends a 403 Forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, fiber.NewError(fiber.StatusForbidden, message))
}

// InternalServerError sends a 500 Internal Server Error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, fiber.NewError(fiber.StatusInternalServerError, message))
}
