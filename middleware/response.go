package middleware

import (
	"errors"
	"log"

	"brainix/apperrors"

	"github.com/gofiber/fiber/v2"
)

// JsonResponse writes the standard envelope. Failures also carry an "error" key.
func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	body := fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	}
	if !status {
		body["error"] = message
	}
	return c.Status(statusCode).JSON(body)
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse maps a service error onto its status; unknown errors are logged and become 500
func ErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return JsonResponse(c, appErr.Status, false, appErr.Message, nil)
	}
	log.Printf("[API] %s %s: %v", c.Method(), c.Path(), err)
	return JsonResponse(c, fiber.StatusInternalServerError, false, fallback, nil)
}

// ErrorHandler renders errors escaping handlers (including recovered panics) in the envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error!"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	} else {
		log.Printf("[API] unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return JsonResponse(c, code, false, message, nil)
}
