package learningValidator

import (
	"brainix/middleware"
	"brainix/validators"

	"github.com/gofiber/fiber/v2"
)

type ProgressRequest struct {
	LessonID      uint  `json:"lesson_id" validate:"required,gt=0"`
	IsCompleted   *bool `json:"is_completed"`
	WatchPosition *int  `json:"watch_position" validate:"omitempty,gte=0"`
}

func RecordProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProgressRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		errors := validators.Struct(reqData)
		if errors == nil && reqData.IsCompleted == nil && reqData.WatchPosition == nil {
			errors = map[string]string{"is_completed": "Either is_completed or watch_position is required!"}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=5000"`
}

func Review() fiber.Handler {
	return validators.Body[ReviewRequest]("validatedReview")
}

// CertificateNumber checks the number route parameter
func CertificateNumber() fiber.Handler {
	return func(c *fiber.Ctx) error {
		number := c.Params("number")
		if len(number) < 8 || len(number) > 64 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid certificate number!", nil)
		}
		c.Locals("certificateNumber", number)
		return c.Next()
	}
}
