package learningController

import (
	"brainix/middleware"
	"brainix/services"
	"brainix/services/learning"
	learningValidator "brainix/validators/learning"

	"github.com/gofiber/fiber/v2"
)

// RecordProgress stores the player's report for one lesson
func RecordProgress(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedProgress").(*learningValidator.ProgressRequest)

	result, err := services.App.Learning.RecordProgress(c.UserContext(), user, learning.ProgressUpdate{
		LessonID:      reqData.LessonID,
		IsCompleted:   reqData.IsCompleted,
		WatchPosition: reqData.WatchPosition,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to record progress!")
	}

	message := "Progress recorded successfully!"
	if result.CourseCompleted {
		message = "Congratulations, you completed the course!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

// GetCourseProgress returns the enrollment summary and lesson progress rows of a course
func GetCourseProgress(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollment, rows, err := services.App.Learning.CourseProgress(userId, c.Locals("course_id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch progress!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment": enrollment,
		"lessons":    rows,
	})
}
