package userProfileRoutes

import (
	userProfileController "brainix/controllers/userControllers"
	"brainix/middleware"
	"brainix/validators"
	userPorfileValidator "brainix/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	meGroup := app.Group("/me", middleware.RequireAuth)

	meGroup.Get("/", userProfileController.GetProfile)
	meGroup.Put("/profile", userPorfileValidator.UpdateProfile(), userProfileController.UpdateProfile)
	meGroup.Post("/become-instructor", userPorfileValidator.BecomeInstructor(), userProfileController.BecomeInstructor)

	app.Get("/instructors/:id", validators.ParamID("id"), userProfileController.GetInstructor)
}
