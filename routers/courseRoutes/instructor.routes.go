package courseRoutes

import (
	controllers "brainix/controllers/course"
	"brainix/middleware"
	"brainix/models"
	"brainix/validators"
	courseValidator "brainix/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupInstructorRoutes sets up course authoring for instructors and admins
func SetupInstructorRoutes(app *fiber.App) {
	// guarded per route, a group Use on "/instructor" also matches the public "/instructors/:id"
	instructorGroup := app.Group("/instructor")
	roles := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)
	guard := func(handlers ...fiber.Handler) []fiber.Handler {
		return append([]fiber.Handler{middleware.RequireAuth, roles}, handlers...)
	}
	id := validators.ParamID("id")

	instructorGroup.Get("/dashboard", guard(controllers.GetInstructorDashboard)...)

	// Courses
	instructorGroup.Get("/courses", guard(validators.PageQuery("validatedPagination"), controllers.GetInstructorCourses)...)
	instructorGroup.Post("/courses", guard(courseValidator.CreateCourse(), controllers.CreateCourse)...)
	instructorGroup.Get("/courses/:id", guard(id, controllers.GetInstructorCourse)...)
	instructorGroup.Put("/courses/:id", guard(id, courseValidator.UpdateCourse(), controllers.UpdateCourse)...)
	instructorGroup.Delete("/courses/:id", guard(id, controllers.DeleteCourse)...)
	instructorGroup.Post("/courses/:id/publish", guard(id, controllers.PublishCourse)...)
	instructorGroup.Post("/courses/:id/unpublish", guard(id, controllers.UnpublishCourse)...)
	instructorGroup.Post("/courses/:id/archive", guard(id, controllers.ArchiveCourse)...)
	instructorGroup.Post("/courses/:id/thumbnail", guard(id, courseValidator.Thumbnail(), controllers.UploadThumbnail)...)
	instructorGroup.Get("/courses/:id/students", guard(id, validators.PageQuery("validatedPagination"), controllers.GetCourseStudents)...)

	// Modules
	instructorGroup.Post("/courses/:id/modules", guard(id, courseValidator.CreateModule(), controllers.CreateModule)...)
	instructorGroup.Put("/courses/:id/modules/reorder", guard(id, courseValidator.Reorder(), controllers.ReorderModules)...)
	instructorGroup.Put("/modules/:id", guard(id, courseValidator.UpdateModule(), controllers.UpdateModule)...)
	instructorGroup.Delete("/modules/:id", guard(id, controllers.DeleteModule)...)

	// Lessons
	instructorGroup.Post("/modules/:id/lessons", guard(id, courseValidator.CreateLesson(), controllers.CreateLesson)...)
	instructorGroup.Put("/modules/:id/lessons/reorder", guard(id, courseValidator.Reorder(), controllers.ReorderLessons)...)
	instructorGroup.Put("/lessons/:id", guard(id, courseValidator.UpdateLesson(), controllers.UpdateLesson)...)
	instructorGroup.Delete("/lessons/:id", guard(id, controllers.DeleteLesson)...)
}
