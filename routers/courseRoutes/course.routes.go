package courseRoutes

import (
	controllers "brainix/controllers/course"
	learningController "brainix/controllers/learning"
	"brainix/middleware"
	"brainix/validators"
	courseValidator "brainix/validators/course"
	learningValidator "brainix/validators/learning"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public catalog and the learner routes
func SetupCourseRoutes(app *fiber.App) {
	app.Get("/categories", controllers.GetCategories)

	courseGroup := app.Group("/courses")
	courseGroup.Get("/", courseValidator.CourseList(), controllers.GetCourses)
	courseGroup.Get("/:slug", middleware.OptionalAuth, courseValidator.CourseDetail(), controllers.GetCourseDetail)

	// Reviews
	courseGroup.Get("/:id/reviews", validators.ParamID("id"), validators.PageQuery("validatedPagination"), learningController.GetCourseReviews)
	courseGroup.Post("/:id/reviews", middleware.RequireAuth, validators.ParamID("id"), learningValidator.Review(), learningController.SubmitReview)
	courseGroup.Delete("/:id/reviews", middleware.RequireAuth, validators.ParamID("id"), learningController.DeleteReview)

	// Enrollments and the player
	app.Get("/enrollments", middleware.RequireAuth, validators.PageQuery("validatedPagination"), learningController.GetEnrollments)
	app.Get("/enrollments/:course_id", middleware.RequireAuth, validators.ParamID("course_id"), learningController.GetEnrollmentStatus)
	app.Get("/learn/:course_id", middleware.RequireAuth, validators.ParamID("course_id"), learningController.GetLearnCourse)

	// Progress tracking
	app.Post("/progress", middleware.RequireAuth, learningValidator.RecordProgress(), learningController.RecordProgress)
	app.Get("/progress/:course_id", middleware.RequireAuth, validators.ParamID("course_id"), learningController.GetCourseProgress)

	// Certificates
	app.Get("/certificates", middleware.RequireAuth, learningController.GetCertificates)
	app.Get("/certificates/verify/:number", learningValidator.CertificateNumber(), learningController.VerifyCertificate)
}
