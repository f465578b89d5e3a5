package blogRoutes

import (
	blogController "brainix/controllers/blog"
	"brainix/middleware"
	"brainix/models"
	"brainix/validators"
	blogValidator "brainix/validators/blog"

	"github.com/gofiber/fiber/v2"
)

func SetupBlogRoutes(app *fiber.App) {
	blogGroup := app.Group("/blogs")
	authors := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)
	id := validators.ParamID("id")

	blogGroup.Get("/", blogValidator.BlogList(), blogController.GetBlogs)
	blogGroup.Get("/mine", middleware.RequireAuth, authors, blogController.GetMyBlogs)
	blogGroup.Get("/:slug", middleware.OptionalAuth, blogValidator.BlogSlug(), blogController.GetBlog)

	blogGroup.Post("/", middleware.RequireAuth, authors, blogValidator.CreateBlog(), blogController.CreateBlog)
	blogGroup.Put("/:id", middleware.RequireAuth, authors, id, blogValidator.UpdateBlog(), blogController.UpdateBlog)
	blogGroup.Delete("/:id", middleware.RequireAuth, authors, id, blogController.DeleteBlog)

	// Comments
	blogGroup.Get("/:id/comments", id, blogController.GetComments)
	blogGroup.Post("/:id/comments", middleware.RequireAuth, id, blogValidator.CreateComment(), blogController.CreateComment)
	app.Delete("/comments/:id", middleware.RequireAuth, id, blogController.DeleteComment)
}
