package superAdminRoutes

import (
	superAdminController "brainix/controllers/superAdmin"
	"brainix/middleware"
	"brainix/models"
	"brainix/validators"
	adminValidator "brainix/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupSuperAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAuth, middleware.RequireRoles(models.RoleAdmin))
	id := validators.ParamID("id")

	adminGroup.Get("/dashboard", superAdminController.GetDashboard)

	adminGroup.Get("/users", adminValidator.UserList(), superAdminController.UserList)
	adminGroup.Put("/users/:id/role", id, adminValidator.AssignRole(), superAdminController.AssignRole)

	adminGroup.Get("/coupons", validators.PageQuery("validatedPagination"), superAdminController.GetCoupons)
	adminGroup.Post("/coupons", adminValidator.Coupon(), superAdminController.CreateCoupon)
	adminGroup.Put("/coupons/:id", id, adminValidator.Coupon(), superAdminController.UpdateCoupon)
	adminGroup.Delete("/coupons/:id", id, superAdminController.DeleteCoupon)

	adminGroup.Post("/categories", adminValidator.Category(), superAdminController.CreateCategory)
	adminGroup.Delete("/categories/:id", id, superAdminController.DeleteCategory)

	adminGroup.Post("/orders/:id/refund", id, superAdminController.RefundOrder)
	adminGroup.Post("/search/reindex", superAdminController.ReindexSearch)
}
