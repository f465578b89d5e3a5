package cartRoutes

import (
	cartController "brainix/controllers/cart"
	"brainix/middleware"
	"brainix/validators"
	cartValidator "brainix/validators/cart"

	"github.com/gofiber/fiber/v2"
)

// SetupCartRoutes sets up the cart, checkout and order history
func SetupCartRoutes(app *fiber.App) {
	cartGroup := app.Group("/cart", middleware.RequireAuth)

	cartGroup.Get("/", cartController.GetCart)
	cartGroup.Post("/items", cartValidator.AddItem(), cartController.AddToCart)
	cartGroup.Delete("/items/:course_id", validators.ParamID("course_id"), cartController.RemoveFromCart)
	cartGroup.Delete("/", cartController.ClearCart)
	cartGroup.Post("/coupon", cartValidator.ApplyCoupon(), cartController.ApplyCoupon)

	app.Post("/checkout", middleware.RequireAuth, cartValidator.Checkout(), cartController.Checkout)

	app.Get("/orders", middleware.RequireAuth, validators.PageQuery("validatedPagination"), cartController.GetOrders)
	app.Get("/orders/:id", middleware.RequireAuth, validators.ParamID("id"), cartController.GetOrder)
}
