package cartController

import (
	"brainix/middleware"
	"brainix/services"
	cartValidator "brainix/validators/cart"

	"github.com/gofiber/fiber/v2"
)

func GetCart(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	cart, err := services.App.Orders.Cart(userId)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch cart!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cart fetched successfully!", cart)
}

// AddToCart adds a purchasable course; duplicates answer 409
func AddToCart(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedCartItem").(*cartValidator.AddItemRequest)

	if _, err := services.App.Orders.AddToCart(userId, reqData.CourseID); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to add course to cart!")
	}
	cart, err := services.App.Orders.Cart(userId)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch cart!")
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course added to cart!", cart)
}

func RemoveFromCart(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	removed, err := services.App.Orders.RemoveFromCart(userId, c.Locals("course_id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to remove course from cart!")
	}
	if !removed {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course is not in your cart!", nil)
	}
	cart, err := services.App.Orders.Cart(userId)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch cart!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course removed from cart!", cart)
}

func ClearCart(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if err := services.App.Orders.ClearCart(userId); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to clear cart!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cart cleared successfully!", nil)
}

// ApplyCoupon previews a coupon against the cart without consuming it
func ApplyCoupon(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedCoupon").(*cartValidator.CouponRequest)

	quote, err := services.App.Orders.QuoteCart(userId, reqData.Code)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to apply coupon!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupon applied successfully!", quote)
}
