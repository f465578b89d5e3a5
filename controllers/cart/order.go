package cartController

import (
	"errors"

	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"
	"brainix/utils"
	"brainix/validators"
	cartValidator "brainix/validators/cart"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Checkout turns the cart into an order and returns the payment client secret
func Checkout(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedCheckout").(*cartValidator.CheckoutRequest)

	result, err := services.App.Orders.Checkout(c.UserContext(), user, reqData.CouponCode)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to start checkout!")
	}

	message := "Checkout started successfully!"
	if result.Fulfilled {
		message = "Order completed successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, message, result)
}

func GetOrders(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedPagination").(*validators.Pagination)

	db := database.Database.Db.Model(&models.Order{}).Where("user_id = ?", userId)
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	db.Count(&total)

	var orders []models.Order
	if err := db.Preload("Items").Preload("Items.Course").
		Order("created_at desc").
		Offset(reqData.Offset()).Limit(reqData.Limit).
		Find(&orders).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch orders!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Orders fetched successfully!",
		utils.Paginated("orders", orders, total, reqData.Page, reqData.Limit))
}

// GetOrder returns one order to its owner or an admin
func GetOrder(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	order, err := services.App.Orders.Order(c.Locals("id").(uint))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Order not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch order!", nil)
	}
	if order.UserID != user.ID && !user.IsAdmin() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this order!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order fetched successfully!", order)
}
