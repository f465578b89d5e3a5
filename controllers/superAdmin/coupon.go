package superAdminController

import (
	"errors"

	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services/orders"
	"brainix/utils"
	"brainix/validators"
	adminValidator "brainix/validators/admin"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func GetCoupons(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPagination").(*validators.Pagination)

	db := database.Database.Db.Model(&models.Coupon{})
	if active := c.Query("active"); active != "" {
		db = db.Where("is_active = ?", active == "true")
	}

	var total int64
	db.Count(&total)

	var coupons []models.Coupon
	if err := db.Order("created_at desc").
		Offset(reqData.Offset()).Limit(reqData.Limit).
		Find(&coupons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch coupons!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupons fetched successfully!",
		utils.Paginated("coupons", coupons, total, reqData.Page, reqData.Limit))
}

func courseExists(id *uint) bool {
	if id == nil {
		return true
	}
	var count int64
	database.Database.Db.Model(&models.Course{}).Where("id = ? AND is_deleted = ?", *id, false).Count(&count)
	return count > 0
}

func CreateCoupon(c *fiber.Ctx) error {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedCoupon").(*adminValidator.CouponRequest)
	db := database.Database.Db

	code := orders.NormalizeCode(reqData.Code)
	var existing int64
	db.Unscoped().Model(&models.Coupon{}).Where("code = ?", code).Count(&existing)
	if existing > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Coupon code already exists!", nil)
	}
	if !courseExists(reqData.CourseID) {
		return middleware.ValidationErrorResponse(c, map[string]string{"course_id": "Course does not exist!"})
	}

	coupon := models.Coupon{
		Code:           code,
		Description:    reqData.Description,
		DiscountType:   reqData.DiscountType,
		DiscountValue:  reqData.DiscountValue,
		MaxUses:        reqData.MaxUses,
		MinOrderAmount: reqData.MinOrderAmount,
		ValidFrom:      reqData.ValidFrom,
		ValidUntil:     reqData.ValidUntil,
		CourseID:       reqData.CourseID,
		IsActive:       true,
		CreatedBy:      admin.ID,
	}
	if err := db.Create(&coupon).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create coupon!", nil)
	}
	// default:true swallows a false IsActive on insert
	if reqData.IsActive != nil && !*reqData.IsActive {
		db.Model(&coupon).Update("is_active", false)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Coupon created successfully!", coupon)
}

func findCoupon(c *fiber.Ctx) (*models.Coupon, error) {
	coupon := &models.Coupon{}
	if err := database.Database.Db.First(coupon, c.Locals("id").(uint)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Coupon not found!", nil)
		}
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch coupon!", nil)
	}
	return coupon, nil
}

// UpdateCoupon replaces the editable fields; the code itself may change if still unique
func UpdateCoupon(c *fiber.Ctx) error {
	coupon, err := findCoupon(c)
	if coupon == nil {
		return err
	}
	reqData := c.Locals("validatedCoupon").(*adminValidator.CouponRequest)
	db := database.Database.Db

	code := orders.NormalizeCode(reqData.Code)
	if code != coupon.Code {
		var existing int64
		db.Unscoped().Model(&models.Coupon{}).Where("code = ? AND id <> ?", code, coupon.ID).Count(&existing)
		if existing > 0 {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Coupon code already exists!", nil)
		}
	}
	if !courseExists(reqData.CourseID) {
		return middleware.ValidationErrorResponse(c, map[string]string{"course_id": "Course does not exist!"})
	}

	updates := map[string]interface{}{
		"code":             code,
		"description":      reqData.Description,
		"discount_type":    reqData.DiscountType,
		"discount_value":   reqData.DiscountValue,
		"max_uses":         reqData.MaxUses,
		"min_order_amount": reqData.MinOrderAmount,
		"valid_from":       reqData.ValidFrom,
		"valid_until":      reqData.ValidUntil,
		"course_id":        reqData.CourseID,
	}
	if reqData.IsActive != nil {
		updates["is_active"] = *reqData.IsActive
	}
	if err := db.Model(coupon).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update coupon!", nil)
	}

	db.First(coupon, coupon.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupon updated successfully!", coupon)
}

// DeleteCoupon deactivates a coupon; usage history keeps referencing it
func DeleteCoupon(c *fiber.Ctx) error {
	coupon, err := findCoupon(c)
	if coupon == nil {
		return err
	}
	if err := database.Database.Db.Model(coupon).Update("is_active", false).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to deactivate coupon!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupon deactivated successfully!", nil)
}
