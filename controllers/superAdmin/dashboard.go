package superAdminController

import (
	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

func countBy(db *gorm.DB, model interface{}, column string, keys []string) (fiber.Map, error) {
	var rows []struct {
		Bucket string
		Total  int64
	}
	if err := db.Model(model).Select(column + " AS bucket, COUNT(*) AS total").Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := fiber.Map{}
	for _, k := range keys {
		result[k] = int64(0)
	}
	var total int64
	for _, r := range rows {
		result[r.Bucket] = r.Total
		total += r.Total
	}
	result["total"] = total
	return result, nil
}

// GetDashboard summarizes users, courses, orders and revenue
func GetDashboard(c *fiber.Ctx) error {
	db := database.Database.Db

	users, err := countBy(db.Where("is_deleted = ?", false), &models.User{}, "role",
		[]string{models.RoleStudent, models.RoleInstructor, models.RoleAdmin})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard!", nil)
	}
	courses, err := countBy(db.Where("is_deleted = ?", false), &models.Course{}, "status",
		[]string{models.CourseStatusDraft, models.CourseStatusPublished, models.CourseStatusArchived})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard!", nil)
	}

	var completedOrders int64
	db.Model(&models.Order{}).Where("status = ?", models.OrderCompleted).Count(&completedOrders)

	var lifetime, thisMonth int64
	db.Model(&models.Order{}).Where("status = ?", models.OrderCompleted).
		Select("COALESCE(SUM(total), 0)").Scan(&lifetime)
	db.Model(&models.Order{}).Where("status = ? AND paid_at >= ?", models.OrderCompleted, now.BeginningOfMonth()).
		Select("COALESCE(SUM(total), 0)").Scan(&thisMonth)

	var enrollments int64
	db.Model(&models.Enrollment{}).Where("status <> ?", models.EnrollmentRefunded).Count(&enrollments)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"users":            users,
		"courses":          courses,
		"completed_orders": completedOrders,
		"enrollments":      enrollments,
		"revenue": fiber.Map{
			"lifetime":   lifetime,
			"this_month": thisMonth,
		},
		"search_enabled": services.App.Search.Enabled(),
	})
}

// ReindexSearch rebuilds the course index from the database
func ReindexSearch(c *fiber.Ctx) error {
	if !services.App.Search.Enabled() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Search index is not configured!", nil)
	}
	count, err := services.App.Catalog.Reindex(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to rebuild search index!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Search index rebuilt successfully!", fiber.Map{"indexed": count})
}

// RefundOrder refunds a completed order at the gateway and revokes its enrollments
func RefundOrder(c *fiber.Ctx) error {
	order, err := services.App.Orders.RequestRefund(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to refund order!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order refunded successfully!", order)
}
