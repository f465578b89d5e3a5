package superAdminController

import (
	"errors"
	"strings"

	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"
	"brainix/utils"
	adminValidator "brainix/validators/admin"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserList pages through users with optional role and name/email search
func UserList(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUserList").(*adminValidator.UserListQuery)

	db := database.Database.Db.Model(&models.User{}).Where("is_deleted = ?", false)
	if reqData.Role != "" {
		db = db.Where("role = ?", reqData.Role)
	}
	if search := strings.TrimSpace(reqData.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		db = db.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}

	var total int64
	db.Count(&total)

	var users []models.User
	if err := db.Order("created_at desc").
		Offset(reqData.Offset()).Limit(reqData.Limit).
		Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User list fetched successfully!",
		utils.Paginated("users", users, total, reqData.Page, reqData.Limit))
}

// AssignRole changes a user's role at the identity provider first, then locally
func AssignRole(c *fiber.Ctx) error {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedRole").(*adminValidator.RoleRequest)
	targetID := c.Locals("id").(uint)

	if targetID == admin.ID && reqData.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot remove your own admin role!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", targetID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user!", nil)
	}

	updated, err := services.App.Users.ChangeRole(c.UserContext(), user, reqData.Role)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update role!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role updated successfully!", updated)
}
