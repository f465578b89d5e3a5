package superAdminController

import (
	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services/catalog"
	adminValidator "brainix/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func CreateCategory(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCategory").(*adminValidator.CategoryRequest)
	db := database.Database.Db

	slug := catalog.Slugify(reqData.Name)
	var existing int64
	db.Unscoped().Model(&models.Category{}).Where("slug = ?", slug).Count(&existing)
	if existing > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Category already exists!", nil)
	}

	category := models.Category{Name: reqData.Name, Slug: slug, Description: reqData.Description}
	if err := db.Create(&category).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create category!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Category created successfully!", category)
}

// DeleteCategory removes a category no course references
func DeleteCategory(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	db := database.Database.Db

	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Category not found!", nil)
	}

	var used int64
	db.Model(&models.Course{}).Where("category_id = ? AND is_deleted = ?", id, false).Count(&used)
	if used > 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Category is used by courses!", nil)
	}

	if err := db.Unscoped().Delete(&category).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete category!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category deleted successfully!", nil)
}
