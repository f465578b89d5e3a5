package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"brainix/config"
	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"
	"brainix/services/catalog"
	"brainix/services/storage"
	"brainix/utils"
	"brainix/validators"
	courseValidator "brainix/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func jsonList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	raw, _ := json.Marshal(items)
	return datatypes.JSON(raw)
}

func categoryExists(db *gorm.DB, id *uint) bool {
	if id == nil {
		return true
	}
	var count int64
	db.Model(&models.Category{}).Where("id = ?", *id).Count(&count)
	return count > 0
}

// ownedCourse resolves the :id course of the caller, writing the error response itself
func ownedCourse(c *fiber.Ctx) (*models.Course, models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, user, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	course, err := catalog.OwnedCourse(database.Database.Db, user, c.Locals("id").(uint))
	if err != nil {
		return nil, user, middleware.ErrorResponse(c, err, "Failed to fetch course!")
	}
	return course, user, nil
}

// GetInstructorCourses lists the caller's courses in every status
func GetInstructorCourses(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedPagination").(*validators.Pagination)

	db := database.Database.Db.Model(&models.Course{}).Where("instructor_id = ? AND is_deleted = ?", userId, false)
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	db.Count(&total)

	var courses []models.Course
	if err := db.Preload("Category").Order("updated_at desc").
		Offset(reqData.Offset()).Limit(reqData.Limit).
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!",
		utils.Paginated("courses", courses, total, reqData.Page, reqData.Limit))
}

// CreateCourse creates a draft course owned by the caller
func CreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	db := database.Database.Db

	if !categoryExists(db, reqData.CategoryID) {
		return middleware.ValidationErrorResponse(c, map[string]string{"category_id": "Category does not exist!"})
	}

	slug, err := catalog.UniqueSlug(db, &models.Course{}, reqData.Title, 0)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	course := models.Course{
		InstructorID:     user.ID,
		CategoryID:       reqData.CategoryID,
		Title:            reqData.Title,
		Slug:             slug,
		Subtitle:         reqData.Subtitle,
		Description:      reqData.Description,
		Level:            reqData.Level,
		Language:         reqData.Language,
		Price:            *reqData.Price,
		DiscountPrice:    reqData.DiscountPrice,
		Status:           models.CourseStatusDraft,
		Requirements:     jsonList(reqData.Requirements),
		LearningOutcomes: jsonList(reqData.LearningOutcomes),
	}
	if course.Level == "" {
		course.Level = models.LevelAllLevels
	}
	if course.Language == "" {
		course.Language = "English"
	}

	if err := db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// GetInstructorCourse returns one owned course with its full curriculum
func GetInstructorCourse(c *fiber.Ctx) error {
	course, _, err := ownedCourse(c)
	if course == nil {
		return err
	}
	modules, err := catalog.Curriculum(database.Database.Db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch curriculum!", nil)
	}
	course.Modules = modules
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", course)
}

// UpdateCourse patches an owned course
func UpdateCourse(c *fiber.Ctx) error {
	course, _, err := ownedCourse(c)
	if course == nil {
		return err
	}
	reqData := c.Locals("validatedCourseUpdate").(*courseValidator.UpdateCourseRequest)
	db := database.Database.Db

	if !categoryExists(db, reqData.CategoryID) {
		return middleware.ValidationErrorResponse(c, map[string]string{"category_id": "Category does not exist!"})
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil && *reqData.Title != course.Title {
		updates["title"] = *reqData.Title
		// published slugs are shared links, keep them stable
		if course.PublishedAt == nil {
			slug, err := catalog.UniqueSlug(db, &models.Course{}, *reqData.Title, course.ID)
			if err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
			}
			updates["slug"] = slug
		}
	}
	if reqData.Subtitle != nil {
		updates["subtitle"] = *reqData.Subtitle
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.CategoryID != nil {
		updates["category_id"] = *reqData.CategoryID
	}
	if reqData.Level != nil {
		updates["level"] = *reqData.Level
	}
	if reqData.Language != nil {
		updates["language"] = *reqData.Language
	}

	price := course.Price
	if reqData.Price != nil {
		price = *reqData.Price
		updates["price"] = price
	}
	discount := course.DiscountPrice
	if reqData.ClearDiscountPrice {
		discount = nil
		updates["discount_price"] = nil
	} else if reqData.DiscountPrice != nil {
		discount = reqData.DiscountPrice
		updates["discount_price"] = *reqData.DiscountPrice
	}
	if discount != nil && *discount >= price {
		return middleware.ValidationErrorResponse(c, map[string]string{"discount_price": "Discount price must be lower than the price!"})
	}

	if reqData.Requirements != nil {
		updates["requirements"] = jsonList(reqData.Requirements)
	}
	if reqData.LearningOutcomes != nil {
		updates["learning_outcomes"] = jsonList(reqData.LearningOutcomes)
	}

	if len(updates) > 0 {
		if err := db.Model(course).Updates(updates).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
	}
	if err := db.Preload("Category").First(course, course.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	if course.IsPublished() {
		services.App.Catalog.SyncCourse(c.UserContext(), course.ID)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse removes a course that nobody has enrolled in
func DeleteCourse(c *fiber.Ctx) error {
	course, _, err := ownedCourse(c)
	if course == nil {
		return err
	}
	db := database.Database.Db

	var enrolled int64
	db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrolled)
	if enrolled > 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course has enrollments, archive it instead!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(course).Updates(map[string]interface{}{
			"is_deleted": true,
			"status":     models.CourseStatusArchived,
		}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("course_id = ?", course.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	services.App.Catalog.SyncCourse(c.UserContext(), course.ID)
	if err := catalog.RefreshInstructorCourses(db, course.InstructorID); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update instructor stats!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

func setStatus(c *fiber.Ctx, course *models.Course, status, message string) error {
	db := database.Database.Db
	updates := map[string]interface{}{"status": status}
	if status == models.CourseStatusPublished && course.PublishedAt == nil {
		updates["published_at"] = time.Now()
	}
	if err := db.Model(course).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course status!", nil)
	}
	if err := catalog.RefreshInstructorCourses(db, course.InstructorID); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update instructor stats!", nil)
	}
	services.App.Catalog.SyncCourse(c.UserContext(), course.ID)

	db.First(course, course.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

// PublishCourse makes a complete course visible in the catalog
func PublishCourse(c *fiber.Ctx) error {
	course, _, err := ownedCourse(c)
	if course == nil {
		return err
	}
	if course.Status == models.CourseStatusPublished {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is already published!", nil)
	}

	db := database.Database.Db
	if err := catalog.RecomputeCourseTotals(db, course.ID); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish course!", nil)
	}
	db.First(course, course.ID)

	errors := map[string]string{}
	if course.Title == "" {
		errors["title"] = "Title is required to publish!"
	}
	if course.Description == "" {
		errors["description"] = "Description is required to publish!"
	}
	if course.TotalLessons < 1 {
		errors["lessons"] = "Course needs at least one lesson to publish!"
	}
	if len(errors) > 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is not ready to publish!", errors)
	}

	return setStatus(c, course, models.CourseStatusPublished, "Course published successfully!")
}

// UnpublishCourse moves a course back to draft
func UnpublishCourse(c *fiber.Ctx) error {
	course, _, err := ownedCourse(c)
	if course == nil {
		return err
	}
	if course.Status != models.CourseStatusPublished {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is not published!", nil)
	}
	return setStatus(c, course, models.CourseStatusDraft, "Course unpublished successfully!")
}

// ArchiveCourse hides a course from the catalog while enrolled students keep access
func ArchiveCourse(c *fiber.Ctx) error {
	course, _, err := ownedCourse(c)
	if course == nil {
		return err
	}
	if course.Status == models.CourseStatusArchived {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is already archived!", nil)
	}
	return setStatus(c, course, models.CourseStatusArchived, "Course archived successfully!")
}

// UploadThumbnail stores an image and sets it as the course thumbnail
func UploadThumbnail(c *fiber.Ctx) error {
	course, _, err := ownedCourse(c)
	if course == nil {
		return err
	}
	header, ok := c.Locals("uploadedFile").(*multipart.FileHeader)
	if !ok {
		return middleware.ValidationErrorResponse(c, map[string]string{"file": "File is required!"})
	}

	url, err := storage.UploadImage(c.UserContext(), services.App.Storage, header,
		int64(config.AppConfig.MaxUploadBytes), fmt.Sprintf("courses/%d", course.ID), "thumbnail")
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return middleware.ValidationErrorResponse(c, map[string]string{"file": "File is too large!"})
		case errors.Is(err, storage.ErrUnsupportedType):
			return middleware.ValidationErrorResponse(c, map[string]string{"file": "Only jpeg, png and webp images are allowed!"})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload thumbnail!", nil)
	}

	if err := database.Database.Db.Model(course).Update("thumbnail_url", url).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}
	if course.IsPublished() {
		services.App.Catalog.SyncCourse(c.UserContext(), course.ID)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully!", fiber.Map{"thumbnail_url": url})
}
