package controllers

import (
	"encoding/json"
	"errors"

	"brainix/apperrors"
	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"
	"brainix/services/catalog"
	courseValidator "brainix/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func resources(items []courseValidator.Resource) datatypes.JSON {
	if items == nil {
		items = []courseValidator.Resource{}
	}
	raw, _ := json.Marshal(items)
	return datatypes.JSON(raw)
}

// ownedModule loads the :id module and checks the caller owns its course
func ownedModule(c *fiber.Ctx) (*models.Module, *models.Course, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	db := database.Database.Db

	module := &models.Module{}
	if err := db.First(module, c.Locals("id").(uint)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, middleware.ErrorResponse(c, apperrors.ErrModuleNotFound, "")
		}
		return nil, nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch module!", nil)
	}
	course, err := catalog.OwnedCourse(db, user, module.CourseID)
	if err != nil {
		return nil, nil, middleware.ErrorResponse(c, err, "Failed to fetch course!")
	}
	return module, course, nil
}

// ownedLesson loads the :id lesson and checks the caller owns its course
func ownedLesson(c *fiber.Ctx) (*models.Lesson, *models.Course, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	db := database.Database.Db

	lesson := &models.Lesson{}
	if err := db.First(lesson, c.Locals("id").(uint)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, middleware.ErrorResponse(c, apperrors.ErrLessonNotFound, "")
		}
		return nil, nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson!", nil)
	}
	course, err := catalog.OwnedCourse(db, user, lesson.CourseID)
	if err != nil {
		return nil, nil, middleware.ErrorResponse(c, err, "Failed to fetch course!")
	}
	return lesson, course, nil
}

// afterCurriculumChange refreshes totals, enrollment progress and the search document of a course
func afterCurriculumChange(c *fiber.Ctx, course *models.Course) error {
	if err := catalog.RecomputeCourseTotals(database.Database.Db, course.ID); err != nil {
		return err
	}
	if _, err := services.App.Learning.RefreshCourse(c.UserContext(), course.ID); err != nil {
		return err
	}
	if course.IsPublished() {
		services.App.Catalog.SyncCourse(c.UserContext(), course.ID)
	}
	return nil
}

func nextPosition(db *gorm.DB, model interface{}, column string, id uint) int {
	var max int
	db.Model(model).Where(column+" = ?", id).Select("COALESCE(MAX(position), 0)").Scan(&max)
	return max + 1
}

// CreateModule appends a module to an owned course
func CreateModule(c *fiber.Ctx) error {
	course, _, err := ownedCourse(c)
	if course == nil {
		return err
	}
	reqData := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
	db := database.Database.Db

	module := models.Module{
		CourseID:    course.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
	}
	if reqData.Position != nil {
		module.Position = *reqData.Position
	} else {
		module.Position = nextPosition(db, &models.Module{}, "course_id", course.ID)
	}

	if err := db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

func UpdateModule(c *fiber.Ctx) error {
	module, _, err := ownedModule(c)
	if module == nil {
		return err
	}
	reqData := c.Locals("validatedModuleUpdate").(*courseValidator.UpdateModuleRequest)

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if len(updates) > 0 {
		if err := database.Database.Db.Model(module).Updates(updates).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
		}
	}
	database.Database.Db.First(module, module.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// DeleteModule removes a module together with its lessons
func DeleteModule(c *fiber.Ctx) error {
	module, course, err := ownedModule(c)
	if module == nil {
		return err
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var lessonIDs []uint
		if err := tx.Model(&models.Lesson{}).Where("module_id = ?", module.ID).Pluck("id", &lessonIDs).Error; err != nil {
			return err
		}
		if len(lessonIDs) > 0 {
			if err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&models.Progress{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", lessonIDs).Delete(&models.Lesson{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(module).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}
	if err := afterCurriculumChange(c, course); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course totals!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// reorder rewrites positions 1..n following ids, which must be exactly the current set
func reorder(db *gorm.DB, model interface{}, column string, parentID uint, ids []uint) (bool, error) {
	var current []uint
	if err := db.Model(model).Where(column+" = ?", parentID).Pluck("id", &current).Error; err != nil {
		return false, err
	}
	if len(current) != len(ids) {
		return false, nil
	}
	known := make(map[uint]bool, len(current))
	for _, id := range current {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return false, nil
		}
		delete(known, id)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(model).Where("id = ?", id).Update("position", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return err == nil, err
}

func ReorderModules(c *fiber.Ctx) error {
	course, _, err := ownedCourse(c)
	if course == nil {
		return err
	}
	reqData := c.Locals("validatedReorder").(*courseValidator.ReorderRequest)

	ok, err := reorder(database.Database.Db, &models.Module{}, "course_id", course.ID, reqData.IDs)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reorder modules!", nil)
	}
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Ids must list every module of the course exactly once!", nil)
	}

	modules, _ := catalog.Curriculum(database.Database.Db, course.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules reordered successfully!", modules)
}

// CreateLesson appends a lesson to an owned module
func CreateLesson(c *fiber.Ctx) error {
	module, course, err := ownedModule(c)
	if module == nil {
		return err
	}
	reqData := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	db := database.Database.Db

	lesson := models.Lesson{
		CourseID:      course.ID,
		ModuleID:      module.ID,
		Title:         reqData.Title,
		Description:   reqData.Description,
		Type:          reqData.Type,
		VideoURL:      reqData.VideoURL,
		Content:       reqData.Content,
		Duration:      reqData.Duration,
		IsFreePreview: reqData.IsFreePreview,
		Resources:     resources(reqData.Resources),
	}
	if reqData.Position != nil {
		lesson.Position = *reqData.Position
	} else {
		lesson.Position = nextPosition(db, &models.Lesson{}, "module_id", module.ID)
	}

	if err := db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}
	if err := afterCurriculumChange(c, course); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course totals!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

func UpdateLesson(c *fiber.Ctx) error {
	lesson, course, err := ownedLesson(c)
	if lesson == nil {
		return err
	}
	reqData := c.Locals("validatedLessonUpdate").(*courseValidator.UpdateLessonRequest)

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.Type != nil {
		updates["type"] = *reqData.Type
	}
	if reqData.VideoURL != nil {
		updates["video_url"] = *reqData.VideoURL
	}
	if reqData.Content != nil {
		updates["content"] = *reqData.Content
	}
	if reqData.Duration != nil {
		updates["duration"] = *reqData.Duration
	}
	if reqData.IsFreePreview != nil {
		updates["is_free_preview"] = *reqData.IsFreePreview
	}
	if reqData.Resources != nil {
		updates["resources"] = resources(reqData.Resources)
	}

	if len(updates) > 0 {
		if err := database.Database.Db.Model(lesson).Updates(updates).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
		}
	}
	database.Database.Db.First(lesson, lesson.ID)
	if err := afterCurriculumChange(c, course); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course totals!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

func DeleteLesson(c *fiber.Ctx) error {
	lesson, course, err := ownedLesson(c)
	if lesson == nil {
		return err
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", lesson.ID).Delete(&models.Progress{}).Error; err != nil {
			return err
		}
		return tx.Delete(lesson).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}
	if err := afterCurriculumChange(c, course); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course totals!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

func ReorderLessons(c *fiber.Ctx) error {
	module, _, err := ownedModule(c)
	if module == nil {
		return err
	}
	reqData := c.Locals("validatedReorder").(*courseValidator.ReorderRequest)

	ok, err := reorder(database.Database.Db, &models.Lesson{}, "module_id", module.ID, reqData.IDs)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reorder lessons!", nil)
	}
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Ids must list every lesson of the module exactly once!", nil)
	}

	var lessons []models.Lesson
	database.Database.Db.Where("module_id = ?", module.ID).Order("position asc").Find(&lessons)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons reordered successfully!", lessons)
}
