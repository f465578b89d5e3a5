package learningController

import (
	"errors"
	"time"

	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"
	"brainix/services/catalog"
	"brainix/utils"
	"brainix/validators"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetEnrollments lists the caller's enrollments with course summary and progress
func GetEnrollments(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedPagination").(*validators.Pagination)

	db := database.Database.Db.Model(&models.Enrollment{}).Where("user_id = ?", userId)
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	db.Count(&total)

	var enrollments []models.Enrollment
	if err := db.Preload("Course").
		Order("COALESCE(last_accessed_at, created_at) desc").
		Offset(reqData.Offset()).Limit(reqData.Limit).
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!",
		utils.Paginated("enrollments", enrollments, total, reqData.Page, reqData.Limit))
}

// GetEnrollmentStatus reports whether the caller may access a course
func GetEnrollmentStatus(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("course_id").(uint)

	var enrollment models.Enrollment
	err := database.Database.Db.Where("user_id = ? AND course_id = ?", userId, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status fetched successfully!", fiber.Map{
			"is_enrolled": false,
			"enrollment":  nil,
		})
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status fetched successfully!", fiber.Map{
		"is_enrolled": enrollment.HasAccess(),
		"enrollment":  enrollment,
	})
}

// LessonProgress is the per-lesson state shown in the player
type LessonProgress struct {
	IsCompleted   bool       `json:"is_completed"`
	WatchPosition int        `json:"watch_position"`
	CompletedAt   *time.Time `json:"completed_at"`
}

type learnLesson struct {
	models.Lesson
	Progress LessonProgress `json:"progress"`
}

type learnModule struct {
	models.Module
	Lessons []learnLesson `json:"lessons"`
}

// GetLearnCourse returns the full curriculum of a course with the caller's progress
func GetLearnCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("course_id").(uint)
	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).Preload("Instructor").First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	access, err := catalog.AccessFor(db, &user, course)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}
	if !access.Full() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	modules, err := catalog.Curriculum(db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch curriculum!", nil)
	}

	progress := map[uint]models.Progress{}
	var enrollment *models.Enrollment
	if access.Enrolled {
		e, rows, err := services.App.Learning.CourseProgress(user.ID, course.ID)
		if err != nil {
			return middleware.ErrorResponse(c, err, "Failed to fetch progress!")
		}
		enrollment = e
		for _, row := range rows {
			progress[row.LessonID] = row
		}
		database.Database.Db.Model(e).Update("last_accessed_at", time.Now())
	}

	result := make([]learnModule, len(modules))
	for i, m := range modules {
		lessons := make([]learnLesson, len(m.Lessons))
		for j, l := range m.Lessons {
			p := progress[l.ID]
			lessons[j] = learnLesson{
				Lesson:   l,
				Progress: LessonProgress{IsCompleted: p.IsCompleted, WatchPosition: p.WatchPosition, CompletedAt: p.CompletedAt},
			}
		}
		m.Lessons = nil
		result[i] = learnModule{Module: m, Lessons: lessons}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course content fetched successfully!", fiber.Map{
		"course": fiber.Map{
			"id":             course.ID,
			"title":          course.Title,
			"slug":           course.Slug,
			"thumbnail_url":  course.ThumbnailURL,
			"total_lessons":  course.TotalLessons,
			"total_duration": course.TotalDuration,
			"instructor":     course.Instructor.Summary(),
		},
		"modules":    result,
		"enrollment": enrollment,
		"can_manage": access.CanManage,
	})
}
