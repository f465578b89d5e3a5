package controllers

import (
	"time"

	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/utils"
	"brainix/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

func instructorRevenue(db *gorm.DB, instructorID uint, from, to *time.Time) int64 {
	q := db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.instructor_id = ? AND orders.status = ?", instructorID, models.OrderCompleted)
	if from != nil {
		q = q.Where("orders.paid_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("orders.paid_at < ?", *to)
	}
	var total int64
	q.Select("COALESCE(SUM(order_items.price), 0)").Scan(&total)
	return total
}

// GetInstructorDashboard summarizes the caller's courses, students and revenue
func GetInstructorDashboard(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	db := database.Database.Db

	var statusRows []struct {
		Status string
		Total  int64
	}
	if err := db.Model(&models.Course{}).
		Select("status, COUNT(*) AS total").
		Where("instructor_id = ? AND is_deleted = ?", userId, false).
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard!", nil)
	}
	courses := fiber.Map{
		models.CourseStatusDraft:     int64(0),
		models.CourseStatusPublished: int64(0),
		models.CourseStatusArchived:  int64(0),
	}
	var totalCourses int64
	for _, row := range statusRows {
		courses[row.Status] = row.Total
		totalCourses += row.Total
	}
	courses["total"] = totalCourses

	var students int64
	db.Model(&models.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.instructor_id = ? AND enrollments.status <> ?", userId, models.EnrollmentRefunded).
		Distinct("enrollments.user_id").
		Count(&students)

	thisMonth := now.BeginningOfMonth()
	lastMonth := now.With(thisMonth.AddDate(0, 0, -1)).BeginningOfMonth()

	var profile models.InstructorProfile
	db.Where("user_id = ?", userId).First(&profile)

	var topCourses []models.Course
	db.Where("instructor_id = ? AND is_deleted = ?", userId, false).
		Order("total_students desc").Order("id desc").
		Limit(5).
		Find(&topCourses)

	type RecentEnrollment struct {
		ID          uint               `json:"id"`
		CourseID    uint               `json:"course_id"`
		CourseTitle string             `json:"course_title"`
		Student     models.UserSummary `json:"student"`
		EnrolledAt  time.Time          `json:"enrolled_at"`
	}
	var enrollments []models.Enrollment
	db.Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.instructor_id = ?", userId).
		Preload("User").Preload("Course").
		Order("enrollments.created_at desc").
		Limit(10).
		Find(&enrollments)
	recent := make([]RecentEnrollment, len(enrollments))
	for i, e := range enrollments {
		recent[i] = RecentEnrollment{
			ID:          e.ID,
			CourseID:    e.CourseID,
			CourseTitle: e.Course.Title,
			Student:     e.User.Summary(),
			EnrolledAt:  e.CreatedAt,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"courses":        courses,
		"total_students": students,
		"revenue": fiber.Map{
			"lifetime":   instructorRevenue(db, userId, nil, nil),
			"this_month": instructorRevenue(db, userId, &thisMonth, nil),
			"last_month": instructorRevenue(db, userId, &lastMonth, &thisMonth),
		},
		"average_rating":     profile.AverageRating,
		"top_courses":        topCourses,
		"recent_enrollments": recent,
	})
}

// GetCourseStudents lists the enrollments of an owned course
func GetCourseStudents(c *fiber.Ctx) error {
	course, _, err := ownedCourse(c)
	if course == nil {
		return err
	}
	reqData := c.Locals("validatedPagination").(*validators.Pagination)

	db := database.Database.Db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID)
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	db.Count(&total)

	type CourseStudent struct {
		EnrollmentID     uint               `json:"enrollment_id"`
		Student          models.UserSummary `json:"student"`
		Email            string             `json:"email"`
		Status           string             `json:"status"`
		ProgressPercent  float64            `json:"progress_percent"`
		CompletedLessons int                `json:"completed_lessons"`
		LastAccessedAt   *time.Time         `json:"last_accessed_at"`
		CompletedAt      *time.Time         `json:"completed_at"`
		EnrolledAt       time.Time          `json:"enrolled_at"`
	}

	var enrollments []models.Enrollment
	if err := db.Preload("User").Order("created_at desc").
		Offset(reqData.Offset()).Limit(reqData.Limit).
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch students!", nil)
	}

	result := make([]CourseStudent, len(enrollments))
	for i, e := range enrollments {
		result[i] = CourseStudent{
			EnrollmentID:     e.ID,
			Student:          e.User.Summary(),
			Email:            e.User.Email,
			Status:           e.Status,
			ProgressPercent:  e.ProgressPercent,
			CompletedLessons: e.CompletedLessons,
			LastAccessedAt:   e.LastAccessedAt,
			CompletedAt:      e.CompletedAt,
			EnrolledAt:       e.CreatedAt,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Students fetched successfully!",
		utils.Paginated("students", result, total, reqData.Page, reqData.Limit))
}
