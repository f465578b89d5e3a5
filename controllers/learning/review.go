package learningController

import (
	"errors"
	"time"

	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"
	"brainix/services/catalog"
	"brainix/services/orders"
	"brainix/validators"
	learningValidator "brainix/validators/learning"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReviewWithUser struct {
	ID        uint               `json:"id"`
	Rating    int                `json:"rating"`
	Comment   string             `json:"comment"`
	User      models.UserSummary `json:"user"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func liveCourse(db *gorm.DB, id uint) (*models.Course, error) {
	course := &models.Course{}
	err := db.Where("id = ? AND is_deleted = ?", id, false).First(course).Error
	return course, err
}

// GetCourseReviews returns a page of reviews with the rating histogram
func GetCourseReviews(c *fiber.Ctx) error {
	courseID := c.Locals("id").(uint)
	reqData := c.Locals("validatedPagination").(*validators.Pagination)
	db := database.Database.Db

	course, err := liveCourse(db, courseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var total int64
	db.Model(&models.Review{}).Where("course_id = ?", courseID).Count(&total)

	var reviews []models.Review
	if err := db.Where("course_id = ?", courseID).Preload("User").
		Order("created_at desc").
		Offset(reqData.Offset()).Limit(reqData.Limit).
		Find(&reviews).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch reviews!", nil)
	}

	var rows []struct {
		Rating int
		Total  int64
	}
	db.Model(&models.Review{}).Select("rating, COUNT(*) AS total").
		Where("course_id = ?", courseID).Group("rating").Scan(&rows)
	histogram := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range rows {
		histogram[r.Rating] = r.Total
	}

	result := make([]ReviewWithUser, len(reviews))
	for i, r := range reviews {
		result[i] = ReviewWithUser{
			ID:        r.ID,
			Rating:    r.Rating,
			Comment:   r.Comment,
			User:      r.User.Summary(),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"reviews":        result,
		"average_rating": course.AverageRating,
		"review_count":   course.ReviewCount,
		"histogram":      histogram,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// SubmitReview creates or replaces the caller's review of a course they are enrolled in
func SubmitReview(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("id").(uint)
	reqData := c.Locals("validatedReview").(*learningValidator.ReviewRequest)
	db := database.Database.Db

	course, err := liveCourse(db, courseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	enrolled, err := orders.HasAccess(db, userId, courseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit review!", nil)
	}
	if !enrolled {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only enrolled students can review this course!", nil)
	}

	status := fiber.StatusOK
	var review models.Review
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("course_id = ? AND user_id = ?", courseID, userId).First(&review).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = models.Review{CourseID: courseID, UserID: userId, Rating: reqData.Rating, Comment: reqData.Comment}
			status = fiber.StatusCreated
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&review).Updates(map[string]interface{}{
				"rating":  reqData.Rating,
				"comment": reqData.Comment,
			}).Error; err != nil {
				return err
			}
		}
		return catalog.RecomputeRatings(tx, courseID)
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit review!", nil)
	}
	if course.IsPublished() {
		services.App.Catalog.SyncCourse(c.UserContext(), courseID)
	}

	db.First(&review, review.ID)
	return middleware.JsonResponse(c, status, true, "Review submitted successfully!", review)
}

// DeleteReview removes the caller's review of a course
func DeleteReview(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("id").(uint)

	var deleted int64
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("course_id = ? AND user_id = ?", courseID, userId).Delete(&models.Review{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		if deleted == 0 {
			return nil
		}
		return catalog.RecomputeRatings(tx, courseID)
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete review!", nil)
	}
	if deleted == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Review not found!", nil)
	}
	services.App.Catalog.SyncCourse(c.UserContext(), courseID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review deleted successfully!", nil)
}
